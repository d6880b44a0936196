package solidtime

import (
	"context"
	"net/http"
)

// MeService reads the account the token belongs to.
type MeService struct {
	client *Client
}

// Get returns the authenticated user.
func (s *MeService) Get(ctx context.Context) (*User, error) {
	var out Data[User]
	if err := s.client.do(ctx, http.MethodGet, "/v1/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
