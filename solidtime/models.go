package solidtime

import "time"

// Data is the {"data": ...} envelope wrapping single resources.
type Data[T any] struct {
	Data T `json:"data"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data  []T             `json:"data"`
	Links PaginationLinks `json:"links"`
	Meta  PaginationMeta  `json:"meta"`
}

// HasNext reports whether a following page exists.
func (p *Page[T]) HasNext() bool {
	return p.Links.Next != nil && *p.Links.Next != ""
}

type PaginationLinks struct {
	First *string `json:"first"`
	Last  *string `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type PaginationMeta struct {
	CurrentPage int              `json:"current_page"`
	From        *int             `json:"from"`
	LastPage    int              `json:"last_page"`
	Links       []PaginationLink `json:"links"`
	Path        string           `json:"path"`
	PerPage     int              `json:"per_page"`
	To          *int             `json:"to"`
	Total       int              `json:"total"`
}

type PaginationLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// User is the authenticated account.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	ProfilePhotoURL string     `json:"profile_photo_url"`
	Timezone        string     `json:"timezone"`
	WeekStart       string     `json:"week_start"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	ClientID       *string `json:"client_id"`
	IsBillable     bool    `json:"is_billable"`
	IsArchived     bool    `json:"is_archived"`
	OrganizationID string  `json:"organization_id,omitempty"`
}

type ProjectCreateRequest struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	ClientID   *string `json:"client_id,omitempty"`
	IsBillable bool    `json:"is_billable"`
}

// ProjectUpdateRequest replaces a project's editable fields. Nil pointers are
// left out of the request body.
type ProjectUpdateRequest struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	ClientID   *string `json:"client_id,omitempty"`
	IsBillable *bool   `json:"is_billable,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
}
