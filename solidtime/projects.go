package solidtime

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// Archived filters project listings.
type Archived string

const (
	ArchivedDefault Archived = ""
	ArchivedOnly    Archived = "true"
	ArchivedNone    Archived = "false"
	ArchivedAll     Archived = "all"
)

// ErrMissingID is returned when an organization or project id is empty.
var ErrMissingID = errors.New("solidtime: id is required")

// ListProjectsOptions narrows a project listing. Zero values are omitted.
type ListProjectsOptions struct {
	Page     int
	Archived Archived
}

func (o ListProjectsOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Archived != ArchivedDefault {
		q.Set("archived", string(o.Archived))
	}
	return q
}

// ProjectsService manages an organization's projects.
type ProjectsService struct {
	client *Client
}

func projectsPath(orgID string) string {
	return "/v1/organizations/" + url.PathEscape(orgID) + "/projects"
}

func projectPath(orgID, projectID string) string {
	return projectsPath(orgID) + "/" + url.PathEscape(projectID)
}

// List returns one page of the organization's projects.
func (s *ProjectsService) List(ctx context.Context, orgID string, opts ListProjectsOptions) (*Page[Project], error) {
	if orgID == "" {
		return nil, ErrMissingID
	}
	var out Page[Project]
	if err := s.client.do(ctx, http.MethodGet, projectsPath(orgID), opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProjectsService) Get(ctx context.Context, orgID, projectID string) (*Project, error) {
	if orgID == "" || projectID == "" {
		return nil, ErrMissingID
	}
	var out Data[Project]
	if err := s.client.do(ctx, http.MethodGet, projectPath(orgID, projectID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *ProjectsService) Create(ctx context.Context, orgID string, req *ProjectCreateRequest) (*Project, error) {
	if orgID == "" {
		return nil, ErrMissingID
	}
	var out Data[Project]
	if err := s.client.do(ctx, http.MethodPost, projectsPath(orgID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *ProjectsService) Update(ctx context.Context, orgID, projectID string, req *ProjectUpdateRequest) (*Project, error) {
	if orgID == "" || projectID == "" {
		return nil, ErrMissingID
	}
	var out Data[Project]
	if err := s.client.do(ctx, http.MethodPut, projectPath(orgID, projectID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *ProjectsService) Delete(ctx context.Context, orgID, projectID string) error {
	if orgID == "" || projectID == "" {
		return ErrMissingID
	}
	return s.client.do(ctx, http.MethodDelete, projectPath(orgID, projectID), nil, nil, nil)
}
