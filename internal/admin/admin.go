// Package admin is the operator facade over the backend's /admin endpoints.
package admin

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/ringlify/ringlify-cli/internal/api"
	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
)

// Service issues operator requests. Its client should carry api.StaticKey.
type Service struct {
	client *api.Client
}

// New creates an operator facade over client.
func New(client *api.Client) *Service {
	return &Service{client: client}
}

// NewWithKey creates an operator facade that authorizes with key.
// An empty key sends requests unauthenticated.
func NewWithKey(client *api.Client, key string) *Service {
	return New(client.WithAuthorizer(api.StaticKey(key)))
}

// AppointmentFilter narrows an appointment listing. Zero values are omitted.
type AppointmentFilter struct {
	Page       int
	Limit      int
	BusinessID string
	StartDate  string
	EndDate    string
}

func (f AppointmentFilter) query() *api.Query {
	return api.NewQuery().
		SetInt("page", f.Page).
		SetInt("limit", f.Limit).
		Set("businessId", f.BusinessID).
		Set("startDate", f.StartDate).
		Set("endDate", f.EndDate)
}

// CallLogFilter narrows a call log listing. Zero values are omitted.
type CallLogFilter struct {
	Page       int
	Limit      int
	BusinessID string
	Status     models.CallStatus
	StartDate  string
	EndDate    string
}

func (f CallLogFilter) query() *api.Query {
	return api.NewQuery().
		SetInt("page", f.Page).
		SetInt("limit", f.Limit).
		Set("businessId", f.BusinessID).
		Set("status", string(f.Status)).
		Set("startDate", f.StartDate).
		Set("endDate", f.EndDate)
}

// ListAppointments returns one page of appointments across businesses.
func (s *Service) ListAppointments(ctx context.Context, f AppointmentFilter) (*models.Page[models.Appointment], error) {
	if err := models.ValidatePaging(f.Page, f.Limit); err != nil {
		return nil, err
	}
	var page models.Page[models.Appointment]
	if err := s.client.Get(ctx, "/admin/appointments", f.query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListCallLogs returns one page of call logs across businesses.
func (s *Service) ListCallLogs(ctx context.Context, f CallLogFilter) (*models.Page[models.CallLog], error) {
	if err := models.ValidatePaging(f.Page, f.Limit); err != nil {
		return nil, err
	}
	if err := models.ValidateStatus(string(f.Status)); err != nil {
		return nil, err
	}
	var page models.Page[models.CallLog]
	if err := s.client.Get(ctx, "/admin/call-logs", f.query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListBusinesses returns every business.
func (s *Service) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	var list models.BusinessList
	if err := s.client.Get(ctx, "/admin/businesses", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetBusiness returns one business.
func (s *Service) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	path, err := businessPath(id)
	if err != nil {
		return nil, err
	}
	var b models.Business
	if err := s.client.Get(ctx, path, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBusiness validates in and creates a business.
func (s *Service) CreateBusiness(ctx context.Context, in models.BusinessInput) (*models.Business, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var b models.Business
	if err := s.client.Post(ctx, "/admin/businesses", in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBusiness applies a partial update to business id.
func (s *Service) UpdateBusiness(ctx context.Context, id string, u models.BusinessUpdate) (*models.Business, error) {
	path, err := businessPath(id)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var b models.Business
	if err := s.client.Put(ctx, path, u, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBusiness removes business id.
func (s *Service) DeleteBusiness(ctx context.Context, id string) error {
	path, err := businessPath(id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, path, nil)
}

// UpdateKnowledgeBase replaces the knowledge base document of business id.
func (s *Service) UpdateKnowledgeBase(ctx context.Context, id string, kb map[string]any) (*models.Business, error) {
	path, err := businessPath(id)
	if err != nil {
		return nil, err
	}
	return PostKnowledgeBase(ctx, s.client, path, kb)
}

// PostKnowledgeBase sends kb to <businessPath>/kb. Both facades share it.
func PostKnowledgeBase(ctx context.Context, client *api.Client, businessPath string, kb map[string]any) (*models.Business, error) {
	if kb == nil {
		return nil, output.ErrValidation("knowledgeBase", "must be a JSON object")
	}
	body := map[string]any{"knowledgeBase": kb}
	var b models.Business
	if err := client.Post(ctx, businessPath+"/kb", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Overview holds the totals shown on the operator dashboard.
type Overview struct {
	Businesses   int `json:"businesses"`
	Appointments int `json:"appointments"`
	CallLogs     int `json:"callLogs"`
}

// Overview fetches business, appointment and call log totals concurrently.
// Any failure fails the whole overview.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.ListBusinesses(gctx)
		if err != nil {
			return err
		}
		ov.Businesses = len(list)
		return nil
	})
	g.Go(func() error {
		page, err := s.ListAppointments(gctx, AppointmentFilter{Limit: 1})
		if err != nil {
			return err
		}
		ov.Appointments = page.Pagination.Total
		return nil
	})
	g.Go(func() error {
		page, err := s.ListCallLogs(gctx, CallLogFilter{Limit: 1})
		if err != nil {
			return err
		}
		ov.CallLogs = page.Pagination.Total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

// BusinessPath returns the escaped resource path for business id.
func BusinessPath(id string) string {
	return "/admin/businesses/" + url.PathEscape(id)
}

func businessPath(id string) (string, error) {
	if id == "" {
		return "", output.ErrUsage("Business ID required")
	}
	return BusinessPath(id), nil
}
