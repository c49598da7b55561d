// Package portal is the business facade: every call is scoped to the
// business id held in the stored session.
package portal

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ringlify/ringlify-cli/internal/admin"
	"github.com/ringlify/ringlify-cli/internal/api"
	"github.com/ringlify/ringlify-cli/internal/dateparse"
	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/session"
)

// Service issues business-session requests.
type Service struct {
	client *api.Client // session token, invalidated on 401
	anon   *api.Client // login and signup
	acc    *session.Accessor
	now    func() time.Time
}

// New creates a business facade. Requests authorize with the token held by
// acc; a 401 clears the session and publishes on events (which may be nil).
func New(client *api.Client, acc *session.Accessor, events *api.Events) *Service {
	return &Service{
		client: client.WithAuthorizer(api.SessionToken(acc, events)),
		anon:   client.WithAuthorizer(api.Anonymous()),
		acc:    acc,
		now:    time.Now,
	}
}

// Session returns the stored session.
func (s *Service) Session() session.Auth {
	return s.acc.Auth()
}

// Login authenticates with email and password and stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if err := models.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	body := map[string]string{"email": email, "password": password}
	var resp models.LoginResponse
	if err := s.anon.Post(ctx, "/auth/business/login", body, &resp); err != nil {
		return nil, err
	}

	bid := resp.ResolveBusinessID()
	if resp.Token == "" || bid == "" {
		return nil, &output.Error{
			Code:    output.CodeMalformed,
			Message: "Invalid login response: missing token or business ID",
		}
	}
	if err := s.acc.Set(resp.Token, bid); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup creates a business account and stores the new session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*models.SignupResponse, error) {
	if err := models.ValidateSignup(name, email, password); err != nil {
		return nil, err
	}

	body := map[string]string{"name": name, "email": email, "password": password}
	var resp models.SignupResponse
	if err := s.anon.Post(ctx, "/auth/business/signup", body, &resp); err != nil {
		return nil, err
	}

	if resp.Token == "" || resp.ID == "" {
		return nil, &output.Error{
			Code:    output.CodeMalformed,
			Message: "Invalid signup response: missing token or business ID",
		}
	}
	if err := s.acc.Set(resp.Token, resp.ID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the stored session. No event is published.
func (s *Service) Logout() error {
	return s.acc.Clear()
}

// Restore checks a stored session against the backend. It returns (nil, nil)
// when nothing is stored. If the backend no longer accepts the session it is
// cleared and the error returned.
func (s *Service) Restore(ctx context.Context) (*models.Business, error) {
	if !s.acc.Auth().IsAuthenticated {
		return nil, nil
	}
	b, err := s.Business(ctx)
	if err != nil {
		_ = s.acc.Clear()
		return nil, err
	}
	return b, nil
}

func (s *Service) businessID() (string, error) {
	bid := s.acc.BusinessID()
	if bid == "" {
		return "", output.ErrNoSession()
	}
	return bid, nil
}

func (s *Service) businessPath() (string, error) {
	bid, err := s.businessID()
	if err != nil {
		return "", err
	}
	return admin.BusinessPath(bid), nil
}

// Business returns the caller's own business.
func (s *Service) Business(ctx context.Context) (*models.Business, error) {
	path, err := s.businessPath()
	if err != nil {
		return nil, err
	}
	var b models.Business
	if err := s.client.Get(ctx, path, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBusiness applies a partial update to the caller's business.
func (s *Service) UpdateBusiness(ctx context.Context, u models.BusinessUpdate) (*models.Business, error) {
	path, err := s.businessPath()
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

// UpdateKnowledgeBase replaces the caller's knowledge base document.
func (s *Service) UpdateKnowledgeBase(ctx context.Context, kb map[string]any) (*models.Business, error) {
	path, err := s.businessPath()
	if err != nil {
		return nil, err
	}
	return admin.PostKnowledgeBase(ctx, s.client, path, kb)
}

// AppointmentQuery narrows the caller's appointments. Name is matched
// locally because the backend has no name filter.
type AppointmentQuery struct {
	Page      int
	Limit     int
	StartDate string
	EndDate   string
	Name      string
}

// CallLogQuery narrows the caller's call logs.
type CallLogQuery struct {
	Page      int
	Limit     int
	Status    models.CallStatus
	StartDate string
	EndDate   string
}

// ListAppointments returns one page of the caller's appointments. When
// q.Name is set, the page is filtered to customers whose name contains it,
// ignoring case; Pagination still describes the unfiltered page.
func (s *Service) ListAppointments(ctx context.Context, q AppointmentQuery) (*models.Page[models.Appointment], error) {
	bid, err := s.businessID()
	if err != nil {
		return nil, err
	}
	if err := models.ValidatePaging(q.Page, q.Limit); err != nil {
		return nil, err
	}

	query := api.NewQuery().
		Set("businessId", bid).
		SetInt("page", q.Page).
		SetInt("limit", q.Limit).
		Set("startDate", q.StartDate).
		Set("endDate", q.EndDate)

	var page models.Page[models.Appointment]
	if err := s.client.Get(ctx, "/admin/appointments", query, &page); err != nil {
		return nil, err
	}
	page.Data = FilterByName(page.Data, q.Name)
	return &page, nil
}

// FilterByName keeps appointments whose customer name contains name,
// case-insensitively. An empty name keeps everything.
func FilterByName(appts []models.Appointment, name string) []models.Appointment {
	needle := strings.ToLower(name)
	if needle == "" {
		return appts
	}
	out := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if strings.Contains(strings.ToLower(a.Name), needle) {
			out = append(out, a)
		}
	}
	return out
}

// ListCallLogs returns one page of the caller's call logs.
func (s *Service) ListCallLogs(ctx context.Context, q CallLogQuery) (*models.Page[models.CallLog], error) {
	bid, err := s.businessID()
	if err != nil {
		return nil, err
	}
	if err := models.ValidatePaging(q.Page, q.Limit); err != nil {
		return nil, err
	}
	if err := models.ValidateStatus(string(q.Status)); err != nil {
		return nil, err
	}

	query := api.NewQuery().
		Set("businessId", bid).
		SetInt("page", q.Page).
		SetInt("limit", q.Limit).
		Set("status", string(q.Status)).
		Set("startDate", q.StartDate).
		Set("endDate", q.EndDate)

	var page models.Page[models.CallLog]
	if err := s.client.Get(ctx, "/admin/call-logs", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TodayStats counts today's calls and appointments.
type TodayStats struct {
	Calls        int `json:"calls"`
	Appointments int `json:"appointments"`
}

// TodayStats issues two count-only queries concurrently for the current
// UTC day and combines their totals. Either failure fails the result.
func (s *Service) TodayStats(ctx context.Context) (*TodayStats, error) {
	if _, err := s.businessID(); err != nil {
		return nil, err
	}
	today, tomorrow := dateparse.TodayWindow(s.now())

	var stats TodayStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.ListCallLogs(gctx, CallLogQuery{Limit: 1, StartDate: today, EndDate: tomorrow})
		if err != nil {
			return err
		}
		stats.Calls = page.Pagination.Total
		return nil
	})
	g.Go(func() error {
		page, err := s.ListAppointments(gctx, AppointmentQuery{Limit: 1, StartDate: today, EndDate: tomorrow})
		if err != nil {
			return err
		}
		stats.Appointments = page.Pagination.Total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
