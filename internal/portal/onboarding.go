package portal

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ringlify/ringlify-cli/internal/kb"
	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/output"
)

// Timezones offered during onboarding. Any IANA zone is accepted.
var Timezones = []string{
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Phoenix",
	"America/Anchorage",
	"Pacific/Honolulu",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Asia/Tokyo",
	"Asia/Shanghai",
	"Australia/Sydney",
}

// Onboarding defaults for the hours step.
const (
	DefaultTimezone = "America/New_York"
	DefaultOpen     = "09:00"
	DefaultClose    = "17:00"
)

// Weekdays keys the knowledge base "hours" object.
var Weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// BusinessInfo is the first onboarding step.
type BusinessInfo struct {
	Name        string
	PhoneNumber string
	Description string
}

// Validate checks the owner-facing limits; the update itself re-checks
// the phone format.
func (i BusinessInfo) Validate() error {
	if err := models.ValidateOwnerName(i.Name); err != nil {
		return err
	}
	if utf8.RuneCountInString(i.PhoneNumber) < models.MinOwnerPhoneLength {
		return output.ErrValidation("phoneNumber", "Please enter a valid phone number")
	}
	return models.ValidateDescription(i.Description)
}

// Hours is the second onboarding step: one opening window for every day.
type Hours struct {
	Timezone string
	Open     string // HH:MM
	Close    string // HH:MM
}

// Validate checks the timezone and both times.
func (h Hours) Validate() error {
	if h.Timezone == "" {
		return output.ErrValidation("timezone", "Please select a timezone")
	}
	if err := models.ValidateTimezone(h.Timezone); err != nil {
		return err
	}
	if err := validateClock("open", h.Open, "Please enter opening time"); err != nil {
		return err
	}
	return validateClock("close", h.Close, "Please enter closing time")
}

func validateClock(field, v, missing string) error {
	if v == "" {
		return output.ErrValidation(field, missing)
	}
	if _, err := time.Parse("15:04", v); err != nil {
		return output.ErrValidation(field, "Use 24-hour HH:MM, e.g. 09:00")
	}
	return nil
}

// Week expands h into the knowledge base "hours" shape.
func (h Hours) Week() map[string]any {
	week := make(map[string]any, len(Weekdays))
	for _, day := range Weekdays {
		week[day] = map[string]any{"open": h.Open, "close": h.Close}
	}
	return week
}

// Knowledge is the third onboarding step: free-text answers the call
// assistant draws on.
type Knowledge struct {
	Services string
	WalkIns  string
	Policies string
	FAQ      string
}

// Empty reports whether no answer was given.
func (k Knowledge) Empty() bool {
	return strings.TrimSpace(k.Services+k.WalkIns+k.Policies+k.FAQ) == ""
}

// SaveBusinessInfo stores the name, phone and description.
func (s *Service) SaveBusinessInfo(ctx context.Context, info BusinessInfo) (*models.Business, error) {
	if _, err := s.businessID(); err != nil {
		return nil, err
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	u := models.BusinessUpdate{Name: &info.Name, PhoneNumber: &info.PhoneNumber}
	if info.Description != "" {
		u.Description = &info.Description
	}
	return s.UpdateBusiness(ctx, u)
}

// SaveHours stores the timezone on the business and writes the weekly
// hours into the knowledge base, keeping its other keys.
func (s *Service) SaveHours(ctx context.Context, h Hours) (*models.Business, error) {
	if _, err := s.businessID(); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.UpdateBusiness(ctx, models.BusinessUpdate{Timezone: &h.Timezone}); err != nil {
		return nil, err
	}
	return s.mergeKnowledgeBase(ctx, map[string]any{"hours": h.Week()})
}

// SaveKnowledge writes the non-empty answers into the knowledge base,
// keeping its other keys. Policies land under policies.general.
func (s *Service) SaveKnowledge(ctx context.Context, k Knowledge) (*models.Business, error) {
	if _, err := s.businessID(); err != nil {
		return nil, err
	}
	if k.Empty() {
		return nil, output.ErrValidation("", "Nothing to save")
	}

	patch := map[string]any{"updatedAt": s.now().UTC().Format(time.RFC3339)}
	for key, v := range map[string]string{"services": k.Services, "walkIns": k.WalkIns, "faq": k.FAQ} {
		if v = strings.TrimSpace(v); v != "" {
			patch[key] = v
		}
	}
	if v := strings.TrimSpace(k.Policies); v != "" {
		patch["policies"] = map[string]any{"general": v}
	}
	return s.mergeKnowledgeBase(ctx, patch)
}

// mergeKnowledgeBase overlays patch on the stored document and saves it.
// A policies object in patch is merged key by key.
func (s *Service) mergeKnowledgeBase(ctx context.Context, patch map[string]any) (*models.Business, error) {
	current, err := s.Business(ctx)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(current.KnowledgeBase)+len(patch))
	for k, v := range current.KnowledgeBase {
		doc[k] = v
	}
	for k, v := range patch {
		if k == "policies" {
			if prev, ok := doc[k].(map[string]any); ok {
				merged := make(map[string]any, len(prev)+1)
				for pk, pv := range prev {
					merged[pk] = pv
				}
				for pk, pv := range v.(map[string]any) {
					merged[pk] = pv
				}
				v = merged
			}
		}
		doc[k] = v
	}

	if err := kb.Validate(doc); err != nil {
		return nil, err
	}
	return s.UpdateKnowledgeBase(ctx, doc)
}
