// Package models provides type definitions for Ringlify API entities.
package models

// Business is a tenant that receives calls and books appointments.
type Business struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PhoneNumber   string          `json:"phoneNumber"`
	Timezone      string          `json:"timezone"`
	Description   string          `json:"description,omitempty"`
	KnowledgeBase map[string]any  `json:"knowledgeBase,omitempty"`
	Count         *BusinessCounts `json:"_count,omitempty"`
}

// BusinessCounts holds aggregate counts the backend attaches to a business.
type BusinessCounts struct {
	Appointments int `json:"appointments"`
	CallLogs     int `json:"callLogs"`
}

// BusinessRef is the embedded business summary on appointments and call logs.
type BusinessRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// Appointment is a booked slot. Name and Phone belong to the customer.
// Start and End are ISO-8601 timestamps.
type Appointment struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Email    string      `json:"email,omitempty"`
	Start    string      `json:"start"`
	End      string      `json:"end"`
	Business BusinessRef `json:"business"`
}

// CallLog records one inbound call and what the assistant did with it.
type CallLog struct {
	ID             string      `json:"id"`
	CallerPhone    string      `json:"callerPhone"`
	CallerName     string      `json:"callerName,omitempty"`
	Status         CallStatus  `json:"status"`
	RequestedStart string      `json:"requestedStart,omitempty"`
	BookedStart    string      `json:"bookedStart,omitempty"`
	BookedEnd      string      `json:"bookedEnd,omitempty"`
	CreatedAt      string      `json:"createdAt,omitempty"`
	Business       BusinessRef `json:"business"`
}

// CallStatus is the outcome of a call.
type CallStatus string

const (
	CallPending               CallStatus = "pending"
	CallBooked                CallStatus = "booked"
	CallSuggestedAlternatives CallStatus = "suggested_alternatives"
	CallFailed                CallStatus = "failed"
	CallUnavailable           CallStatus = "unavailable"
)

// CallStatuses lists every valid status.
var CallStatuses = []CallStatus{
	CallPending,
	CallBooked,
	CallSuggestedAlternatives,
	CallFailed,
	CallUnavailable,
}

// Valid reports whether s is a known status.
func (s CallStatus) Valid() bool {
	for _, known := range CallStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the display label. Unknown statuses display as Pending.
func (s CallStatus) Label() string {
	switch s {
	case CallBooked:
		return "Booked"
	case CallFailed:
		return "Failed"
	case CallUnavailable:
		return "Unavailable"
	case CallSuggestedAlternatives:
		return "Alternatives"
	default:
		return "Pending"
	}
}

// Pagination describes the window of a paged list.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is a paged list response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// BusinessList is the unpaged business list response.
type BusinessList struct {
	Data []Business `json:"data"`
}

// LoginResponse is returned by business login. Backends differ on where the
// business id lives, so all three locations are decoded.
type LoginResponse struct {
	Token      string    `json:"token"`
	BusinessID string    `json:"businessId,omitempty"`
	ID         string    `json:"id,omitempty"`
	Business   *Business `json:"business,omitempty"`
}

// ResolveBusinessID returns businessId, else id, else business.id.
func (r *LoginResponse) ResolveBusinessID() string {
	switch {
	case r.BusinessID != "":
		return r.BusinessID
	case r.ID != "":
		return r.ID
	case r.Business != nil:
		return r.Business.ID
	default:
		return ""
	}
}

// SignupResponse is returned by business signup. ID is the new business id.
type SignupResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// BusinessInput is the body for creating a business.
type BusinessInput struct {
	Name          string         `json:"name"`
	PhoneNumber   string         `json:"phoneNumber"`
	Timezone      string         `json:"timezone,omitempty"`
	Description   string         `json:"description,omitempty"`
	KnowledgeBase map[string]any `json:"knowledgeBase,omitempty"`
}

// BusinessUpdate is a partial update. Nil fields are left unchanged.
type BusinessUpdate struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u BusinessUpdate) Empty() bool {
	return u.Name == nil && u.PhoneNumber == nil && u.Timezone == nil && u.Description == nil
}
