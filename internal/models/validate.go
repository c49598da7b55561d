package models

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host zoneinfo
	"unicode/utf8"

	"github.com/ringlify/ringlify-cli/internal/output"
)

// Field limits enforced before a request is sent.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxLimit             = 100
	MinPasswordLength    = 6

	// Self-service signup and onboarding are stricter than operator forms.
	MinOwnerNameLength  = 2
	MinOwnerPhoneLength = 10
)

var e164 = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ValidateName checks a business name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return output.ErrValidation("name", "Business name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return output.ErrValidation("name", fmt.Sprintf("Name must be less than %d characters", MaxNameLength))
	}
	return nil
}

// ValidatePhone checks an E.164 phone number.
func ValidatePhone(phone string) error {
	if phone == "" {
		return output.ErrValidation("phoneNumber", "Phone number is required")
	}
	if !e164.MatchString(phone) {
		return output.ErrValidation("phoneNumber", "Please enter a valid phone number (E.164 format)")
	}
	return nil
}

// ValidateDescription checks a business description.
func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return output.ErrValidation("description", fmt.Sprintf("Description must be less than %d characters", MaxDescriptionLength))
	}
	return nil
}

// ValidateTimezone checks that tz names an IANA zone. Empty is allowed.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return output.ErrValidation("timezone", fmt.Sprintf("Unknown timezone %q", tz))
	}
	return nil
}

// Validate checks a create request.
func (in BusinessInput) Validate() error {
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	if err := ValidatePhone(in.PhoneNumber); err != nil {
		return err
	}
	if err := ValidateTimezone(in.Timezone); err != nil {
		return err
	}
	return ValidateDescription(in.Description)
}

// Validate checks the fields present in an update.
func (u BusinessUpdate) Validate() error {
	if u.Empty() {
		return output.ErrValidation("", "Nothing to update")
	}
	if u.Name != nil {
		if err := ValidateName(*u.Name); err != nil {
			return err
		}
	}
	if u.PhoneNumber != nil {
		if err := ValidatePhone(*u.PhoneNumber); err != nil {
			return err
		}
	}
	if u.Timezone != nil {
		if *u.Timezone == "" {
			return output.ErrValidation("timezone", "Timezone is required")
		}
		if err := ValidateTimezone(*u.Timezone); err != nil {
			return err
		}
	}
	if u.Description != nil {
		return ValidateDescription(*u.Description)
	}
	return nil
}

// ValidatePaging checks list paging. Zero means "not set".
func ValidatePaging(page, limit int) error {
	if page < 0 {
		return output.ErrValidation("page", "must be at least 1")
	}
	if limit < 0 || limit > MaxLimit {
		return output.ErrValidation("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}
	return nil
}

// ValidateStatus checks an optional call status filter.
func ValidateStatus(status string) error {
	if status == "" || CallStatus(status).Valid() {
		return nil
	}
	names := make([]string, len(CallStatuses))
	for i, s := range CallStatuses {
		names[i] = string(s)
	}
	return output.ErrValidation("status", "must be one of "+strings.Join(names, ", "))
}

// ValidateCredentials checks login input.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return output.ErrValidation("email", "Email is required")
	}
	if password == "" {
		return output.ErrValidation("password", "Password is required")
	}
	return nil
}

// ValidateEmail checks that email is a bare address with a dotted domain.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return output.ErrValidation("email", "Please enter a valid email address")
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return output.ErrValidation("email", "Please enter a valid email address")
	}
	return nil
}

// ValidateOwnerName checks a business name entered by the owner.
func ValidateOwnerName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if utf8.RuneCountInString(name) < MinOwnerNameLength {
		return output.ErrValidation("name", fmt.Sprintf("Business name must be at least %d characters", MinOwnerNameLength))
	}
	return nil
}

// ValidateSignup checks signup input.
func ValidateSignup(name, email, password string) error {
	if err := ValidateOwnerName(name); err != nil {
		return err
	}
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return output.ErrValidation("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
