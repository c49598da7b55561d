// Package tui holds the interactive prompts used when a command is run on a
// terminal without all of its inputs.
package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"

	"github.com/ringlify/ringlify-cli/internal/models"
	"github.com/ringlify/ringlify-cli/internal/portal"
)

// ErrCanceled is returned when the user aborts a prompt.
var ErrCanceled = errors.New("canceled")

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func run(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCanceled
		}
		return err
	}
	return nil
}

// Credentials prompts for whichever of email and password are empty.
func Credentials(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("owner@example.com").
			Value(email).
			Validate(required("Email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("Password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return run(huh.NewForm(huh.NewGroup(fields...).Title("Sign in to Ringlify")))
}

// NewPassword prompts for a signup password.
func NewPassword(password *string) error {
	return run(huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Password").
			Description(fmt.Sprintf("At least %d characters", models.MinPasswordLength)).
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(func(s string) error {
				if utf8.RuneCountInString(s) < models.MinPasswordLength {
					return errors.New("password is too short")
				}
				return nil
			}),
	)))
}

// Business prompts for the missing fields of a new business.
func Business(in *models.BusinessInput) error {
	fields := []huh.Field{}
	if in.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Business name").
			Value(&in.Name).
			Validate(models.ValidateName))
	}
	if in.PhoneNumber == "" {
		fields = append(fields, huh.NewInput().
			Title("Phone number").
			Placeholder("+15550100").
			Value(&in.PhoneNumber).
			Validate(models.ValidatePhone))
	}
	if len(fields) == 0 {
		return nil
	}
	return run(huh.NewForm(huh.NewGroup(fields...).Title("New business")))
}

func validOwnerPhone(s string) error {
	if utf8.RuneCountInString(s) < models.MinOwnerPhoneLength {
		return errors.New("please enter a valid phone number")
	}
	return models.ValidatePhone(s)
}

func validClock(s string) error {
	return portal.Hours{Timezone: portal.DefaultTimezone, Open: s, Close: s}.Validate()
}

// OnboardingInfo prompts for the business details, prefilled with info.
func OnboardingInfo(info *portal.BusinessInfo) error {
	return run(huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Business name").
			Value(&info.Name).
			Validate(models.ValidateOwnerName),
		huh.NewInput().
			Title("Phone number").
			Placeholder("+15551234567").
			Value(&info.PhoneNumber).
			Validate(validOwnerPhone),
		huh.NewText().
			Title("Description (optional)").
			Placeholder("Tell callers about your business...").
			Value(&info.Description).
			Validate(models.ValidateDescription),
	).Title("Step 1 of 3: Business info")))
}

// OnboardingHours prompts for the timezone and daily opening hours.
func OnboardingHours(h *portal.Hours) error {
	zones := portal.Timezones
	if h.Timezone != "" && !slices.Contains(zones, h.Timezone) {
		zones = append([]string{h.Timezone}, zones...)
	}
	return run(huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Timezone").
			Options(huh.NewOptions(zones...)...).
			Value(&h.Timezone),
		huh.NewInput().
			Title("Opening time").
			Placeholder(portal.DefaultOpen).
			Value(&h.Open).
			Validate(validClock),
		huh.NewInput().
			Title("Closing time").
			Placeholder(portal.DefaultClose).
			Value(&h.Close).
			Validate(validClock),
	).Title("Step 2 of 3: Hours & timezone")))
}

// OnboardingKnowledge prompts for the answers the call assistant uses.
func OnboardingKnowledge(k *portal.Knowledge) error {
	return run(huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("What services do you offer?").
			Value(&k.Services),
		huh.NewText().
			Title("Do you accept walk-ins?").
			Value(&k.WalkIns),
		huh.NewText().
			Title("Any policies customers should know?").
			Placeholder("Cancellation policy, payment methods, etc...").
			Value(&k.Policies),
		huh.NewText().
			Title("Common questions & answers").
			Placeholder("Q: Do you offer discounts? A: Yes, we have...").
			Value(&k.FAQ),
	).Title("Step 3 of 3: Knowledge base").
		Description("This helps the assistant answer questions about your business accurately.")))
}

// ConfirmDangerous shows a confirmation prompt for destructive actions.
func ConfirmDangerous(message string) (bool, error) {
	var result bool
	err := huh.NewConfirm().
		Title(message).
		Description("This action cannot be undone.").
		Affirmative("Yes, I'm sure").
		Negative("Cancel").
		Value(&result).
		Run()
	if err != nil {
		return false, err
	}
	return result, nil
}
