package form

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// namePattern accepts unicode letters (including accented characters and
// combining marks), spaces, hyphens and apostrophes.
var namePattern = regexp.MustCompile(`^[\p{L}\p{M}' -]+$`)

const (
	nameMinLen        = 2
	nameMaxLen        = 50
	institutionMinLen = 2
	institutionMaxLen = 100
	messageMaxLen     = 1000
)

// Validate applies every field rule to the raw input and returns either a
// normalized Submission or the full list of violations. All rules are
// evaluated so the caller can report every problem at once.
func Validate(input SubmissionInput) (*Submission, []FieldError) {
	var errs []FieldError

	firstName := strings.TrimSpace(input.FirstName)
	if msg := checkName(firstName); msg != "" {
		errs = append(errs, FieldError{Field: "First-Name", Message: "First name " + msg})
	}

	lastName := strings.TrimSpace(input.LastName)
	if msg := checkName(lastName); msg != "" {
		errs = append(errs, FieldError{Field: "Last-Name", Message: "Last name " + msg})
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !isValidEmail(email) {
		errs = append(errs, FieldError{Field: "email", Message: "A valid email address is required"})
	}

	jobTitle := strings.TrimSpace(input.JobTitle)
	if jobTitle == "" {
		errs = append(errs, FieldError{Field: "field", Message: "Job title is required"})
	}

	institution := strings.TrimSpace(input.Institution)
	if n := utf8.RuneCountInString(institution); n < institutionMinLen || n > institutionMaxLen {
		errs = append(errs, FieldError{Field: "name-2", Message: "Institution name must be between 2 and 100 characters"})
	}

	message := strings.TrimSpace(input.Message)
	if utf8.RuneCountInString(message) > messageMaxLen {
		errs = append(errs, FieldError{Field: "field-2", Message: "Message must be at most 1000 characters"})
	}

	// Consent must be affirmatively set; a missing checkbox is an error,
	// not an implicit false.
	if input.Consent != "on" {
		errs = append(errs, FieldError{Field: "checkbox", Message: "You must agree to be contacted"})
	}

	if strings.TrimSpace(input.RecaptchaToken) == "" {
		errs = append(errs, FieldError{Field: "g-recaptcha-response", Message: "reCAPTCHA token is required"})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Submission{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		JobTitle:    jobTitle,
		Institution: institution,
		Message:     message,
	}, nil
}

func checkName(name string) string {
	n := utf8.RuneCountInString(name)
	if n < nameMinLen || n > nameMaxLen {
		return "must be between 2 and 50 characters"
	}
	if !namePattern.MatchString(name) {
		return "may only contain letters, spaces, hyphens and apostrophes"
	}
	return ""
}

// isValidEmail requires a bare, syntactically valid address (no display name).
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
