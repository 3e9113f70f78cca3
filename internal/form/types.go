package form

// SubmissionInput carries the raw field values as received from the client,
// before any validation or normalization. Field names mirror the public
// form's input names.
type SubmissionInput struct {
	FirstName      string `json:"First-Name"`
	LastName       string `json:"Last-Name"`
	Email          string `json:"email"`
	JobTitle       string `json:"field"`
	Institution    string `json:"name-2"`
	Message        string `json:"field-2"`
	Consent        string `json:"checkbox"`
	RecaptchaToken string `json:"g-recaptcha-response"`
}

// Submission is the validated, normalized record produced by Validate.
// It is never mutated after creation and lives for one request.
type Submission struct {
	FirstName   string
	LastName    string
	Email       string
	JobTitle    string
	Institution string
	Message     string
}

// FullName returns the submitter's display name for email subjects.
func (s *Submission) FullName() string {
	return s.FirstName + " " + s.LastName
}

// FieldError describes a single violated validation rule. Field is empty for
// errors that are not tied to one input (the JSON then carries only msg).
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"msg"`
}
