package api

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/contact-api/internal/form"
	"github.com/clinicore/contact-api/internal/mailer"
	"github.com/clinicore/contact-api/internal/ratelimit"
	"github.com/clinicore/contact-api/internal/recaptcha"
)

// Public response messages. Internal failure detail is logged server-side
// only and never crosses the HTTP boundary.
const (
	msgSuccess          = "Thank you for your submission. We will get in touch soon!"
	msgValidationFailed = "Validation failed"
	msgCaptchaFailed    = "reCAPTCHA verification failed. Please try again."
	msgRateLimited      = "Too many requests from this IP, please try again later."
	msgServerError      = "Sorry, there was an error sending your message. Please try again later."
)

// Verifier checks one challenge token against the verification service.
type Verifier interface {
	Verify(ctx context.Context, token string) recaptcha.Result
}

// Dispatcher delivers the composed message pair.
type Dispatcher interface {
	Dispatch(ctx context.Context, team, user *mailer.Message) error
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	siteKey    string
	limiter    ratelimit.Limiter
	verifier   Verifier
	composer   *mailer.Composer
	dispatcher Dispatcher
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(siteKey string, limiter ratelimit.Limiter, verifier Verifier, composer *mailer.Composer, dispatcher Dispatcher) *Handlers {
	return &Handlers{
		siteKey:    siteKey,
		limiter:    limiter,
		verifier:   verifier,
		composer:   composer,
		dispatcher: dispatcher,
	}
}

type submitResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []form.FieldError `json:"errors,omitempty"`
}

// SubmitContact handles a contact form submission end to end:
// validate → verify token → compose → dispatch.
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()

	input, err := parseSubmission(r)
	if err != nil {
		log.Printf("[Contact] %s: unreadable request body: %v", reqID, err)
		respondJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Message: msgValidationFailed,
			Errors:  []form.FieldError{{Message: "Request body could not be parsed"}},
		})
		return
	}

	sub, fieldErrs := form.Validate(input)
	if len(fieldErrs) > 0 {
		respondJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Message: msgValidationFailed,
			Errors:  fieldErrs,
		})
		return
	}

	result := h.verifier.Verify(r.Context(), input.RecaptchaToken)
	if !result.Success {
		// Reason codes stay server-side; the caller gets a generic message.
		log.Printf("[Contact] %s: reCAPTCHA failed for %s: %v", reqID, sub.Email, result.ErrorCodes)
		respondJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Message: msgCaptchaFailed,
			Errors:  []form.FieldError{{Message: msgCaptchaFailed}},
		})
		return
	}

	team, user, err := h.composer.Compose(sub, reqID)
	if err != nil {
		log.Printf("[Contact] %s: compose failed: %v", reqID, err)
		respondJSON(w, http.StatusInternalServerError, submitResponse{Success: false, Message: msgServerError})
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), team, user); err != nil {
		log.Printf("[Contact] %s: delivery failed for %s: %v", reqID, sub.Email, err)
		respondJSON(w, http.StatusInternalServerError, submitResponse{Success: false, Message: msgServerError})
		return
	}

	log.Printf("[Contact] %s: submission from %s delivered", reqID, sub.Email)
	respondJSON(w, http.StatusOK, submitResponse{Success: true, Message: msgSuccess})
}

// GetSiteKey serves the public reCAPTCHA site key for the front-end widget.
func (h *Handlers) GetSiteKey(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"siteKey": h.siteKey})
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RateLimit refuses requests once an IP exhausts its window. Limiter errors
// fail open; a degraded Redis must not block submissions.
func (h *Handlers) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := h.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			log.Printf("[RateLimit] Check failed: %v", err)
		}
		if !allowed {
			respondJSON(w, http.StatusTooManyRequests, submitResponse{
				Success: false,
				Message: msgRateLimited,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseSubmission accepts either a JSON body or a classic form post.
func parseSubmission(r *http.Request) (form.SubmissionInput, error) {
	var input form.SubmissionInput

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			return input, err
		}
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return input, err
	}
	input.FirstName = r.PostFormValue("First-Name")
	input.LastName = r.PostFormValue("Last-Name")
	input.Email = r.PostFormValue("email")
	input.JobTitle = r.PostFormValue("field")
	input.Institution = r.PostFormValue("name-2")
	input.Message = r.PostFormValue("field-2")
	input.Consent = r.PostFormValue("checkbox")
	input.RecaptchaToken = r.PostFormValue("g-recaptcha-response")
	return input, nil
}

// clientIP extracts the client address set by middleware.RealIP, dropping
// the port when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
