package mailer

import "errors"

// Delivery error taxonomy. Callers classify with errors.Is; the HTTP layer
// maps all of them to the same generic server error while the detail is
// logged server-side.
var (
	// ErrNotConfigured means the selected backend is missing credentials.
	ErrNotConfigured = errors.New("email backend not configured")

	// ErrAuthenticationFailed means the transport rejected our credentials.
	ErrAuthenticationFailed = errors.New("email transport authentication failed")

	// ErrTransportUnavailable means the transport could not be reached.
	ErrTransportUnavailable = errors.New("email transport unavailable")

	// ErrSendFailed means the backend accepted the connection but refused
	// or failed the send itself.
	ErrSendFailed = errors.New("email send failed")
)
