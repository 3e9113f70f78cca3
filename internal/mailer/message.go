package mailer

// Message is a single composed email, immutable once built.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}
