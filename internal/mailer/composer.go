package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/clinicore/contact-api/internal/config"
	"github.com/clinicore/contact-api/internal/form"
)

const teamBodyTemplate = `<h2>New Contact Form Submission</h2>
<table cellpadding="4" cellspacing="0">
  <tr><td><strong>Name</strong></td><td>{{ first_name | escape }} {{ last_name | escape }}</td></tr>
  <tr><td><strong>Email</strong></td><td>{{ email | escape }}</td></tr>
  <tr><td><strong>Job Title</strong></td><td>{{ job_title | escape }}</td></tr>
  <tr><td><strong>Institution</strong></td><td>{{ institution | escape }}</td></tr>
</table>
{% if message != "" %}<h3>Message</h3>
<p>{{ message | escape | newline_to_br }}</p>
{% endif %}<hr>
<p style="color:#888;font-size:12px">Submitted {{ submitted_at }} &middot; Ref {{ reference }}</p>`

const userBodyTemplate = `<p>Hi {{ first_name | escape }},</p>
<p>Thank you for reaching out to Clinicore. We received your submission and a member
of our team will get in touch with you soon.</p>
<p>In the meantime, feel free to <a href="https://clinicore.io/resources">browse our
resource library</a> for guides and product walkthroughs.</p>
<p>&mdash; The Clinicore Team</p>`

const userSubject = "Thank you for contacting Clinicore"

// Composer renders the two notification emails for a validated submission.
// Templates are parsed once at construction; a parse or render failure is a
// coding defect, not an operational condition.
type Composer struct {
	from    string
	teamTo  string
	teamTpl *liquid.Template
	userTpl *liquid.Template
	now     func() time.Time
}

// NewComposer parses the message templates and binds the configured
// sender/operator addresses.
func NewComposer(cfg config.EmailConfig) (*Composer, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})
	engine.RegisterFilter("newline_to_br", func(s string) string {
		return strings.ReplaceAll(s, "\n", "<br />\n")
	})

	teamTpl, err := engine.ParseString(teamBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse team template: %w", err)
	}
	userTpl, err := engine.ParseString(userBodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse user template: %w", err)
	}

	return &Composer{
		from:    cfg.From,
		teamTo:  cfg.To,
		teamTpl: teamTpl,
		userTpl: userTpl,
		now:     time.Now,
	}, nil
}

// SetClock overrides the timestamp source. Used by tests.
func (c *Composer) SetClock(now func() time.Time) {
	c.now = now
}

// Compose builds the operator notification and the submitter confirmation.
// Output is deterministic given the submission, the reference ID and the
// current timestamp (which appears only in the operator footer).
func (c *Composer) Compose(sub *form.Submission, reference string) (team, user *Message, err error) {
	teamHTML, err := c.teamTpl.RenderString(map[string]interface{}{
		"first_name":   sub.FirstName,
		"last_name":    sub.LastName,
		"email":        sub.Email,
		"job_title":    sub.JobTitle,
		"institution":  sub.Institution,
		"message":      sub.Message,
		"submitted_at": c.now().UTC().Format(time.RFC1123),
		"reference":    reference,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("render team notification: %w", err)
	}

	userHTML, err := c.userTpl.RenderString(map[string]interface{}{
		"first_name": sub.FirstName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("render user confirmation: %w", err)
	}

	team = &Message{
		From:     c.from,
		FromName: "Clinicore Contact Form",
		To:       c.teamTo,
		Subject:  fmt.Sprintf("New contact form submission from %s", sub.FullName()),
		HTML:     teamHTML,
	}
	user = &Message{
		From:     c.from,
		FromName: "Clinicore",
		To:       sub.Email,
		Subject:  userSubject,
		HTML:     userHTML,
	}
	return team, user, nil
}
