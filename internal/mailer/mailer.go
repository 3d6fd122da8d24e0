package mailer

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/models"

	"gopkg.in/gomail.v2"
)

// Sender delivers the lifecycle notification mails. Services depend on this
// interface so tests can substitute a recording fake.
type Sender interface {
	SendVerification(person *models.Person, token *models.Token) error
	SendVerified(person *models.Person) error
	SendConfirmation(person *models.Person, token *models.Token) error
}

var verificationTmpl = template.Must(template.New("verification").Parse(
	`Hi {{.Name}},

Thanks for signing up! Please confirm your email address by opening this link:

{{.Host}}/api/v1/verify/{{.Token}}

The link is valid until {{.Expires}}.
`))

var verifiedTmpl = template.Must(template.New("verified").Parse(
	`Hi {{.Name}},

Your email address is verified and your application is registered.
We will be in touch soon with more information.
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`Hi {{.Name}},

You have been accepted! Please confirm (or decline) your seat here:

{{.Host}}/api/v1/confirm/{{.Token}}

The link is valid until {{.Expires}}. Unconfirmed seats may be released
to the waiting list after that.
`))

type SMTPSender struct {
	dialer *gomail.Dialer
	mail   config.MailConfig
	host   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password)
	dialer.SSL = cfg.Mail.Port == 465

	return &SMTPSender{
		dialer: dialer,
		mail:   cfg.Mail,
		host:   cfg.PublicHost,
	}
}

func (s *SMTPSender) SendVerification(person *models.Person, token *models.Token) error {
	body, err := render(verificationTmpl, s.tokenParams(person, token))
	if err != nil {
		return err
	}
	return s.send(person.Email, s.mail.VerificationSubject, body, token.CreatedAt)
}

func (s *SMTPSender) SendVerified(person *models.Person) error {
	body, err := render(verifiedTmpl, map[string]string{"Name": person.Name})
	if err != nil {
		return err
	}
	return s.send(person.Email, s.mail.VerifiedSubject, body, time.Now())
}

func (s *SMTPSender) SendConfirmation(person *models.Person, token *models.Token) error {
	body, err := render(confirmationTmpl, s.tokenParams(person, token))
	if err != nil {
		return err
	}
	return s.send(person.Email, s.mail.ConfirmationSubject, body, token.CreatedAt)
}

func (s *SMTPSender) tokenParams(person *models.Person, token *models.Token) map[string]string {
	return map[string]string{
		"Name":    person.Name,
		"Host":    s.host,
		"Token":   token.Value,
		"Expires": token.ExpiresAt.Local().Format("2006-01-02 15:04"),
	}
}

func (s *SMTPSender) send(to, subject, body string, ref time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.mail.From)
	m.SetHeader("To", to)
	if s.mail.ReplyTo != "" {
		m.SetHeader("Reply-To", s.mail.ReplyTo)
	}
	m.SetHeader("Message-Id", fmt.Sprintf("<hackathon-%d@%s>", ref.UnixNano(), s.mail.Host))
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}

func render(tmpl *template.Template, params any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render mail template: %w", err)
	}
	return buf.String(), nil
}
