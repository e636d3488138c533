package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
	"echoforge.backend/internal/config"
	"echoforge.backend/internal/domain/entities"
)

// Mailer sends user-facing notification emails. Reconciliation treats
// sends as best-effort: a failed send never rolls back the settlement.
type Mailer interface {
	SendPaymentConfirmed(to string, payment *entities.Payment) error
	SendPaymentRejected(to string, payment *entities.Payment) error
	SendLicenseIssued(to string, license *entities.LicenseKey) error
}

// SMTPMailer sends through the configured SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPaymentConfirmed(to string, payment *entities.Payment) error {
	body := fmt.Sprintf("<p>Your payment <b>%s</b> of $%s has been confirmed.</p>",
		payment.Reference, payment.AmountUSD.StringFixed(2))
	return m.send(to, "Payment confirmed", body)
}

func (m *SMTPMailer) SendPaymentRejected(to string, payment *entities.Payment) error {
	body := fmt.Sprintf("<p>Your payment <b>%s</b> could not be verified. Please contact support.</p>",
		payment.Reference)
	return m.send(to, "Payment rejected", body)
}

func (m *SMTPMailer) SendLicenseIssued(to string, license *entities.LicenseKey) error {
	body := fmt.Sprintf("<p>Your purchase is complete. License key: <b>%s</b></p>", license.Key)
	return m.send(to, "Your license key", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(msg)
}

// NopMailer is used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendPaymentConfirmed(string, *entities.Payment) error { return nil }
func (NopMailer) SendPaymentRejected(string, *entities.Payment) error  { return nil }
func (NopMailer) SendLicenseIssued(string, *entities.LicenseKey) error { return nil }
