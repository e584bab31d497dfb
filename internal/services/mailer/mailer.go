// Package mailer sends invoice mails through SendGrid.
package mailer

import (
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/amira2200/pfe2025/internal/config"
)

type Mailer struct {
	client *sendgrid.Client
	from   string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   cfg.InvoiceFrom,
	}
}

// SendInvoice mails the rendered PDF to the customer. A non-2xx SendGrid
// response is an error; the caller decides whether it is fatal.
func (m *Mailer) SendInvoice(to, orderNumber string, pdf []byte) error {
	if to == "" {
		return fmt.Errorf("order %s has no customer email", orderNumber)
	}

	from := mail.NewEmail("Orders", m.from)
	recipient := mail.NewEmail("", to)
	subject := "Your invoice for order " + orderNumber
	body := "Please find attached the invoice for your order " + orderNumber + "."
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(pdf))
	attachment.SetType("application/pdf")
	attachment.SetFilename("invoice_" + orderNumber + ".pdf")
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("send invoice mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send invoice mail: sendgrid returned %d", resp.StatusCode)
	}

	log.Info().Str("order", orderNumber).Str("to", to).Msg("invoice mailed")
	return nil
}
