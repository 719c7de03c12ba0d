// Package notify delivers order confirmations to customers.
package notify

import (
	"bytes"
	"context"
	"net"
	"net/smtp"
	"text/template"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/order"
)

const confirmationTemplate = `From: {{.From}}
To: {{.To}}
Subject: Order #{{.Order.ID}} confirmed

Hello {{.Name}},

your order #{{.Order.ID}} was placed on {{.Order.PlacedAt.Format "2006-01-02 15:04"}} UTC.

Items:
{{- range .Order.Items}}
  - product {{.ProductID}} x{{.Quantity}} at {{.Price.StringFixed 2}}
{{- end}}

Payment: {{.Order.Payment.Method}}{{if .Order.Payment.DueDate.IsZero | not}}, due {{.Order.Payment.DueDate.Format "2006-01-02"}}{{end}}
Total: {{.Total}}

Thank you for your purchase.
`

var tmpl = template.Must(template.New("confirmation").Parse(confirmationTemplate))

var _ order.Notifier = (*Mailer)(nil)

// SMTPConfig holds the connection settings of the outgoing mail server.
type SMTPConfig struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

// Mailer sends order confirmations over SMTP. The customer's address is
// resolved at send time from the repository.
type Mailer struct {
	cfg       SMTPConfig
	customers customer.Repository

	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a Mailer.
func NewMailer(cfg SMTPConfig, customers customer.Repository) *Mailer {
	return &Mailer{
		cfg:       cfg,
		customers: customers,
		send:      smtp.SendMail,
	}
}

// SendOrderConfirmation renders and sends the confirmation email for o.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	cust, err := m.customers.GetByID(ctx, o.CustomerID)
	if err != nil {
		return errors.Wrapf(err, "resolve customer %d", o.CustomerID)
	}

	msg, err := renderConfirmation(m.cfg.From, cust, o)
	if err != nil {
		return err
	}

	var a smtp.Auth
	if m.cfg.Username != "" {
		host, _, err := net.SplitHostPort(m.cfg.Addr)
		if err != nil {
			host = m.cfg.Addr
		}
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, host)
	}

	if err := m.send(m.cfg.Addr, a, m.cfg.From, []string{cust.Email}, msg); err != nil {
		return errors.Wrapf(err, "send confirmation for order %d", o.ID)
	}
	return nil
}

func renderConfirmation(from string, cust *customer.Customer, o *order.Order) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{
		"From":  from,
		"To":    cust.Email,
		"Name":  cust.Name,
		"Order": o,
		"Total": o.Total().StringFixed(2),
	})
	if err != nil {
		return nil, errors.Wrap(err, "render confirmation")
	}
	return buf.Bytes(), nil
}
