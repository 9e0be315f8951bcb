// Package notify envía los emails transaccionales por SMTP.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

// Config servidor SMTP y remitente.
type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	AdminEmail string
}

// SendFunc entrega un email ya armado.
type SendFunc func(e *email.Email) error

// Mailer arma y envía la notificación de pago aprobado.
type Mailer struct {
	cfg     Config
	send    SendFunc
	tmpl    *template.Template
	printer *message.Printer
	loc     *time.Location
}

const paymentApprovedHTML = `<!DOCTYPE html>
<html lang="es">
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>¡Recibimos tu pago!</h2>
  <p>El pago de tu pedido fue aprobado.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Pedido</strong></td><td>{{.SaleID}}</td></tr>
    <tr><td><strong>Pago</strong></td><td>{{.PaymentID}}</td></tr>
    <tr><td><strong>Importe</strong></td><td>{{.Amount}}</td></tr>
    {{if .PayerEmail}}<tr><td><strong>Pagador</strong></td><td>{{.PayerEmail}}</td></tr>{{end}}
    <tr><td><strong>Fecha</strong></td><td>{{.Date}}</td></tr>
  </table>
  <p>Gracias por tu compra.</p>
</body>
</html>`

var paymentApprovedTmpl = template.Must(template.New("payment_approved").Parse(paymentApprovedHTML))

// NewMailer construye el mailer con envío SMTP PlainAuth. loc es la zona para la fecha (nil = Local).
func NewMailer(cfg Config, loc *time.Location) *Mailer {
	if loc == nil {
		loc = time.Local
	}
	m := &Mailer{
		cfg:     cfg,
		tmpl:    paymentApprovedTmpl,
		printer: message.NewPrinter(language.MustParse("es-AR")),
		loc:     loc,
	}
	m.send = m.smtpSend
	return m
}

// WithSender reemplaza el envío SMTP (tests).
func (m *Mailer) WithSender(fn SendFunc) *Mailer {
	m.send = fn
	return m
}

// FormatAmount formatea el importe con separadores de es-AR: "$ 1.234,50".
func (m *Mailer) FormatAmount(amount float64, currency string) string {
	symbol := "$"
	if currency != "" && currency != "ARS" {
		symbol = currency
	}
	return symbol + " " + m.printer.Sprintf("%.2f", amount)
}

// Render devuelve asunto y cuerpo HTML de la notificación.
func (m *Mailer) Render(in ports.PaymentApprovedEmail) (string, []byte, error) {
	approved := in.ApprovedAt
	if approved.IsZero() {
		approved = time.Now()
	}
	data := struct {
		SaleID, PaymentID, Amount, PayerEmail, Date string
	}{
		SaleID:     in.SaleID,
		PaymentID:  in.PaymentID,
		Amount:     m.FormatAmount(in.Amount.InexactFloat64(), in.Currency),
		PayerEmail: in.PayerEmail,
		Date:       approved.In(m.loc).Format("02/01/2006 15:04"),
	}
	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, data); err != nil {
		return "", nil, fmt.Errorf("notify: render: %w", err)
	}
	return "Pago aprobado - pedido " + in.SaleID, buf.Bytes(), nil
}

// SendPaymentApproved arma y envía el email. AdminEmail recibe copia oculta.
func (m *Mailer) SendPaymentApproved(_ context.Context, in ports.PaymentApprovedEmail) error {
	if in.To == "" {
		return fmt.Errorf("notify: destinatario vacío")
	}
	subject, html, err := m.Render(in)
	if err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = m.cfg.From
	if e.From == "" {
		e.From = m.cfg.User
	}
	e.To = []string{in.To}
	if m.cfg.AdminEmail != "" {
		e.Bcc = []string{m.cfg.AdminEmail}
	}
	e.Subject = subject
	e.HTML = html
	if err := m.send(e); err != nil {
		return fmt.Errorf("notify: enviar a %s: %w", in.To, err)
	}
	return nil
}

func (m *Mailer) smtpSend(e *email.Email) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("SMTP_HOST no configurado")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	return e.Send(addr, auth)
}
