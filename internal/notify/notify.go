// Package notify отправляет владельцу магазина уведомления о событиях заказов.
// Отправка best-effort: ошибки логируются и не влияют на обработку заказа.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// NewOrder содержит данные уведомления о новом заказе.
type NewOrder struct {
	OrderID       int64
	CustomerEmail string
	ProductName   string
	Amount        decimal.Decimal
}

// PaymentFailed содержит данные уведомления о неудачной оплате.
type PaymentFailed struct {
	OrderID       int64
	CustomerEmail string
	ProductName   string
	Reason        string
}

// Message описывает готовое к отправке уведомление.
type Message struct {
	Subject string
	Body    string
}

// Sender доставляет сообщение владельцу магазина.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	newOrderTmpl = template.Must(template.New("new_order").Parse(`Order #{{.OrderID}}
Customer: {{.CustomerEmail}}
Product: {{.ProductName}}
Amount: €{{.Amount.StringFixed 2}}

Please process this order and deliver the digital product to the customer.`))

	paymentFailedTmpl = template.Must(template.New("payment_failed").Parse(`Order #{{.OrderID}} payment failed
Customer: {{.CustomerEmail}}
Product: {{.ProductName}}
Reason: {{.Reason}}

Please contact the customer to resolve the payment issue.`))
)

// Notifier формирует уведомления и передаёт их отправителю.
type Notifier struct {
	sender Sender
	logger *zap.Logger
}

// NewNotifier создаёт Notifier.
func NewNotifier(sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

// NotifyNewOrder сообщает владельцу о новом заказе.
func (n *Notifier) NotifyNewOrder(ctx context.Context, o NewOrder) {
	if o.CustomerEmail == "" {
		o.CustomerEmail = "Unknown"
	}
	if o.ProductName == "" {
		o.ProductName = "Digital Product"
	}
	n.deliver(ctx, "New Order Received", newOrderTmpl, o)
}

// NotifyPaymentFailed сообщает владельцу о неудачной оплате.
func (n *Notifier) NotifyPaymentFailed(ctx context.Context, p PaymentFailed) {
	if p.CustomerEmail == "" {
		p.CustomerEmail = "Unknown"
	}
	if p.ProductName == "" {
		p.ProductName = "Digital Product"
	}
	if p.Reason == "" {
		p.Reason = "Unknown reason"
	}
	n.deliver(ctx, "Payment Failed", paymentFailedTmpl, p)
}

func (n *Notifier) deliver(ctx context.Context, subject string, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		n.logger.Error("render notification", zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := n.sender.Send(ctx, Message{Subject: subject, Body: buf.String()}); err != nil {
		n.logger.Error("send notification", zap.String("subject", subject), zap.Error(err))
		return
	}

	n.logger.Info("notification sent to owner", zap.String("subject", subject))
}

// SMTPConfig содержит параметры SMTP-сервера.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	ToName   string
}

// SMTPSender отправляет уведомления письмом через gomail.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender создаёт отправителя писем.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send отправляет письмо владельцу.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.buildMessage(msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	if s.cfg.ToName != "" {
		m.SetAddressHeader("To", s.cfg.To, s.cfg.ToName)
	} else {
		m.SetHeader("To", s.cfg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}

// LogSender пишет уведомления в лог. Используется, когда SMTP не настроен.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender создаёт LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send пишет уведомление в лог.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("owner notification", zap.String("subject", msg.Subject), zap.String("body", msg.Body))
	return nil
}
