package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Типы webhook-событий, которые обрабатывает витрина.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
	EventChargeRefunded           = "charge.refunded"
)

const testEventPrefix = "evt_test_"

var (
	// ErrInvalidSignature возвращается, если подпись события не прошла проверку.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent возвращается, если подписанное тело не удалось разобрать как событие.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// Event: проверенное webhook-событие. Заполнен только объект, соответствующий типу события.
type Event struct {
	ID   string
	Type string

	CheckoutSession *CheckoutSession
	PaymentIntent   *PaymentIntent
	Charge          *Charge
}

// IsTest сообщает, является ли событие тестовым событием проверки endpoint'а.
func (e *Event) IsTest() bool {
	return strings.HasPrefix(e.ID, testEventPrefix)
}

// CheckoutSession: данные завершённой сессии оплаты.
type CheckoutSession struct {
	ID              string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
}

// PaymentIntent: данные платёжного намерения.
type PaymentIntent struct {
	ID            string
	ReceiptEmail  string
	FailureReason string
}

// Charge: данные списания.
type Charge struct {
	ID              string
	PaymentIntentID string
	AmountRefunded  int64
}

// ParseWebhookEvent проверяет подпись тела запроса и разбирает событие.
// Подпись проверяется по сырому телу до разбора любых полей.
func (c *Client) ParseWebhookEvent(payload []byte, signatureHeader string) (*Event, error) {
	if c == nil || c.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	if err := webhook.ValidatePayloadWithTolerance(payload, signatureHeader, c.webhookSecret, webhook.DefaultTolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var raw stripe.Event
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if raw.ID == "" || raw.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}

	ev := &Event{ID: raw.ID, Type: string(raw.Type)}
	if ev.IsTest() {
		return ev, nil
	}

	var data json.RawMessage
	if raw.Data != nil {
		data = raw.Data.Raw
	}

	switch ev.Type {
	case EventCheckoutSessionCompleted:
		var s stripe.CheckoutSession
		if err := decodeObject(data, &s); err != nil {
			return nil, err
		}
		ev.CheckoutSession = &CheckoutSession{
			ID:            s.ID,
			AmountTotal:   s.AmountTotal,
			Currency:      string(s.Currency),
			CustomerEmail: s.CustomerEmail,
			Metadata:      s.Metadata,
		}
		if s.PaymentIntent != nil {
			ev.CheckoutSession.PaymentIntentID = s.PaymentIntent.ID
		}
	case EventPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := decodeObject(data, &pi); err != nil {
			return nil, err
		}
		ev.PaymentIntent = &PaymentIntent{ID: pi.ID, ReceiptEmail: pi.ReceiptEmail}
		if pi.LastPaymentError != nil {
			ev.PaymentIntent.FailureReason = pi.LastPaymentError.Msg
		}
	case EventChargeRefunded:
		var ch stripe.Charge
		if err := decodeObject(data, &ch); err != nil {
			return nil, err
		}
		ev.Charge = &Charge{ID: ch.ID, AmountRefunded: ch.AmountRefunded}
		if ch.PaymentIntent != nil {
			ev.Charge.PaymentIntentID = ch.PaymentIntent.ID
		}
	}

	return ev, nil
}

func decodeObject(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data.object", ErrMalformedEvent)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}
