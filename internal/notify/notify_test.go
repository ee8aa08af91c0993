package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	msgs []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestNotifyNewOrder(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, zap.NewNop())

	n.NotifyNewOrder(context.Background(), NewOrder{
		OrderID:       12,
		CustomerEmail: "buyer@example.com",
		Amount:        decimal.RequireFromString("5"),
	})

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, "New Order Received", sender.msgs[0].Subject)
	assert.Contains(t, sender.msgs[0].Body, "Order #12")
	assert.Contains(t, sender.msgs[0].Body, "Product: Digital Product")
	assert.Contains(t, sender.msgs[0].Body, "€5.00")
}

func TestNotifyPaymentFailed_Defaults(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, zap.NewNop())

	n.NotifyPaymentFailed(context.Background(), PaymentFailed{OrderID: 3})

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, "Payment Failed", sender.msgs[0].Subject)
	assert.Contains(t, sender.msgs[0].Body, "Customer: Unknown")
	assert.Contains(t, sender.msgs[0].Body, "Reason: Unknown reason")
}

func TestNotify_SenderErrorIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	n := NewNotifier(sender, zap.NewNop())

	assert.NotPanics(t, func() {
		n.NotifyNewOrder(context.Background(), NewOrder{OrderID: 1, Amount: decimal.Zero})
	})
	assert.Len(t, sender.msgs, 1)
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "shop@example.com",
		To:       "owner@example.com",
		ToName:   "Owner",
	})

	m := s.buildMessage(Message{Subject: "Payment Failed", Body: "details"})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: shop@example.com")
	assert.Contains(t, raw, "Subject: Payment Failed")
	assert.True(t, strings.Contains(raw, "owner@example.com"))
}

func TestSMTPSender_CanceledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, Message{Subject: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
