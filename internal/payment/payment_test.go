package payment

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test_secret"

func sign(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func TestParseWebhookEvent_CheckoutCompleted(t *testing.T) {
	c := NewClient("", testSecret)

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"amount_total": 500,
			"currency": "eur",
			"customer_email": "buyer@example.com",
			"payment_intent": "pi_1",
			"metadata": {"user_id": "7", "product_id": "3"}
		}}
	}`)

	ev, err := c.ParseWebhookEvent(payload, sign(payload, testSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, ev.Type)
	assert.False(t, ev.IsTest())
	require.NotNil(t, ev.CheckoutSession)
	assert.Equal(t, "cs_1", ev.CheckoutSession.ID)
	assert.Equal(t, "pi_1", ev.CheckoutSession.PaymentIntentID)
	assert.Equal(t, int64(500), ev.CheckoutSession.AmountTotal)
	assert.Equal(t, "buyer@example.com", ev.CheckoutSession.CustomerEmail)
	assert.Equal(t, "7", ev.CheckoutSession.Metadata["user_id"])
}

func TestParseWebhookEvent_PaymentFailedAndRefund(t *testing.T) {
	c := NewClient("", testSecret)

	failed := []byte(`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{
		"id":"pi_9","object":"payment_intent","receipt_email":"buyer@example.com",
		"last_payment_error":{"message":"card declined"}}}}`)

	ev, err := c.ParseWebhookEvent(failed, sign(failed, testSecret))
	require.NoError(t, err)
	require.NotNil(t, ev.PaymentIntent)
	assert.Equal(t, "pi_9", ev.PaymentIntent.ID)
	assert.Equal(t, "card declined", ev.PaymentIntent.FailureReason)

	refunded := []byte(`{"id":"evt_3","type":"charge.refunded","data":{"object":{
		"id":"ch_1","object":"charge","payment_intent":"pi_9","amount_refunded":500}}}`)

	ev, err = c.ParseWebhookEvent(refunded, sign(refunded, testSecret))
	require.NoError(t, err)
	require.NotNil(t, ev.Charge)
	assert.Equal(t, "pi_9", ev.Charge.PaymentIntentID)
	assert.Equal(t, int64(500), ev.Charge.AmountRefunded)
}

func TestParseWebhookEvent_InvalidSignature(t *testing.T) {
	c := NewClient("", testSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty header", header: ""},
		{name: "wrong secret", header: sign(payload, "whsec_other")},
		{name: "garbage", header: "t=1,v1=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ParseWebhookEvent(payload, tt.header)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestParseWebhookEvent_BodyReserializedFailsVerification(t *testing.T) {
	c := NewClient("", testSecret)
	payload := []byte(`{"id": "evt_1", "type": "charge.refunded"}`)
	header := sign(payload, testSecret)

	reserialized := []byte(`{"id":"evt_1","type":"charge.refunded"}`)

	_, err := c.ParseWebhookEvent(reserialized, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookEvent_TestEvent(t *testing.T) {
	c := NewClient("", testSecret)
	payload := []byte(`{"id":"evt_test_abc","type":"checkout.session.completed","data":{"object":{}}}`)

	ev, err := c.ParseWebhookEvent(payload, sign(payload, testSecret))
	require.NoError(t, err)
	assert.True(t, ev.IsTest())
	assert.Nil(t, ev.CheckoutSession)
}

func TestParseWebhookEvent_Malformed(t *testing.T) {
	c := NewClient("", testSecret)
	payload := []byte(`not json`)

	_, err := c.ParseWebhookEvent(payload, sign(payload, testSecret))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestParseWebhookEvent_NotConfigured(t *testing.T) {
	c := NewClient("", "")
	_, err := c.ParseWebhookEvent([]byte(`{}`), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateCheckoutSession_NotConfigured(t *testing.T) {
	c := NewClient("", testSecret)
	_, err := c.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.GetCheckoutSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCheckoutMetadataRoundTrip(t *testing.T) {
	m := CheckoutMetadata{UserID: 7, ProductID: 3, CustomerEmail: "a@b.c", CustomerName: "Customer"}

	got, err := ParseCheckoutMetadata(m.Map())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestParseCheckoutMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
	}{
		{name: "nil", raw: nil},
		{name: "missing product", raw: map[string]string{"user_id": "7"}},
		{name: "non numeric", raw: map[string]string{"user_id": "seven", "product_id": "3"}},
		{name: "negative", raw: map[string]string{"user_id": "-1", "product_id": "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCheckoutMetadata(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}
