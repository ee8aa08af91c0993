// Package payment предоставляет клиент платёжной системы Stripe: создание сессий оплаты
// и проверку подписанных webhook-событий.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured возвращается, если ключи Stripe не заданы.
var ErrNotConfigured = errors.New("stripe is not configured")

// LineItem описывает позицию в сессии оплаты.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// CheckoutRequest содержит параметры создания сессии оплаты.
type CheckoutRequest struct {
	CustomerEmail     string
	ClientReferenceID string
	Currency          string
	Item              LineItem
	Metadata          CheckoutMetadata
	SuccessURL        string
	CancelURL         string
}

// Session: созданная сессия оплаты.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// SessionDetails: состояние сессии оплаты.
type SessionDetails struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`

	ClientReferenceID string `json:"-"`
}

// Client инкапсулирует взаимодействие со Stripe.
type Client struct {
	api           *client.API
	webhookSecret string
}

// NewClient создаёт клиент Stripe. Пустой secretKey отключает создание сессий,
// пустой webhookSecret отключает приём webhook-событий.
func NewClient(secretKey, webhookSecret string) *Client {
	c := &Client{webhookSecret: webhookSecret}
	if secretKey != "" {
		c.api = client.New(secretKey, nil)
	}
	return c
}

// CreateCheckoutSession создаёт сессию оплаты одного товара.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	if c == nil || c.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail:       stripe.String(req.CustomerEmail),
		ClientReferenceID:   stripe.String(req.ClientReferenceID),
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:          stripe.String(req.SuccessURL),
		CancelURL:           stripe.String(req.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Item.Name),
					},
					UnitAmount: stripe.Int64(req.Item.UnitAmount),
				},
				Quantity: stripe.Int64(req.Item.Quantity),
			},
		},
	}
	if req.Item.Description != "" {
		params.LineItems[0].PriceData.ProductData.Description = stripe.String(req.Item.Description)
	}
	for k, v := range req.Metadata.Map() {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}

// GetCheckoutSession возвращает состояние сессии оплаты.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*SessionDetails, error) {
	if c == nil || c.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	return &SessionDetails{
		ID:            s.ID,
		Status:        string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,

		ClientReferenceID: s.ClientReferenceID,
	}, nil
}
