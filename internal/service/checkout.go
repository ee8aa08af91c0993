package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
)

// CheckoutInput: запрос на создание сессии оплаты.
type CheckoutInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gte=1,lte=100"`
}

// CreateCheckout создаёт сессию оплаты товара во внешней платёжной системе.
// Журнал заказов не меняется: заказ появится только после webhook-подтверждения.
func (s *Service) CreateCheckout(ctx context.Context, buyer *model.User, in CheckoutInput, origin string) (*payment.Session, error) {
	if buyer == nil {
		return nil, ErrUnauthenticated
	}
	if buyer.Email == "" {
		return nil, ErrEmailRequired
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	base := strings.TrimRight(s.opts.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(origin, "/")
	}
	if base == "" {
		return nil, fmt.Errorf("%w: cannot determine return URL", ErrInvalidInput)
	}

	product, err := s.repo.GetProduct(ctx, in.ProductID, false)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", mapStoreError(err))
	}

	customerName := buyer.Name
	if customerName == "" {
		customerName = "Customer"
	}

	session, err := s.payments.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CustomerEmail:     buyer.Email,
		ClientReferenceID: strconv.FormatInt(buyer.ID, 10),
		Currency:          s.opts.Currency,
		Item: payment.LineItem{
			Name:        product.Name,
			Description: product.Description,
			UnitAmount:  model.ToMinorUnits(product.Price),
			Quantity:    in.Quantity,
		},
		Metadata: payment.CheckoutMetadata{
			UserID:        buyer.ID,
			ProductID:     product.ID,
			CustomerEmail: buyer.Email,
			CustomerName:  customerName,
			ProductName:   product.Name,
		},
		SuccessURL: base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/cancelled",
	})
	if err != nil {
		s.logger.Error("stripe checkout error", zap.Error(err), zap.Int64("productID", product.ID), zap.Int64("userID", buyer.ID))
		return nil, mapPaymentError(err)
	}

	return session, nil
}

// GetCheckoutSession возвращает состояние сессии оплаты. Покупатель видит только свои сессии,
// администратор видит любые.
func (s *Service) GetCheckoutSession(ctx context.Context, viewer *model.User, sessionID string) (*payment.SessionDetails, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	details, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("stripe session retrieval error", zap.Error(err), zap.String("sessionID", sessionID))
		return nil, mapPaymentError(err)
	}

	if !viewer.IsAdmin() && details.ClientReferenceID != strconv.FormatInt(viewer.ID, 10) {
		s.logger.Warn("checkout session requested by another user",
			zap.String("sessionID", sessionID),
			zap.Int64("userID", viewer.ID),
		)
		return nil, ErrNotFound
	}
	return details, nil
}
