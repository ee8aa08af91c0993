package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/payment"
)

const (
	paymentMethodStripe = "stripe"
	defaultProductName  = "Digital Product"
)

// WebhookResult описывает результат обработки webhook-события.
type WebhookResult struct {
	// Verified выставляется для тестовых событий проверки endpoint'а.
	Verified bool
}

// HandleWebhook проверяет подпись события платёжной системы и применяет его к журналу заказов.
//
// Повторная доставка того же события не меняет журнал: создание заказа идёт через
// атомарную вставку по идентификатору сессии, а переходы статусов допускаются только
// из разрешённых исходных статусов. Ошибка хранилища возвращается вызывающему, чтобы
// платёжная система повторила доставку.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookResult, error) {
	ev, err := s.payments.ParseWebhookEvent(payload, signatureHeader)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNotConfigured):
			s.logger.Error("webhook secret not configured")
			return WebhookResult{}, ErrPaymentNotConfigured
		case errors.Is(err, payment.ErrInvalidSignature):
			s.logger.Warn("webhook signature verification failed", zap.Error(err))
			return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		case errors.Is(err, payment.ErrMalformedEvent):
			s.logger.Warn("malformed webhook event", zap.Error(err))
			return WebhookResult{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return WebhookResult{}, err
	}

	log := s.logger.With(zap.String("eventID", ev.ID), zap.String("eventType", ev.Type))

	if ev.IsTest() {
		log.Info("test webhook event, returning verification response")
		return WebhookResult{Verified: true}, nil
	}

	switch ev.Type {
	case payment.EventCheckoutSessionCompleted:
		err = s.applyCheckoutCompleted(ctx, log, ev.CheckoutSession)
	case payment.EventPaymentIntentFailed:
		err = s.applyPaymentFailed(ctx, log, ev.PaymentIntent)
	case payment.EventChargeRefunded:
		err = s.applyRefund(ctx, log, ev.Charge)
	default:
		log.Info("unhandled webhook event type")
	}
	if err != nil {
		log.Error("webhook event processing failed", zap.Error(err))
		return WebhookResult{}, fmt.Errorf("process %s: %w", ev.Type, err)
	}

	return WebhookResult{}, nil
}

func (s *Service) applyCheckoutCompleted(ctx context.Context, log *zap.Logger, cs *payment.CheckoutSession) error {
	if cs == nil || cs.ID == "" {
		log.Warn("checkout session without id, dropping")
		return nil
	}
	log = log.With(zap.String("sessionID", cs.ID))

	// Без покупателя и товара заказ не построить, а повтор доставки метаданные не исправит.
	meta, err := payment.ParseCheckoutMetadata(cs.Metadata)
	if err != nil {
		log.Warn("checkout session metadata is invalid, dropping", zap.Error(err))
		return nil
	}

	customerEmail := cs.CustomerEmail
	if customerEmail == "" {
		customerEmail = meta.CustomerEmail
	}
	amount := model.FromMinorUnits(cs.AmountTotal)

	order, created, err := s.repo.RecordOrder(ctx, model.NewOrder{
		UserID:            meta.UserID,
		ProductID:         meta.ProductID,
		CheckoutSessionID: cs.ID,
		PaymentIntentID:   cs.PaymentIntentID,
		Amount:            amount,
		Status:            model.OrderStatusCompleted,
		PaymentMethod:     paymentMethodStripe,
		Metadata: model.OrderMetadata{
			SessionID:       cs.ID,
			PaymentIntentID: cs.PaymentIntentID,
			CustomerEmail:   customerEmail,
			CustomerName:    meta.CustomerName,
		},
	})
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}

	if !created {
		log.Info("checkout session already recorded", zap.Int64("orderID", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	log.Info("order created", zap.Int64("orderID", order.ID), zap.Int64("userID", order.UserID))

	productName := meta.ProductName
	if productName == "" {
		productName = s.productName(ctx, order.ProductID)
	}
	s.notifier.NotifyNewOrder(ctx, notify.NewOrder{
		OrderID:       order.ID,
		CustomerEmail: customerEmail,
		ProductName:   productName,
		Amount:        amount,
	})

	return nil
}

func (s *Service) applyPaymentFailed(ctx context.Context, log *zap.Logger, pi *payment.PaymentIntent) error {
	if pi == nil || pi.ID == "" {
		log.Warn("payment intent without id, dropping")
		return nil
	}
	log = log.With(zap.String("paymentIntentID", pi.ID))

	order, changed, err := s.repo.TransitionOrder(ctx, pi.ID, model.OrderStatusFailed)
	if err != nil {
		if errors.Is(mapStoreError(err), ErrNotFound) {
			log.Info("no order for failed payment intent")
			return nil
		}
		return fmt.Errorf("mark order failed: %w", err)
	}

	if !changed {
		log.Info("order not transitioned to failed", zap.Int64("orderID", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	log.Info("order marked as failed", zap.Int64("orderID", order.ID))

	customerEmail := pi.ReceiptEmail
	if customerEmail == "" {
		customerEmail = order.Metadata.CustomerEmail
	}
	s.notifier.NotifyPaymentFailed(ctx, notify.PaymentFailed{
		OrderID:       order.ID,
		CustomerEmail: customerEmail,
		ProductName:   s.productName(ctx, order.ProductID),
		Reason:        pi.FailureReason,
	})

	return nil
}

// applyRefund не уведомляет владельца: исходная система этого не делала, расхождение зафиксировано в DESIGN.md.
func (s *Service) applyRefund(ctx context.Context, log *zap.Logger, ch *payment.Charge) error {
	if ch == nil || ch.PaymentIntentID == "" {
		log.Warn("refunded charge without payment intent, dropping")
		return nil
	}
	log = log.With(zap.String("chargeID", ch.ID), zap.String("paymentIntentID", ch.PaymentIntentID))

	order, changed, err := s.repo.TransitionOrder(ctx, ch.PaymentIntentID, model.OrderStatusRefunded)
	if err != nil {
		if errors.Is(mapStoreError(err), ErrNotFound) {
			log.Info("no order for refunded charge")
			return nil
		}
		return fmt.Errorf("mark order refunded: %w", err)
	}

	if !changed {
		log.Info("order not transitioned to refunded", zap.Int64("orderID", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	log.Info("order refunded", zap.Int64("orderID", order.ID))
	return nil
}

// productName возвращает название товара для уведомлений; при ошибке используется название по умолчанию.
func (s *Service) productName(ctx context.Context, productID int64) string {
	p, err := s.repo.GetProduct(ctx, productID, false)
	if err != nil {
		return defaultProductName
	}
	return p.Name
}
