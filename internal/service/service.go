// Package service реализует бизнес-логику витрины цифровых товаров.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
)

// CatalogStore описывает доступ к категориям и товарам.
type CatalogStore interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64, activeOnly bool) (*model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, upd repository.CategoryUpdate) (*model.Category, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64, visibleOnly bool) (*model.Product, error)
	CreateProduct(ctx context.Context, in repository.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, in repository.ProductInput) (*model.Product, error)
}

// OrderLedger описывает журнал заказов.
type OrderLedger interface {
	RecordOrder(ctx context.Context, in model.NewOrder) (*model.Order, bool, error)
	TransitionOrder(ctx context.Context, paymentIntentID string, target model.OrderStatus) (*model.Order, bool, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListOrders(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	GetStats(ctx context.Context) (*model.Stats, error)
}

// UserStore описывает локальное зеркало пользователей.
type UserStore interface {
	UpsertUser(ctx context.Context, identity model.Identity, role model.Role) (*model.User, error)
	GetUserByOpenID(ctx context.Context, openID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
}

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	CatalogStore
	OrderLedger
	UserStore
	Close() error
}

// PaymentGateway описывает платёжную систему.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payment.SessionDetails, error)
	ParseWebhookEvent(payload []byte, signatureHeader string) (*payment.Event, error)
}

// Notifier описывает отправку уведомлений владельцу магазина.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, o notify.NewOrder)
	NotifyPaymentFailed(ctx context.Context, p notify.PaymentFailed)
}

// Options содержит параметры сервиса, не относящиеся к зависимостям.
type Options struct {
	Currency      string
	PublicBaseURL string
	AdminPassword string
	OwnerOpenID   string
}

// Service содержит бизнес-логику витрины.
type Service struct {
	repo     Repository
	payments PaymentGateway
	notifier Notifier
	logger   *zap.Logger
	opts     Options
}

// NewService создаёт новый сервис.
func NewService(repo Repository, payments PaymentGateway, notifier Notifier, logger *zap.Logger, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = "eur"
	}
	return &Service{
		repo:     repo,
		payments: payments,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
