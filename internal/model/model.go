// Package model содержит доменные сущности витрины цифровых товаров.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid сообщает, является ли роль допустимой.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User описывает локальное зеркало аутентифицированного пользователя.
type User struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"openId"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	LoginMethod  string    `json:"loginMethod,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// IsAdmin сообщает, обладает ли пользователь правами администратора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity содержит данные внешней системы аутентификации, по которым создаётся или обновляется пользователь.
type Identity struct {
	OpenID      string
	Name        string
	Email       string
	LoginMethod string
}

// Category описывает категорию товаров (Discord, Spotify и т.п.).
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Icon         string    `json:"icon,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Product описывает цифровой товар.
type Product struct {
	ID              int64           `json:"id"`
	CategoryID      int64           `json:"categoryId"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Image           string          `json:"image,omitempty"`
	Price           decimal.Decimal `json:"-"`
	Stock           int             `json:"stock"`
	IsVisible       bool            `json:"isVisible"`
	StripeProductID string          `json:"stripeProductId,omitempty"`
	StripePriceID   string          `json:"stripePriceId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// MarshalJSON отдаёт цену строкой с двумя знаками после запятой.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price string `json:"price"`
	}{
		alias: alias(p),
		Price: FormatMoney(p.Price),
	})
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// orderTransitions перечисляет допустимые переходы статусов заказа.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusCompleted, OrderStatusFailed},
	OrderStatusCompleted: {OrderStatusFailed, OrderStatusRefunded},
}

// Valid сообщает, является ли статус допустимым.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo проверяет, допустим ли переход в статус next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, st := range orderTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// TransitionSources возвращает статусы, из которых допустим переход в target.
func TransitionSources(target OrderStatus) []OrderStatus {
	var res []OrderStatus
	for _, from := range []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded} {
		if from.CanTransitionTo(target) {
			res = append(res, from)
		}
	}
	return res
}

// OrderMetadata хранит дополнительные данные заказа, сохраняемые в JSON.
type OrderMetadata struct {
	SessionID       string `json:"sessionId,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	CustomerEmail   string `json:"customerEmail,omitempty"`
	CustomerName    string `json:"customerName,omitempty"`
}

// Order описывает попытку покупки и её состояние.
type Order struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"userId"`
	ProductID         int64           `json:"productId"`
	CheckoutSessionID string          `json:"checkoutSessionId"`
	PaymentIntentID   string          `json:"paymentIntentId,omitempty"`
	Amount            decimal.Decimal `json:"-"`
	Status            OrderStatus     `json:"status"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	Metadata          OrderMetadata   `json:"metadata"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// MarshalJSON отдаёт сумму строкой с двумя знаками после запятой.
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		Amount string `json:"amount"`
	}{
		alias:  alias(o),
		Amount: FormatMoney(o.Amount),
	})
}

// NewOrder содержит данные для записи завершённого заказа.
type NewOrder struct {
	UserID            int64
	ProductID         int64
	CheckoutSessionID string
	PaymentIntentID   string
	Amount            decimal.Decimal
	Status            OrderStatus
	PaymentMethod     string
	Metadata          OrderMetadata
}

// Stats содержит агрегированные показатели для панели администратора.
type Stats struct {
	TotalSales      decimal.Decimal `json:"-"`
	CompletedOrders int64           `json:"completedOrders"`
	TotalUsers      int64           `json:"totalUsers"`
}

// MarshalJSON отдаёт сумму продаж строкой с двумя знаками после запятой.
func (s Stats) MarshalJSON() ([]byte, error) {
	type alias Stats
	return json.Marshal(struct {
		alias
		TotalSales string `json:"totalSales"`
	}{
		alias:      alias(s),
		TotalSales: FormatMoney(s.TotalSales),
	})
}
