package payment

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// ErrInvalidMetadata возвращается, если метаданные сессии не позволяют построить заказ.
var ErrInvalidMetadata = errors.New("invalid checkout metadata")

// CheckoutMetadata: метаданные, которые сессия оплаты несёт от создания до webhook-события.
// Имена ключей общие для обеих сторон.
type CheckoutMetadata struct {
	UserID        int64  `mapstructure:"user_id"`
	ProductID     int64  `mapstructure:"product_id"`
	CustomerEmail string `mapstructure:"customer_email"`
	CustomerName  string `mapstructure:"customer_name"`
	ProductName   string `mapstructure:"product_name"`
}

// Map возвращает метаданные в виде, принимаемом Stripe.
func (m CheckoutMetadata) Map() map[string]string {
	res := map[string]string{
		"user_id":    strconv.FormatInt(m.UserID, 10),
		"product_id": strconv.FormatInt(m.ProductID, 10),
	}
	if m.CustomerEmail != "" {
		res["customer_email"] = m.CustomerEmail
	}
	if m.CustomerName != "" {
		res["customer_name"] = m.CustomerName
	}
	if m.ProductName != "" {
		res["product_name"] = m.ProductName
	}
	return res
}

// ParseCheckoutMetadata разбирает метаданные сессии. Идентификаторы пользователя и товара обязательны.
func ParseCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	var m CheckoutMetadata

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &m,
	})
	if err != nil {
		return CheckoutMetadata{}, fmt.Errorf("create decoder: %w", err)
	}

	if err := dec.Decode(raw); err != nil {
		return CheckoutMetadata{}, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	if m.UserID <= 0 || m.ProductID <= 0 {
		return CheckoutMetadata{}, fmt.Errorf("%w: user_id and product_id are required", ErrInvalidMetadata)
	}

	return m, nil
}
