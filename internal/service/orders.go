package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

// GetOrdersByUser возвращает заказы покупателя.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.repo.GetOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return orders, nil
}

// GetOrder возвращает заказ. Чужой заказ виден только администратору.
func (s *Service) GetOrder(ctx context.Context, viewer *model.User, id int64) (*model.Order, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if o.UserID != viewer.ID && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	return o, nil
}

// TotalRevenue возвращает сумму завершённых заказов.
func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get stats: %w", err)
	}
	return stats.TotalSales, nil
}
