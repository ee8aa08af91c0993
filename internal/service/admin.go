package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/repository"
)

// Операции администратора. Проверка роли выполняется на входе в пространство /api/admin
// (middleware.RequireAdmin), поэтому здесь остаются только проверка данных и запись.

// CategoryInput: данные новой категории.
type CategoryInput struct {
	Name         string `json:"name" validate:"required,max=255"`
	Slug         string `json:"slug" validate:"required,max=255,slug"`
	Icon         string `json:"icon" validate:"max=255"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
}

// CategoryUpdateInput: изменяемые поля категории.
type CategoryUpdateInput struct {
	Name         string `json:"name" validate:"required,max=255"`
	Icon         string `json:"icon" validate:"max=255"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
	IsActive     bool   `json:"isActive"`
}

// ProductInput: изменяемые поля товара.
type ProductInput struct {
	CategoryID      int64           `json:"categoryId" validate:"required,gt=0"`
	Name            string          `json:"name" validate:"required,max=255"`
	Description     string          `json:"description"`
	Image           string          `json:"image" validate:"max=512"`
	Price           decimal.Decimal `json:"price" validate:"gte=0"`
	Stock           int             `json:"stock" validate:"gte=0"`
	IsVisible       *bool           `json:"isVisible"`
	StripeProductID string          `json:"stripeProductId" validate:"max=255"`
	StripePriceID   string          `json:"stripePriceId" validate:"max=255"`
}

// RoleInput: назначение роли пользователю.
type RoleInput struct {
	Role model.Role `json:"role" validate:"required,oneof=user admin"`
}

// ListAllCategories возвращает все категории, включая неактивные.
func (s *Service) ListAllCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.ListCategories(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory создаёт активную категорию.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.CreateCategory(ctx, model.Category{
		Name:         in.Name,
		Slug:         in.Slug,
		Icon:         strings.TrimSpace(in.Icon),
		DisplayOrder: in.DisplayOrder,
		IsActive:     true,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return c, nil
}

// UpdateCategory обновляет категорию. Категории не удаляются, только деактивируются.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryUpdateInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.UpdateCategory(ctx, id, repository.CategoryUpdate{
		Name:         in.Name,
		Icon:         strings.TrimSpace(in.Icon),
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return c, nil
}

// ListAllProducts возвращает все товары, включая скрытые.
func (s *Service) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetAnyProduct возвращает товар независимо от видимости.
func (s *Service) GetAnyProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.repo.GetProduct(ctx, id, false)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p, nil
}

// CreateProduct создаёт товар.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	params, err := productParams(in)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.CreateProduct(ctx, params)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p, nil
}

// UpdateProduct обновляет товар.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*model.Product, error) {
	params, err := productParams(in)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.UpdateProduct(ctx, id, params)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p, nil
}

func productParams(in ProductInput) (repository.ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return repository.ProductInput{}, err
	}

	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}

	return repository.ProductInput{
		CategoryID:      in.CategoryID,
		Name:            in.Name,
		Description:     in.Description,
		Image:           strings.TrimSpace(in.Image),
		Price:           in.Price.Round(2),
		Stock:           in.Stock,
		IsVisible:       visible,
		StripeProductID: in.StripeProductID,
		StripePriceID:   in.StripePriceID,
	}, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// AssignRole назначает роль пользователю и пишет запись аудита.
func (s *Service) AssignRole(ctx context.Context, actor *model.User, userID int64, in RoleInput) (*model.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	u, err := s.repo.UpdateUserRole(ctx, userID, in.Role)
	if err != nil {
		return nil, mapStoreError(err)
	}

	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	s.logger.Info("role assigned",
		zap.Int64("actorID", actorID),
		zap.Int64("userID", u.ID),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

// ListOrders возвращает все заказы, при необходимости с фильтром по статусу.
func (s *Service) ListOrders(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	orders, err := s.repo.ListOrders(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Stats возвращает агрегированные показатели магазина.
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}
