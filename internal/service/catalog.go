package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/repository"
)

// Публичные методы каталога не возвращают ошибок хранилища: при недоступной БД витрина
// показывает пустой каталог, а сбой пишется в лог.

// ListCategories возвращает активные категории в порядке отображения.
func (s *Service) ListCategories(ctx context.Context) []model.Category {
	categories, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		s.logger.Warn("list categories failed, serving empty catalog", zap.Error(err))
		return []model.Category{}
	}
	return categories
}

// GetCategory возвращает активную категорию.
func (s *Service) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.repo.GetCategory(ctx, id, true)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("get category failed", zap.Error(err), zap.Int64("categoryID", id))
		}
		return nil, ErrNotFound
	}
	return c, nil
}

// ListProducts возвращает видимые товары, при необходимости только из одной категории.
func (s *Service) ListProducts(ctx context.Context, categoryID *int64) []model.Product {
	products, err := s.repo.ListProducts(ctx, repository.ProductFilter{CategoryID: categoryID, VisibleOnly: true})
	if err != nil {
		s.logger.Warn("list products failed, serving empty catalog", zap.Error(err))
		return []model.Product{}
	}
	return products
}

// GetProduct возвращает видимый товар.
func (s *Service) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.repo.GetProduct(ctx, id, true)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("get product failed", zap.Error(err), zap.Int64("productID", id))
		}
		return nil, ErrNotFound
	}
	return p, nil
}

// Statistics возвращает публичные показатели витрины. При сбое хранилища отдаются нули.
func (s *Service) Statistics(ctx context.Context) model.Stats {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		s.logger.Warn("get statistics failed, serving zeros", zap.Error(err))
		return model.Stats{}
	}
	return *stats
}
