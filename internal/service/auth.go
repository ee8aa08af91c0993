package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/model"
)

// AdminSessionOpenID: внешний идентификатор служебного пользователя, входящего по паролю администратора.
const AdminSessionOpenID = "admin-session"

// SignIn создаёт или обновляет локальную запись пользователя после успешной аутентификации.
// Владелец магазина (OWNER_OPEN_ID) всегда получает роль администратора, остальным роль не меняется.
func (s *Service) SignIn(ctx context.Context, identity model.Identity) (*model.User, error) {
	identity.OpenID = strings.TrimSpace(identity.OpenID)
	if identity.OpenID == "" {
		return nil, fmt.Errorf("%w: open id is required", ErrInvalidInput)
	}

	var role model.Role
	if s.opts.OwnerOpenID != "" && identity.OpenID == s.opts.OwnerOpenID {
		role = model.RoleAdmin
	}

	u, err := s.repo.UpsertUser(ctx, identity, role)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return u, nil
}

// AdminLogin проверяет общий пароль администратора и возвращает служебного пользователя с ролью admin.
func (s *Service) AdminLogin(ctx context.Context, password string) (*model.User, error) {
	if s.opts.AdminPassword == "" || subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.AdminPassword)) != 1 {
		s.logger.Warn("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.UpsertUser(ctx, model.Identity{
		OpenID:      AdminSessionOpenID,
		Name:        "Administrator",
		LoginMethod: "admin_password",
	}, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}

	s.logger.Info("admin session issued", zap.Int64("userID", u.ID))
	return u, nil
}

// PrincipalByOpenID возвращает пользователя по внешнему идентификатору из сессии.
func (s *Service) PrincipalByOpenID(ctx context.Context, openID string) (*model.User, error) {
	u, err := s.repo.GetUserByOpenID(ctx, openID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}
