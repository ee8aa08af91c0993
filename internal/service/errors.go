package service

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/validation"
)

var (
	// ErrInvalidSignature возвращается, если подпись webhook-события не прошла проверку.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidCredentials возвращается при неверном пароле администратора.
	ErrInvalidCredentials = errors.New("invalid admin password")
	// ErrUnauthenticated возвращается, если операция требует аутентифицированного пользователя.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden возвращается при обращении к операциям администратора без прав администратора.
	ErrForbidden = errors.New("admin access required")
	// ErrNotFound возвращается, если сущность не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput возвращается при некорректных входных данных.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailRequired возвращается, если у покупателя нет email.
	ErrEmailRequired = errors.New("user email is required")
	// ErrConflict возвращается при нарушении уникальности.
	ErrConflict = errors.New("already exists")
	// ErrMalformedEvent возвращается, если подписанное webhook-событие не удалось разобрать.
	ErrMalformedEvent = errors.New("malformed webhook event")
	// ErrPaymentProvider возвращается при сбое платёжной системы.
	ErrPaymentProvider = errors.New("payment provider error")
	// ErrPaymentNotConfigured возвращается, если платёжная система не настроена.
	ErrPaymentNotConfigured = errors.New("payment provider is not configured")
)

// mapStoreError переводит ошибки репозитория в ошибки сервиса.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrReferenceNotFound):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}

// validate проверяет входные данные по тегам validate.
func validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func mapPaymentError(err error) error {
	if errors.Is(err, payment.ErrNotConfigured) {
		return ErrPaymentNotConfigured
	}
	return fmt.Errorf("%w: %v", ErrPaymentProvider, err)
}
