// Package middleware содержит HTTP middleware витрины.
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mmeshcher/storefront/internal/model"
)

type contextKey string

const principalKey contextKey = "principal"

const (
	sessionCookieName = "app_session_id"
	sessionTTL        = 365 * 24 * time.Hour
)

const adminRequiredMessage = "Admin access required"

// PrincipalLoader загружает пользователя по внешнему идентификатору из сессии.
type PrincipalLoader interface {
	PrincipalByOpenID(ctx context.Context, openID string) (*model.User, error)
}

type sessionClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware определяет пользователя по подписанной cookie сессии.
type AuthMiddleware struct {
	secretKey []byte
	loader    PrincipalLoader
	secure    bool
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
// При пустом ключе генерируется случайный: сессии не переживут перезапуск.
func NewAuthMiddleware(secret string, loader PrincipalLoader, secureCookie bool) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
		loader:    loader,
		secure:    secureCookie,
	}
}

// Authenticate добавляет пользователя в контекст, если cookie сессии валидна.
// Запросы без сессии пропускаются дальше анонимными.
func (a *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		openID, err := a.parseToken(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := a.loader.PrincipalByOpenID(r.Context(), openID)
		if err != nil || u == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth пропускает только аутентифицированных пользователей.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Please login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin пропускает только администраторов. Проверка выполняется до разбора тела запроса.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Please login")
			return
		}
		if !u.IsAdmin() {
			writeError(w, http.StatusForbidden, adminRequiredMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie выпускает cookie сессии для пользователя.
func (a *AuthMiddleware) SetSessionCookie(w http.ResponseWriter, openID, name string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   openID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	})

	signed, err := token.SignedString(a.secretKey)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(sessionTTL),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie удаляет cookie сессии.
func (a *AuthMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthMiddleware) parseToken(value string) (string, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}

// PrincipalFromContext извлекает пользователя из контекста запроса.
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(principalKey).(*model.User)
	return u, ok && u != nil
}

// WithPrincipal возвращает контекст с пользователем.
func WithPrincipal(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
