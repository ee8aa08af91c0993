package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

const userColumns = `id, open_id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(login_method, ''), role,
	created_at, updated_at, last_signed_in`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.OpenID, &u.Name, &u.Email, &u.LoginMethod, &role, &u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// UpsertUser создаёт пользователя по внешнему идентификатору или обновляет существующего.
// Пустая роль сохраняет текущую роль (для нового пользователя это user).
func (r *PostgresRepository) UpsertUser(ctx context.Context, identity model.Identity, role model.Role) (*model.User, error) {
	var u *model.User
	err := withRetry(ctx, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (open_id, name, email, login_method, role, last_signed_in)
			 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), COALESCE(NULLIF($5::text, ''), 'user'), now())
			 ON CONFLICT (open_id) DO UPDATE
			 SET name = COALESCE(EXCLUDED.name, users.name),
			     email = COALESCE(EXCLUDED.email, users.email),
			     login_method = COALESCE(EXCLUDED.login_method, users.login_method),
			     role = CASE WHEN $5::text = '' THEN users.role ELSE EXCLUDED.role END,
			     last_signed_in = now(),
			     updated_at = now()
			 RETURNING `+userColumns,
			identity.OpenID, identity.Name, identity.Email, identity.LoginMethod, string(role),
		))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// GetUserByOpenID возвращает пользователя по внешнему идентификатору.
func (r *PostgresRepository) GetUserByOpenID(ctx context.Context, openID string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE open_id = $1`, openID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	res := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		res = append(res, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateUserRole назначает пользователю роль.
func (r *PostgresRepository) UpdateUserRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, string(role),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return u, nil
}
