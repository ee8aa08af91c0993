package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/storefront/internal/model"
)

const orderColumns = `id, user_id, product_id, checkout_session_id, COALESCE(payment_intent_id, ''), amount, status,
	COALESCE(payment_method, ''), metadata, created_at, updated_at`

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o        model.Order
		status   string
		metadata []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.CheckoutSessionID, &o.PaymentIntentID, &o.Amount, &status,
		&o.PaymentMethod, &metadata, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	o.Status = model.OrderStatus(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &o.Metadata); err != nil {
			return nil, fmt.Errorf("decode order metadata: %w", err)
		}
	}

	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	res := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// RecordOrder атомарно создаёт заказ по идентификатору платёжной сессии.
// Если заказ для сессии уже существует, возвращает существующую запись без изменений и created=false.
func (r *PostgresRepository) RecordOrder(ctx context.Context, in model.NewOrder) (*model.Order, bool, error) {
	metadata, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, false, fmt.Errorf("encode order metadata: %w", err)
	}

	var (
		order   *model.Order
		created bool
	)

	err = withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		// ON CONFLICT без цели покрывает оба уникальных ключа: сессию и платёжное намерение.
		order, err = scanOrder(tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, product_id, checkout_session_id, payment_intent_id, amount, status, payment_method, metadata)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8)
			 ON CONFLICT DO NOTHING
			 RETURNING `+orderColumns,
			in.UserID, in.ProductID, in.CheckoutSessionID, in.PaymentIntentID, in.Amount, string(in.Status), in.PaymentMethod, metadata,
		))
		switch {
		case err == nil:
			created = true
		case errors.Is(err, pgx.ErrNoRows):
			created = false
			order, err = scanOrder(tx.QueryRow(ctx,
				`SELECT `+orderColumns+`
				 FROM orders
				 WHERE checkout_session_id = $1 OR (payment_intent_id IS NOT NULL AND payment_intent_id = NULLIF($2, ''))
				 ORDER BY id
				 LIMIT 1`,
				in.CheckoutSessionID, in.PaymentIntentID,
			))
			if err != nil {
				return fmt.Errorf("select existing order: %w", err)
			}
		default:
			return fmt.Errorf("insert order: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return order, created, nil
}

// TransitionOrder переводит заказ, найденный по платёжному намерению, в статус target.
// Переход выполняется только из статусов, допускающих его; иначе возвращается текущая запись и changed=false.
// Если заказа нет, возвращается ErrNotFound.
func (r *PostgresRepository) TransitionOrder(ctx context.Context, paymentIntentID string, target model.OrderStatus) (*model.Order, bool, error) {
	sources := make([]string, 0, 2)
	for _, s := range model.TransitionSources(target) {
		sources = append(sources, string(s))
	}

	var (
		order   *model.Order
		changed bool
	)

	err := withRetry(ctx, func() error {
		var err error
		order, err = scanOrder(r.pool.QueryRow(ctx,
			`UPDATE orders
			 SET status = $2, updated_at = now()
			 WHERE payment_intent_id = $1 AND status = ANY($3)
			 RETURNING `+orderColumns,
			paymentIntentID, string(target), sources,
		))
		if err == nil {
			changed = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update order status: %w", err)
		}

		changed = false
		order, err = scanOrder(r.pool.QueryRow(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`,
			paymentIntentID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("select order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return order, changed, nil
}

// GetOrdersByUser возвращает список заказов пользователя.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	return collectOrders(rows)
}

// ListOrders возвращает все заказы, при необходимости отфильтрованные по статусу.
func (r *PostgresRepository) ListOrders(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE $1 = '' OR status = $1
		 ORDER BY created_at DESC`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	return collectOrders(rows)
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetStats возвращает сумму и количество завершённых заказов и число пользователей.
func (r *PostgresRepository) GetStats(ctx context.Context) (*model.Stats, error) {
	var s model.Stats
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount) FILTER (WHERE status = $1), 0),
		        COUNT(*) FILTER (WHERE status = $1),
		        (SELECT COUNT(*) FROM users)
		 FROM orders`,
		string(model.OrderStatusCompleted),
	).Scan(&s.TotalSales, &s.CompletedOrders, &s.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("select stats: %w", err)
	}
	return &s, nil
}
