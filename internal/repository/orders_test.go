package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/storefront/internal/model"
)

// newTestRepository подключается к БД из TEST_DATABASE_URI; без неё тест пропускается.
func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func uniqueRef(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestRecordOrder_ConcurrentDuplicates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	in := model.NewOrder{
		UserID:            7,
		ProductID:         3,
		CheckoutSessionID: uniqueRef("cs"),
		PaymentIntentID:   uniqueRef("pi"),
		Amount:            decimal.RequireFromString("5.00"),
		Status:            model.OrderStatusCompleted,
		PaymentMethod:     "stripe",
		Metadata:          model.OrderMetadata{CustomerEmail: "buyer@example.com"},
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[int64]struct{}{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, isNew, err := repo.RecordOrder(ctx, in)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if isNew {
				created++
			}
			ids[o.ID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
}

func TestTransitionOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	intent := uniqueRef("pi")
	o, created, err := repo.RecordOrder(ctx, model.NewOrder{
		UserID:            1,
		ProductID:         1,
		CheckoutSessionID: uniqueRef("cs"),
		PaymentIntentID:   intent,
		Amount:            decimal.RequireFromString("12.50"),
		Status:            model.OrderStatusCompleted,
	})
	require.NoError(t, err)
	require.True(t, created)

	refunded, changed, err := repo.TransitionOrder(ctx, intent, model.OrderStatusRefunded)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.OrderStatusRefunded, refunded.Status)
	assert.True(t, o.Amount.Equal(refunded.Amount))

	after, changed, err := repo.TransitionOrder(ctx, intent, model.OrderStatusFailed)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, model.OrderStatusRefunded, after.Status)

	_, _, err = repo.TransitionOrder(ctx, uniqueRef("pi_missing"), model.OrderStatusFailed)
	assert.ErrorIs(t, err, ErrNotFound)
}
