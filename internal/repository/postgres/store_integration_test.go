package postgres

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopwise/checkout/internal/models"
	"github.com/shopwise/checkout/internal/notifier"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/shopwise/checkout/internal/service"
	"github.com/shopwise/checkout/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testDB    *gorm.DB
	testStore *Store
)

// TestMain connects to DATABASE_URL when it is set. Without it the
// database tests skip and only the conversion tests run.
func TestMain(m *testing.M) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := Open(dsn)
		if err != nil {
			log.Fatalf("Failed to connect to test database: %v", err)
		}
		if err := Migrate(db); err != nil {
			log.Fatalf("Failed to migrate test database: %v", err)
		}
		testDB, testStore = db, NewStore(db)
	}

	os.Exit(m.Run())
}

func requireStore(t *testing.T) *Store {
	t.Helper()
	if testStore == nil {
		t.Skip("DATABASE_URL not set, skipping postgres integration test")
	}
	return testStore
}

// seedProduct inserts a product with a random id and removes it after the test.
func seedProduct(t *testing.T, shopID string, stock int) models.Product {
	t.Helper()
	now := time.Now().UTC()
	p := models.Product{
		ID:        uuid.NewString(),
		Name:      "Test product",
		Price:     decimal.NewFromInt(10000),
		Stock:     stock,
		ShopID:    shopID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, testStore.SeedProducts(context.Background(), p))
	t.Cleanup(func() {
		testDB.Where("id = ?", p.ID).Delete(&productRecord{})
	})
	return p
}

func seedOrder(t *testing.T, shopID string, lines ...models.OrderLine) models.Order {
	t.Helper()
	now := time.Now().UTC()
	o := models.Order{
		ID:          uuid.NewString(),
		ShopID:      shopID,
		UserID:      "u1",
		Cart:        lines,
		TotalPrice:  decimal.NewFromInt(20000),
		Status:      models.OrderStatusProcessing,
		PaymentInfo: models.PaymentInfo{Status: "pending", Method: "card"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, testStore.Orders().Create(context.Background(), []models.Order{o}))
	t.Cleanup(func() {
		testDB.Where("id = ?", o.ID).Delete(&orderRecord{})
	})
	return o
}

func newOrderService(s *Store) *service.OrderService {
	log := logger.Discard()
	catalog := service.NewCatalogService(s.Products(), s.Coupons())
	return service.NewOrderService(s.Orders(), catalog, s, notifier.NewLogNotifier(log), log)
}

func TestPostgres_ShipmentKeepsStockPlusSoldOut(t *testing.T) {
	s := requireStore(t)
	ctx := context.Background()
	p := seedProduct(t, "s1", 5)
	o := seedOrder(t, "s1", models.OrderLine{ProductID: p.ID, Quantity: 2})

	updated, err := newOrderService(s).UpdateStatus(ctx, "s1", o.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	got, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, 2, got.SoldOut)
	assert.Equal(t, 5, got.Stock+got.SoldOut)

	stored, err := s.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)
}

func TestPostgres_AdjustStockShortfall(t *testing.T) {
	s := requireStore(t)
	ctx := context.Background()
	p := seedProduct(t, "s1", 1)

	_, err := s.Products().AdjustStock(ctx, p.ID, -2)
	assert.ErrorIs(t, err, repository.ErrStockExhausted)

	got, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	assert.Equal(t, 0, got.SoldOut)

	_, err = s.Products().AdjustStock(ctx, uuid.NewString(), -1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestPostgres_UpdateStatusStaleFrom(t *testing.T) {
	s := requireStore(t)
	ctx := context.Background()
	o := seedOrder(t, "s1")

	shipped := o
	shipped.Status = models.OrderStatusShipped
	err := s.Orders().UpdateStatus(ctx, &shipped, models.OrderStatusShipped)
	assert.ErrorIs(t, err, repository.ErrStatusConflict)

	require.NoError(t, s.Orders().UpdateStatus(ctx, &shipped, models.OrderStatusProcessing))

	// A second writer still holding the old status loses.
	err = s.Orders().UpdateStatus(ctx, &shipped, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, repository.ErrStatusConflict)

	missing := models.Order{ID: uuid.NewString(), Status: models.OrderStatusShipped}
	err = s.Orders().UpdateStatus(ctx, &missing, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestPostgres_FailingLineRollsBackShipment(t *testing.T) {
	s := requireStore(t)
	ctx := context.Background()
	inStock := seedProduct(t, "s1", 5)
	soldOut := seedProduct(t, "s1", 0)
	o := seedOrder(t, "s1",
		models.OrderLine{ProductID: inStock.ID, Quantity: 1},
		models.OrderLine{ProductID: soldOut.ID, Quantity: 1},
	)

	_, err := newOrderService(s).UpdateStatus(ctx, "s1", o.ID, models.OrderStatusShipped)
	require.ErrorIs(t, err, repository.ErrStockExhausted)

	got, err := s.Products().GetByID(ctx, inStock.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock, "first line's adjustment is rolled back")
	assert.Equal(t, 0, got.SoldOut)

	stored, err := s.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
}

func TestPostgres_NestedTransactionJoinsOuter(t *testing.T) {
	s := requireStore(t)
	ctx := context.Background()
	p := seedProduct(t, "s1", 5)

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		inner := s.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := s.Products().AdjustStock(ctx, p.ID, -2)
			return err
		})
		require.NoError(t, inner)
		_, err := s.Products().AdjustStock(ctx, p.ID, -10)
		return err
	})
	require.ErrorIs(t, err, repository.ErrStockExhausted)

	got, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}
