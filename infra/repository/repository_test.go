package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSaleRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := saleRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "sales"`).
		WillReturnError(gorm.ErrRecordNotFound)

	s, err := repo.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, sale.ErrSaleNotFound)
	assert.Nil(t, s)
}

func TestSaleRepository_GetDraftNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := saleRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "sales"`).
		WillReturnError(gorm.ErrRecordNotFound)

	s, err := repo.GetDraft(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, sale.ErrSaleNotFound)
	assert.Nil(t, s)
}

func TestSaleRepository_CreateConflictReturnsDraftExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := saleRepository{db: db}

	draft, err := sale.New().
		WithStore(uuid.New()).
		WithEmployee(uuid.New()).
		WithCurrency(currency.USD).
		Build()
	require.NoError(t, err)

	// ON CONFLICT DO NOTHING against the partial unique index: no row comes
	// back, which the repository reports as an existing draft.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sales" (.+) ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err = repo.Create(context.Background(), draft)
	require.ErrorIs(t, err, repository.ErrDraftExists)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sales" (.+) ON CONFLICT DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(draft.ID))
	mock.ExpectCommit()

	err = repo.Create(context.Background(), draft)
	require.NoError(t, err)
}

func TestVersionRepository_NextNumber(t *testing.T) {
	db, mock := newMockDB(t)
	repo := versionRepository{db: db}
	saleID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(number\), 0\) FROM "sale_versions"`).
		WithArgs(saleID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))

	next, err := repo.NextNumber(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestVersionRepository_GetByNumberNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := versionRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "sale_versions"`).
		WillReturnError(gorm.ErrRecordNotFound)

	v, err := repo.GetByNumber(context.Background(), uuid.New(), 7)
	require.ErrorIs(t, err, sale.ErrVersionNotFound)
	assert.Nil(t, v)
}

func TestOfferRepository_ListActiveSkipsBrokenPayloads(t *testing.T) {
	db, mock := newMockDB(t)
	repo := offerRepository{db: db}
	storeID := uuid.New()

	good, err := json.Marshal(offerPayload{
		Priority:     3,
		Combinable:   true,
		DiscountType: "percentage",
		Percent:      "5",
	})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "kind", "status", "starts_at", "ends_at", "payload"}).
		AddRow(uuid.New(), "five off", "simple", "active", now.Add(-time.Hour), nil, good).
		AddRow(uuid.New(), "broken", "simple", "active", now.Add(-time.Hour), nil, []byte("{not json"))
	mock.ExpectQuery(`SELECT \* FROM "offers"`).WillReturnRows(rows)

	offers, err := repo.ListActive(context.Background(), storeID, currency.USD, now)
	require.NoError(t, err)
	require.Len(t, offers, 1, "the unparsable offer is skipped, not fatal")
	assert.Equal(t, "five off", offers[0].Name)
	assert.Equal(t, 3, offers[0].Priority)
}

func TestOfferRepository_ListActiveFiltersStoreTargeting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := offerRepository{db: db}
	storeID := uuid.New()
	otherStore := uuid.New()

	targeted, err := json.Marshal(offerPayload{
		DiscountType: "percentage",
		Percent:      "10",
		StoreIDs:     []uuid.UUID{otherStore},
	})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "kind", "status", "starts_at", "ends_at", "payload"}).
		AddRow(uuid.New(), "elsewhere only", "simple", "active", now.Add(-time.Hour), nil, targeted)
	mock.ExpectQuery(`SELECT \* FROM "offers"`).WillReturnRows(rows)

	offers, err := repo.ListActive(context.Background(), storeID, currency.USD, now)
	require.NoError(t, err)
	assert.Empty(t, offers)
}
