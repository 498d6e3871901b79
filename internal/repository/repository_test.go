package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/repository"
	"github.com/josh-kwaku/fintrack/internal/store"
	"github.com/josh-kwaku/fintrack/internal/testutil"
)

func TestRecords_CreateRetrieve(t *testing.T) {
	s := testutil.SetupSQLite(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "A1", "USA")
	records := repository.NewRecordRepository(s)

	r := domain.Record{ID: "r1", Date: testutil.Date(t, "2023-01-01"), AccountID: "A1", Balance: 100.25, Currency: "USD"}
	_, err := records.Create(ctx, []domain.Record{r})
	require.NoError(t, err)

	got, err := records.Retrieve(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r.ID, got[0].ID)
	assert.True(t, r.Date.Equal(got[0].Date), "date: got %s want %s", got[0].Date, r.Date)
	assert.Equal(t, r.AccountID, got[0].AccountID)
	assert.Equal(t, r.Balance, got[0].Balance)
	assert.Equal(t, r.Currency, got[0].Currency)
}

func TestRetrieve_NoMatchIsEmpty(t *testing.T) {
	s := testutil.SetupSQLite(t)

	got, err := repository.NewLabelRepository(s).Retrieve(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGet_NotFound(t *testing.T) {
	s := testutil.SetupSQLite(t)

	_, err := repository.NewAccountRepository(s).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_BatchIsAtomic(t *testing.T) {
	s := testutil.SetupSQLite(t)
	ctx := context.Background()
	labels := repository.NewLabelRepository(s)

	_, err := labels.Create(ctx, []domain.Label{{ID: "x", Name: "X"}, {ID: "x", Name: "dup"}})
	require.ErrorIs(t, err, domain.ErrStatement)
	assert.Equal(t, 0, testutil.CountRows(t, s, "labels"))
}

func TestUpsert_Idempotent(t *testing.T) {
	s := testutil.SetupSQLite(t)
	ctx := context.Background()
	labels := repository.NewLabelRepository(s)
	testutil.SeedLabel(t, s, "l1", "Old")

	l := domain.Label{ID: "l1", Name: "Banking", Description: "day to day"}
	require.NoError(t, labels.Upsert(ctx, []domain.Label{l}))
	first, err := labels.List(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, labels.Upsert(ctx, []domain.Label{l}))
	second, err := labels.List(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.Label{l}, first)
	assert.Equal(t, first, second)
}

func TestDelete_MissingIDIsNoop(t *testing.T) {
	s := testutil.SetupSQLite(t)
	ctx := context.Background()
	labels := repository.NewLabelRepository(s)
	testutil.SeedLabel(t, s, "l1", "Banking")

	n, err := labels.Delete(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, testutil.CountRows(t, s, "labels"))

	n, err = labels.Delete(ctx, "l1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRecords_ListFilters(t *testing.T) {
	s := testutil.SetupSQLite(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "A1", "USA")
	testutil.SeedAccount(t, s, "A2", "DEU")
	testutil.SeedRecord(t, s, "r1", "A1", "2023-01-01", 100, "USD")
	testutil.SeedRecord(t, s, "r2", "A1", "2023-02-01", 90, "EUR")
	testutil.SeedRecord(t, s, "r3", "A1", "2023-03-01", 80, "GBP")
	testutil.SeedRecord(t, s, "r4", "A2", "2023-01-15", 70, "USD")
	records := repository.NewRecordRepository(s)

	tests := []struct {
		name   string
		filter repository.Filter
		want   []string
	}{
		{"no filter", nil, []string{"r1", "r4", "r2", "r3"}},
		{"currency set", repository.Filter{"currency": {"USD", "EUR"}}, []string{"r1", "r4", "r2"}},
		{"currency and account", repository.Filter{"currencies": {"USD", "EUR"}, "account_ids": {"A1"}}, []string{"r1", "r2"}},
		{"id", repository.Filter{"id": {"r3"}}, []string{"r3"}},
		{"no match", repository.Filter{"account_id": {"A9"}}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := records.List(ctx, tc.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.want, ids)

			n, err := records.Count(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tc.want), n)
		})
	}
}

func TestAccounts_NullableLabel(t *testing.T) {
	s := testutil.SetupSQLite(t)
	ctx := context.Background()
	testutil.SeedLabel(t, s, "l1", "Banking")
	accounts := repository.NewAccountRepository(s)

	label := "l1"
	in := []domain.Account{
		{ID: "a1", Name: "Checking", CountryCode: "USA", LabelID: &label},
		{ID: "a2", Name: "Broker", CountryCode: "GBR"},
	}
	_, err := accounts.Create(ctx, in)
	require.NoError(t, err)

	got, err := accounts.List(ctx, repository.Filter{"label_id": {"l1"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].LabelID)
	assert.Equal(t, "l1", *got[0].LabelID)

	b, err := accounts.Get(ctx, "a2")
	require.NoError(t, err)
	assert.Nil(t, b.LabelID)
}

func TestRecords_Postgres(t *testing.T) {
	s := testutil.SetupPostgres(t)
	require.Equal(t, store.DialectPostgres, s.Dialect())
	ctx := context.Background()
	testutil.SeedAccount(t, s, "A1", "USA")
	records := repository.NewRecordRepository(s)

	r := domain.Record{ID: "r1", Date: testutil.Date(t, "2023-01-01"), AccountID: "A1", Balance: 100, Currency: "USD"}
	_, err := records.Create(ctx, []domain.Record{r})
	require.NoError(t, err)
	require.NoError(t, records.Upsert(ctx, []domain.Record{r}))
	require.NoError(t, records.Upsert(ctx, []domain.Record{r}))

	got, err := records.List(ctx, repository.Filter{"currency": {"USD", "EUR"}, "account_ids": {"A1"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, r.Date.Equal(got[0].Date))
	assert.Equal(t, 100.0, got[0].Balance)

	n, err := records.Delete(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, n)
}
