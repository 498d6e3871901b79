package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/fintrack/internal/domain"
	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/refdata"
	"github.com/josh-kwaku/fintrack/internal/store"
	"github.com/josh-kwaku/fintrack/internal/testutil"
)

type staticRates struct {
	rates map[string]float64
	calls int
}

func (s *staticRates) Rates(_ context.Context, base string, date time.Time, _ []string) (*fx.RateTable, error) {
	s.calls++
	return &fx.RateTable{Base: base, Date: date.Format(time.DateOnly), Rates: s.rates}, nil
}

func setupClient(t *testing.T) (*Client, *store.Store, *staticRates) {
	t.Helper()
	refs, err := refdata.Load()
	require.NoError(t, err)

	s := testutil.SetupSQLite(t)
	rates := &staticRates{rates: map[string]float64{"USD": 1.25, "GBP": 0.5}}
	return NewClient(s, refs, rates), s, rates
}

func TestAddAccountAndRecord_RoundTrip(t *testing.T) {
	c, _, _ := setupClient(t)
	ctx := context.Background()

	a, err := c.AddAccount(ctx, domain.Account{Name: "Checking", CountryCode: "USA"})
	require.NoError(t, err)
	assert.Len(t, a.ID, 12)

	r := domain.Record{ID: "r1", Date: testutil.Date(t, "2023-01-01"), AccountID: a.ID, Balance: 100, Currency: "USD"}
	_, err = c.AddRecord(ctx, r)
	require.NoError(t, err)

	got, err := c.Records.Retrieve(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(r.Date))
	got[0].Date = r.Date
	assert.Equal(t, r, got[0])
}

func TestAddAccount_UnknownCountry(t *testing.T) {
	c, s, _ := setupClient(t)

	_, err := c.AddAccount(context.Background(), domain.Account{Name: "Checking", CountryCode: "XXX"})
	require.ErrorIs(t, err, domain.ErrUnknownCountry)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, testutil.CountRows(t, s, "accounts"))
}

func TestAddAccount_UnknownLabel(t *testing.T) {
	c, s, _ := setupClient(t)
	label := "nope"

	_, err := c.AddAccount(context.Background(), domain.Account{Name: "Checking", CountryCode: "USA", LabelID: &label})
	require.ErrorIs(t, err, domain.ErrUnknownLabel)
	assert.Equal(t, 0, testutil.CountRows(t, s, "accounts"))
}

func TestAddAccount_WithLabel(t *testing.T) {
	c, _, _ := setupClient(t)
	ctx := context.Background()

	l, err := c.AddLabel(ctx, domain.Label{Name: "Banking"})
	require.NoError(t, err)

	a, err := c.AddAccount(ctx, domain.Account{Name: "Checking", CountryCode: "DEU", LabelID: &l.ID})
	require.NoError(t, err)
	require.NotNil(t, a.LabelID)
	assert.Equal(t, l.ID, *a.LabelID)
}

func TestAddRecord_Validation(t *testing.T) {
	c, s, _ := setupClient(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "A1", "USA")

	tests := []struct {
		name    string
		record  domain.Record
		wantErr error
	}{
		{
			name:    "unknown account",
			record:  domain.Record{Date: testutil.Date(t, "2023-01-01"), AccountID: "ghost", Balance: 1, Currency: "USD"},
			wantErr: domain.ErrUnknownAccount,
		},
		{
			name:    "unknown currency",
			record:  domain.Record{Date: testutil.Date(t, "2023-01-01"), AccountID: "A1", Balance: 1, Currency: "ABC"},
			wantErr: domain.ErrUnknownCurrency,
		},
		{
			name:    "missing date",
			record:  domain.Record{AccountID: "A1", Balance: 1, Currency: "USD"},
			wantErr: domain.ErrValidation,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.AddRecord(ctx, tc.record)
			require.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, 0, testutil.CountRows(t, s, "records"))
		})
	}
}

func TestAddRecords_AllOrNothing(t *testing.T) {
	c, s, _ := setupClient(t)
	testutil.SeedAccount(t, s, "A1", "USA")

	_, err := c.AddRecords(context.Background(), []domain.Record{
		{Date: testutil.Date(t, "2023-01-01"), AccountID: "A1", Balance: 1, Currency: "USD"},
		{Date: testutil.Date(t, "2023-01-02"), AccountID: "A2", Balance: 1, Currency: "USD"},
	})
	require.ErrorIs(t, err, domain.ErrUnknownAccount)
	assert.Equal(t, 0, testutil.CountRows(t, s, "records"))
}

func TestAddRecords_LargeImport(t *testing.T) {
	c, s, _ := setupClient(t)
	testutil.SeedAccount(t, s, "A1", "USA")

	start := testutil.Date(t, "2000-01-01")
	records := make([]domain.Record, 7000)
	for i := range records {
		records[i] = domain.Record{
			ID:        fmt.Sprintf("r%05d", i),
			Date:      start.AddDate(0, 0, i),
			AccountID: "A1",
			Balance:   float64(i),
			Currency:  "USD",
		}
	}

	out, err := c.AddRecords(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, out, 7000)
	assert.Equal(t, 7000, testutil.CountRows(t, s, "records"))
}

func TestMostRecentRecords(t *testing.T) {
	c, s, _ := setupClient(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "A1", "USA")
	testutil.SeedAccount(t, s, "A2", "USA")
	testutil.SeedAccount(t, s, "A3", "USA")
	testutil.SeedRecord(t, s, "r1", "A1", "2023-01-01", 100, "USD")
	testutil.SeedRecord(t, s, "r2", "A1", "2023-03-01", 150, "USD")
	testutil.SeedRecord(t, s, "r3", "A2", "2023-05-01", 10, "EUR")
	c.now = func() time.Time { return testutil.Date(t, "2023-04-01") }

	got, err := c.MostRecentRecords(ctx, []string{"A1"}, testutil.Date(t, "2023-02-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, 100.0, got[0].Balance)

	got, err = c.MostRecentRecords(ctx, []string{"A1"}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r2", got[0].ID)

	got, err = c.MostRecentRecords(ctx, []string{"A1", "A2", "A3"}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1, "A2 only has a future record and A3 none")
	assert.Equal(t, "A1", got[0].AccountID)
}

func TestMostRecentRecords_TieBreaksOnHighestID(t *testing.T) {
	c, s, _ := setupClient(t)
	testutil.SeedAccount(t, s, "A1", "USA")
	testutil.SeedRecord(t, s, "r-b", "A1", "2023-01-01", 2, "USD")
	testutil.SeedRecord(t, s, "r-a", "A1", "2023-01-01", 1, "USD")

	got, err := c.MostRecentRecords(context.Background(), nil, testutil.Date(t, "2023-12-31"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r-b", got[0].ID)
}

func TestLatestBalances(t *testing.T) {
	c, s, rates := setupClient(t)
	testutil.SeedAccount(t, s, "A1", "USA")
	testutil.SeedAccount(t, s, "A2", "GBR")
	testutil.SeedRecord(t, s, "r1", "A1", "2023-01-01", 100, "USD")
	testutil.SeedRecord(t, s, "r2", "A2", "2023-01-01", 10, "GBP")
	testutil.SeedRecord(t, s, "r3", "A2", "2023-02-01", 30, "EUR")

	got, err := c.LatestBalances(context.Background(), nil, testutil.Date(t, "2023-12-31"), "EUR", fx.Options{})
	require.NoError(t, err)

	require.Len(t, got.Records, 2)
	assert.Equal(t, 80.0, got.Records[0].Balance)
	assert.Equal(t, 30.0, got.Records[1].Balance)
	assert.Equal(t, 1.25, got.Records[0].Rate)
	assert.Equal(t, 1.0, got.Records[1].Rate)
	assert.Equal(t, 110.0, got.Total)
	assert.Equal(t, 1, rates.calls, "only the USD record needs a rate lookup")
}

func TestConvert_RejectsUnknownTarget(t *testing.T) {
	c, _, rates := setupClient(t)
	r := domain.Record{ID: "r1", Date: time.Now(), AccountID: "A1", Balance: 1, Currency: "USD"}

	_, err := c.Convert(context.Background(), r, "ZZZ", fx.Options{})
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
	assert.Zero(t, rates.calls)
}

func TestConvert_ExplicitRates(t *testing.T) {
	c, _, rates := setupClient(t)
	r := domain.Record{ID: "r1", Date: time.Now(), AccountID: "A1", Balance: 100, Currency: "USD"}

	got, err := c.Convert(context.Background(), r, "EUR", fx.Options{Rates: &fx.RateTable{Rates: map[string]float64{"USD": 0.92}}})
	require.NoError(t, err)
	assert.Equal(t, 108.7, got.Balance)
	assert.Equal(t, "EUR", got.Currency)
	assert.Zero(t, rates.calls)
}
