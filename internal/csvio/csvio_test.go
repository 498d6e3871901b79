package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/fintrack/internal/domain"
)

func TestReadRecords(t *testing.T) {
	in := `currency,balance,date,account_id,id,note
usd,100.5,2023-01-01,A1,r1,ignored
EUR,-20,2023-02-01T10:30:00+02:00,A2,,`

	got, err := ReadRecords(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.Record{
		ID: "r1", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		AccountID: "A1", Balance: 100.5, Currency: "USD",
	}, got[0])
	assert.Empty(t, got[1].ID)
	assert.Equal(t, time.Date(2023, 2, 1, 8, 30, 0, 0, time.UTC), got[1].Date)
	assert.Equal(t, -20.0, got[1].Balance)
}

func TestReadRecords_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing column", "id,date,account_id,currency\nr1,2023-01-01,A1,USD\n"},
		{"bad date", "date,account_id,balance,currency\n01/02/2023,A1,1,USD\n"},
		{"bad balance", "date,account_id,balance,currency\n2023-01-01,A1,lots,USD\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRecords_WriteThenRead(t *testing.T) {
	records := []domain.Record{
		{ID: "r1", Date: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), AccountID: "A1", Balance: 108.7, Currency: "EUR"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))
	assert.Equal(t, "id,date,account_id,balance,currency\nr1,2023-01-01T12:00:00Z,A1,108.7,EUR\n", buf.String())

	got, err := ReadRecords(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestAccounts(t *testing.T) {
	label := "l1"
	accounts := []domain.Account{
		{ID: "a1", Name: "Checking, joint", CountryCode: "USA", LabelID: &label},
		{ID: "a2", Name: "Broker", CountryCode: "GBR"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))
	assert.Contains(t, buf.String(), `"Checking, joint"`)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}
