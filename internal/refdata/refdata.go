// Package refdata holds the fixed country and currency code lists used to
// validate accounts and records. The lists ship with the binary.
package refdata

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

//go:embed countries.csv
var countriesCSV string

//go:embed currencies.csv
var currenciesCSV string

// Sets is read-only once loaded and safe for concurrent use.
type Sets struct {
	countries  map[string]string
	currencies map[string]string
}

// Load parses the bundled lists.
func Load() (*Sets, error) {
	return LoadFrom(strings.NewReader(countriesCSV), strings.NewReader(currenciesCSV))
}

// LoadFrom parses two code,name CSV tables with a header row.
func LoadFrom(countries, currencies io.Reader) (*Sets, error) {
	c, err := parseCodes(countries, 3)
	if err != nil {
		return nil, fmt.Errorf("refdata.LoadFrom: countries: %w", err)
	}
	cur, err := parseCodes(currencies, 3)
	if err != nil {
		return nil, fmt.Errorf("refdata.LoadFrom: currencies: %w", err)
	}
	return &Sets{countries: c, currencies: cur}, nil
}

func (s *Sets) ValidCountry(code string) bool {
	_, ok := s.countries[code]
	return ok
}

func (s *Sets) ValidCurrency(code string) bool {
	_, ok := s.currencies[code]
	return ok
}

func (s *Sets) CountryName(code string) string { return s.countries[code] }

func (s *Sets) CurrencyName(code string) string { return s.currencies[code] }

// Currencies returns the sorted currency codes.
func (s *Sets) Currencies() []string {
	out := make([]string, 0, len(s.currencies))
	for code := range s.currencies {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func parseCodes(r io.Reader, width int) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("empty table")
	}

	out := make(map[string]string, len(rows)-1)
	for i, row := range rows[1:] {
		code := strings.TrimSpace(row[0])
		if len(code) != width || strings.ToUpper(code) != code {
			return nil, fmt.Errorf("line %d: malformed code %q", i+2, code)
		}
		if _, dup := out[code]; dup {
			return nil, fmt.Errorf("line %d: duplicate code %q", i+2, code)
		}
		out[code] = strings.TrimSpace(row[1])
	}
	return out, nil
}
