// Package ratesrv serves a fixed exchange-rate table over the same HTTP
// shape the fx client consumes. It backs cmd/mock-rates and the fx tests.
package ratesrv

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/josh-kwaku/fintrack/internal/fx"
	"github.com/josh-kwaku/fintrack/internal/logging"
)

// DefaultEURRates is what one euro buys.
var DefaultEURRates = map[string]float64{
	"EUR": 1,
	"USD": 1.08,
	"GBP": 0.86,
	"CHF": 0.95,
	"JPY": 162.5,
	"CAD": 1.47,
	"AUD": 1.65,
	"SEK": 11.3,
	"NGN": 1650,
}

type Server struct {
	eur map[string]float64
	now func() time.Time
}

// New serves cross rates derived from eurRates. A nil map uses DefaultEURRates.
func New(eurRates map[string]float64) *Server {
	if eurRates == nil {
		eurRates = DefaultEURRates
	}
	return &Server{eur: eurRates, now: time.Now}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /{date}", s.rates)
	return mux
}

func (s *Server) rates(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	date := r.PathValue("date")
	if date == "latest" {
		date = s.now().UTC().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD or latest"})
		return
	}

	base := strings.ToUpper(r.URL.Query().Get("base"))
	if base == "" {
		base = "EUR"
	}
	table, ok := s.Table(base, date, symbols(r.URL.Query().Get("symbols")))
	if !ok {
		log.Warn("unsupported base currency", "base", base)
		respond(w, http.StatusBadRequest, map[string]string{"error": "unsupported base " + base})
		return
	}
	respond(w, http.StatusOK, table)
}

// Table returns the rates for base, limited to symbols when any are given.
// Symbols the server does not know are left out.
func (s *Server) Table(base, date string, symbols []string) (*fx.RateTable, bool) {
	perEUR, ok := s.eur[base]
	if !ok || perEUR == 0 {
		return nil, false
	}
	t := &fx.RateTable{Base: base, Date: date, Rates: map[string]float64{}}
	for code, v := range s.eur {
		if len(symbols) > 0 && !slices.Contains(symbols, code) {
			continue
		}
		t.Rates[code] = v / perEUR
	}
	return t, true
}

func symbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
