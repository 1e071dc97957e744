package exchange

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
)

// Simulator produces deterministic pseudo-prices so dry runs without
// credentials still see continuous, bounded oscillation. No network involved.
type Simulator struct {
	now func() time.Time
}

func NewSimulator() *Simulator {
	return &Simulator{now: time.Now}
}

// Price derives a stable base in [100, 150) from an FNV-1a hash of the
// instrument key and superimposes two sine waves (~10s and ~3s periods) on it,
// rounded to 2 decimals. Distinct keys landing in the same hash bucket share a
// base price; accepted limitation.
func (s *Simulator) Price(instrumentKey string, at time.Time) float64 {
	h := fnv.New32a()
	h.Write([]byte(instrumentKey))
	seed := float64(h.Sum32()%1000) / 1000.0

	base := 100.0 + 50.0*seed
	t := float64(at.UnixNano()) / float64(time.Second)
	price := base + 2.0*math.Sin(t/10.0+seed*10.0) + 0.8*math.Sin(t/3.0+seed)
	return math.Round(price*100) / 100
}

func (s *Simulator) GetQuote(_ context.Context, instrumentKey string) (*domain.Quote, error) {
	return &domain.Quote{
		InstrumentKey: instrumentKey,
		LastPrice:     s.Price(instrumentKey, s.now()),
	}, nil
}
