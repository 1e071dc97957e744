package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
)

// Gateway hides the three market backends behind one contract. Backend choice
// is decided by available credentials at construction, not runtime probing:
// simulator when dry-running without a token, live HTTP whenever a token
// exists, the legacy v1 session otherwise.
type Gateway struct {
	dryRun    bool
	hasToken  bool
	http      *upstoxHTTP
	legacy    *LegacyAdapter
	simulator *Simulator
	now       func() time.Time
}

type GatewayConfig struct {
	AccessToken string
	BaseURL     string
	DryRun      bool
	Legacy      LegacySession // nil when no v1 session was established
}

func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		dryRun:    cfg.DryRun,
		hasToken:  cfg.AccessToken != "",
		simulator: NewSimulator(),
		now:       time.Now,
	}
	if g.hasToken {
		g.http = newUpstoxHTTP(cfg.BaseURL, cfg.AccessToken)
	}
	if cfg.Legacy != nil {
		g.legacy = NewLegacyAdapter(cfg.Legacy)
	}
	return g
}

// GetQuote resolves the last traded price. Dry-run only suppresses orders, not
// price fetch: a token always routes quotes to the live API.
func (g *Gateway) GetQuote(ctx context.Context, instrumentKey string) (*domain.Quote, error) {
	if g.dryRun && !g.hasToken {
		return g.simulator.GetQuote(ctx, instrumentKey)
	}
	if g.hasToken {
		return g.http.GetQuote(ctx, instrumentKey)
	}
	if g.legacy != nil {
		return g.legacy.GetQuote(ctx, instrumentKey)
	}
	return nil, domain.ErrNoCredentials("ltp")
}

// PlaceMarketOrder validates the request, honors dry-run before any backend is
// consulted, then routes by the same credential priority as GetQuote.
func (g *Gateway) PlaceMarketOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	req.Side = domain.Side(strings.ToUpper(string(req.Side)))
	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		return nil, &domain.ValidationError{Field: "side", Reason: fmt.Sprintf("must be BUY or SELL, got %q", req.Side)}
	}
	if req.Quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if req.Product == "" {
		req.Product = domain.ProductIntraday
	}
	if req.Validity == "" {
		req.Validity = domain.ValidityDay
	}

	if g.dryRun {
		return &domain.OrderResult{
			Status:        "dry_run",
			Action:        req.Side,
			InstrumentKey: req.InstrumentKey,
			Quantity:      req.Quantity,
			Product:       req.Product,
			Validity:      req.Validity,
			Tag:           req.Tag,
			Timestamp:     g.now(),
			Backend:       domain.BackendSimulator,
		}, nil
	}
	if g.hasToken {
		return g.http.PlaceMarketOrder(ctx, req)
	}
	if g.legacy != nil {
		return g.legacy.PlaceMarketOrder(ctx, req)
	}
	return nil, domain.ErrNoCredentials("orders")
}
