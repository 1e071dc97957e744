package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
	"github.com/arvikm/upstox_threshold_bot/internal/infrastructure/metrics"
)

// Params configure one run of the threshold strategy. At least one of
// BuyBelow/SellAbove must be set. Quantity applies to buys; a sell always
// liquidates the full held position.
type Params struct {
	InstrumentKey string
	BuyBelow      *float64
	SellAbove     *float64
	Quantity      int
	PollInterval  time.Duration
	Cooldown      time.Duration
	MaxTrades     int    // 0 = unlimited
	OrderTag      string // defaults to a per-run uuid
}

// State is the mutable trading state owned by the engine loop. PositionQty is
// either 0 or the configured buy quantity; partial fills are not modeled.
type State struct {
	InstrumentKey string    `json:"instrument_key"`
	PositionQty   int       `json:"position_qty"`
	TotalTrades   int       `json:"total_trades"`
	LastTradeTime time.Time `json:"last_trade_time"`
	LastPrice     float64   `json:"last_price"`
}

// Engine drives the buy/sell decision loop. The loop goroutine is the only
// mutator of state; Snapshot gives other goroutines a consistent view.
type Engine struct {
	gateway domain.Gateway
	trades  domain.TradeRepository // optional journal, may be nil
	logger  *zap.Logger
	params  Params

	now func() time.Time

	mu    sync.Mutex
	state State
}

func NewEngine(gateway domain.Gateway, trades domain.TradeRepository, logger *zap.Logger, params Params) (*Engine, error) {
	if params.BuyBelow == nil && params.SellAbove == nil {
		return nil, &domain.ConfigurationError{Reason: "provide a buy-below and/or sell-above threshold"}
	}
	if params.Quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if params.PollInterval <= 0 {
		return nil, &domain.ValidationError{Field: "poll_interval", Reason: "must be positive"}
	}
	if params.Cooldown < 0 {
		return nil, &domain.ValidationError{Field: "cooldown", Reason: "must not be negative"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if params.OrderTag == "" {
		params.OrderTag = uuid.NewString()
	}

	return &Engine{
		gateway: gateway,
		trades:  trades,
		logger:  logger,
		params:  params,
		now:     time.Now,
		state:   State{InstrumentKey: params.InstrumentKey},
	}, nil
}

// Run polls quotes and evaluates the thresholds until ctx is cancelled or the
// trade cap is reached. Quote and order failures are reported and never
// terminate the loop; only cancellation and the cap do.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("strategy started",
		zap.String("instrument_key", e.params.InstrumentKey),
		zap.Int("quantity", e.params.Quantity),
		zap.Duration("poll_interval", e.params.PollInterval),
		zap.Duration("cooldown", e.params.Cooldown),
	)
	defer e.reportExit()

	for {
		if ctx.Err() != nil {
			e.logger.Info("cancellation observed; exiting")
			return
		}
		if e.params.MaxTrades > 0 && e.state.TotalTrades >= e.params.MaxTrades {
			e.logger.Info("reached max trades; exiting", zap.Int("max_trades", e.params.MaxTrades))
			return
		}

		quote, err := e.gateway.GetQuote(ctx, e.params.InstrumentKey)
		if err != nil {
			metrics.QuoteFailures.Inc()
			e.logger.Warn("ltp fetch failed", zap.Error(err))
			if !e.sleep(ctx) {
				return
			}
			continue
		}
		metrics.Quotes.Inc()
		metrics.LastPrice.Set(quote.LastPrice)

		e.mu.Lock()
		e.state.LastPrice = quote.LastPrice
		e.mu.Unlock()

		// Both evaluations share one now/canTrade snapshot. Position
		// exclusivity (0 vs >0) means at most one can fire per iteration.
		now := e.now()
		canTrade := now.Sub(e.state.LastTradeTime) >= e.params.Cooldown

		if e.params.BuyBelow != nil && e.state.PositionQty == 0 && quote.LastPrice <= *e.params.BuyBelow && canTrade {
			e.tryBuy(ctx, quote, now)
		}
		if e.params.SellAbove != nil && e.state.PositionQty > 0 && quote.LastPrice >= *e.params.SellAbove && canTrade {
			e.trySell(ctx, quote, now)
		}

		if !e.sleep(ctx) {
			return
		}
	}
}

func (e *Engine) tryBuy(ctx context.Context, quote *domain.Quote, now time.Time) {
	res, err := e.gateway.PlaceMarketOrder(ctx, domain.OrderRequest{
		InstrumentKey: e.params.InstrumentKey,
		Side:          domain.SideBuy,
		Quantity:      e.params.Quantity,
		Tag:           e.params.OrderTag,
	})
	if err != nil {
		metrics.OrderFailures.WithLabelValues(string(domain.SideBuy)).Inc()
		e.logger.Error("BUY failed", zap.Error(err))
		return
	}

	e.mu.Lock()
	e.state.PositionQty += e.params.Quantity
	e.state.TotalTrades++
	e.state.LastTradeTime = now
	e.mu.Unlock()

	e.confirm(ctx, domain.SideBuy, e.params.Quantity, quote.LastPrice, res)
}

func (e *Engine) trySell(ctx context.Context, quote *domain.Quote, now time.Time) {
	qty := e.state.PositionQty
	res, err := e.gateway.PlaceMarketOrder(ctx, domain.OrderRequest{
		InstrumentKey: e.params.InstrumentKey,
		Side:          domain.SideSell,
		Quantity:      qty,
		Tag:           e.params.OrderTag,
	})
	if err != nil {
		metrics.OrderFailures.WithLabelValues(string(domain.SideSell)).Inc()
		e.logger.Error("SELL failed", zap.Error(err))
		return
	}

	e.mu.Lock()
	e.state.TotalTrades++
	e.state.PositionQty = 0
	e.state.LastTradeTime = now
	e.mu.Unlock()

	e.confirm(ctx, domain.SideSell, qty, quote.LastPrice, res)
}

func (e *Engine) confirm(ctx context.Context, side domain.Side, qty int, price float64, res *domain.OrderResult) {
	metrics.Orders.WithLabelValues(res.Backend, string(side)).Inc()
	metrics.Trades.Inc()
	metrics.PositionQty.Set(float64(e.Snapshot().PositionQty))

	e.logger.Info("trade filled",
		zap.String("side", string(side)),
		zap.Int("quantity", qty),
		zap.Float64("price", price),
		zap.String("backend", res.Backend),
		zap.String("status", res.Status),
		zap.ByteString("response", res.Raw),
	)

	if e.trades == nil {
		return
	}
	order := &domain.Order{
		InstrumentKey: e.params.InstrumentKey,
		Side:          side,
		Quantity:      qty,
		Price:         price,
		Backend:       res.Backend,
		Tag:           res.Tag,
		CreatedAt:     e.now(),
	}
	if err := e.trades.SaveTrade(ctx, order); err != nil {
		e.logger.Warn("trade journal write failed", zap.Error(err))
	}
}

// sleep waits one poll interval, waking early on cancellation. Returns false
// when the loop should exit.
func (e *Engine) sleep(ctx context.Context) bool {
	timer := time.NewTimer(e.params.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) reportExit() {
	s := e.Snapshot()
	if s.PositionQty > 0 {
		e.logger.Warn("exiting with open position; manage risk manually",
			zap.String("instrument_key", s.InstrumentKey),
			zap.Int("position_qty", s.PositionQty),
		)
	}
	e.logger.Info("strategy stopped",
		zap.Int("total_trades", s.TotalTrades),
		zap.Int("position_qty", s.PositionQty),
	)
}

// Snapshot returns a copy of the current trading state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
