package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
)

// The v1 SDK has no native Go binding. LegacySession is the surface the
// gateway needs from whatever binding the caller establishes at startup.
type LegacySession interface {
	InstrumentBySymbol(exchange, symbol string) (LegacyInstrument, error)
	LiveFeed(instrument LegacyInstrument, feed LegacyFeedType) (map[string]any, error)
	PlaceOrder(params LegacyOrderParams) (map[string]any, error)
}

// LegacyInstrument is the instrument handle a session resolves from an
// exchange segment and trading symbol.
type LegacyInstrument struct {
	Exchange string
	Symbol   string
	Token    int64
}

type LegacyFeedType string

const LegacyFeedLTP LegacyFeedType = "LTP"

type LegacyTransactionType string

const (
	LegacyTransactionBuy  LegacyTransactionType = "B"
	LegacyTransactionSell LegacyTransactionType = "S"
)

type LegacyOrderType string

const LegacyOrderMarket LegacyOrderType = "M"

type LegacyProductType string

const (
	LegacyProductIntraday LegacyProductType = "I"
	LegacyProductDelivery LegacyProductType = "D"
)

// LegacyOrderParams mirror the v1 place-order call. Market orders always
// submit price 0.
type LegacyOrderParams struct {
	TransactionType LegacyTransactionType
	Instrument      LegacyInstrument
	Quantity        int
	OrderType       LegacyOrderType
	Product         LegacyProductType
	Price           float64
}

// LegacyAdapter serves quotes and orders through an established v1 session.
type LegacyAdapter struct {
	session LegacySession
}

func NewLegacyAdapter(session LegacySession) *LegacyAdapter {
	return &LegacyAdapter{session: session}
}

func (l *LegacyAdapter) GetQuote(_ context.Context, instrumentKey string) (*domain.Quote, error) {
	exchange, symbol, err := domain.SplitInstrumentKey(instrumentKey)
	if err != nil {
		return nil, err
	}

	instrument, err := l.session.InstrumentBySymbol(exchange, symbol)
	if err != nil {
		return nil, &domain.GatewayError{Backend: domain.BackendLegacy, Message: "resolve instrument: " + err.Error()}
	}

	feed, err := l.session.LiveFeed(instrument, LegacyFeedLTP)
	if err != nil {
		return nil, &domain.GatewayError{Backend: domain.BackendLegacy, Message: "live feed: " + err.Error()}
	}

	price, ok := firstNumber(feed, []string{"ltp", "last_price"})
	if !ok {
		return nil, &domain.GatewayError{
			Backend: domain.BackendLegacy,
			Message: "no price field in sdk feed",
			Body:    truncate([]byte(fmt.Sprint(feed))),
		}
	}

	return &domain.Quote{
		InstrumentKey: instrumentKey,
		LastPrice:     price,
		Timestamp:     firstString(feed, timestampFields),
	}, nil
}

func (l *LegacyAdapter) PlaceMarketOrder(_ context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	exchange, symbol, err := domain.SplitInstrumentKey(req.InstrumentKey)
	if err != nil {
		return nil, err
	}

	instrument, err := l.session.InstrumentBySymbol(exchange, symbol)
	if err != nil {
		return nil, &domain.GatewayError{Backend: domain.BackendLegacy, Message: "resolve instrument: " + err.Error()}
	}

	side := LegacyTransactionBuy
	if req.Side == domain.SideSell {
		side = LegacyTransactionSell
	}
	product := LegacyProductDelivery
	if req.Product == domain.ProductIntraday {
		product = LegacyProductIntraday
	}

	resp, err := l.session.PlaceOrder(LegacyOrderParams{
		TransactionType: side,
		Instrument:      instrument,
		Quantity:        req.Quantity,
		OrderType:       LegacyOrderMarket,
		Product:         product,
		Price:           0,
	})
	if err != nil {
		return nil, &domain.GatewayError{Backend: domain.BackendLegacy, Message: "place order: " + err.Error()}
	}

	raw, _ := json.Marshal(resp)
	return &domain.OrderResult{
		Status:        "ok",
		Action:        req.Side,
		InstrumentKey: req.InstrumentKey,
		Quantity:      req.Quantity,
		Product:       req.Product,
		Validity:      req.Validity,
		Tag:           req.Tag,
		Timestamp:     time.Now(),
		Backend:       domain.BackendLegacy,
		Raw:           raw,
	}, nil
}
