package exchange_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
	"github.com/arvikm/upstox_threshold_bot/internal/infrastructure/exchange"
)

type fakeSession struct {
	gotExchange string
	gotSymbol   string
	feed        map[string]any
	lastOrder   exchange.LegacyOrderParams
	orderResp   map[string]any
}

func (f *fakeSession) InstrumentBySymbol(ex, sym string) (exchange.LegacyInstrument, error) {
	f.gotExchange, f.gotSymbol = ex, sym
	return exchange.LegacyInstrument{Exchange: ex, Symbol: sym, Token: 42}, nil
}

func (f *fakeSession) LiveFeed(_ exchange.LegacyInstrument, _ exchange.LegacyFeedType) (map[string]any, error) {
	return f.feed, nil
}

func (f *fakeSession) PlaceOrder(params exchange.LegacyOrderParams) (map[string]any, error) {
	f.lastOrder = params
	return f.orderResp, nil
}

func newLegacyGateway(session exchange.LegacySession) *exchange.Gateway {
	// No token, not dry-run: the legacy session is the only backend.
	return exchange.NewGateway(exchange.GatewayConfig{Legacy: session})
}

func TestLegacyQuote_PipeDelimiter(t *testing.T) {
	session := &fakeSession{feed: map[string]any{"ltp": 250.5, "timestamp": "1724900000"}}
	gw := newLegacyGateway(session)

	quote, err := gw.GetQuote(context.Background(), "NSE_EQ|RELIANCE")
	require.NoError(t, err)
	require.Equal(t, "NSE_EQ", session.gotExchange)
	require.Equal(t, "RELIANCE", session.gotSymbol)
	require.Equal(t, 250.5, quote.LastPrice)
	require.Equal(t, "1724900000", quote.Timestamp)
}

func TestLegacyQuote_ColonDelimiter(t *testing.T) {
	session := &fakeSession{feed: map[string]any{"last_price": 3900.0}}
	gw := newLegacyGateway(session)

	quote, err := gw.GetQuote(context.Background(), "NSE_EQ:TCS")
	require.NoError(t, err)
	require.Equal(t, "NSE_EQ", session.gotExchange)
	require.Equal(t, "TCS", session.gotSymbol)
	require.Equal(t, 3900.0, quote.LastPrice)
}

func TestLegacyQuote_NoPriceField(t *testing.T) {
	session := &fakeSession{feed: map[string]any{"volume": 100}}
	gw := newLegacyGateway(session)

	_, err := gw.GetQuote(context.Background(), "NSE_EQ|TCS")
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, domain.BackendLegacy, gwErr.Backend)
}

func TestLegacyQuote_MalformedKey(t *testing.T) {
	gw := newLegacyGateway(&fakeSession{})

	_, err := gw.GetQuote(context.Background(), "RELIANCE")
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Equal(t, "instrument_key", valErr.Field)
}

func TestLegacyOrder_MapsEnums(t *testing.T) {
	session := &fakeSession{orderResp: map[string]any{"order_id": "legacy-1"}}
	gw := newLegacyGateway(session)

	res, err := gw.PlaceMarketOrder(context.Background(), domain.OrderRequest{
		InstrumentKey: "NSE_EQ|SBIN",
		Side:          domain.SideSell,
		Quantity:      3,
	})
	require.NoError(t, err)
	require.Equal(t, exchange.LegacyTransactionSell, session.lastOrder.TransactionType)
	require.Equal(t, exchange.LegacyOrderMarket, session.lastOrder.OrderType)
	require.Equal(t, exchange.LegacyProductIntraday, session.lastOrder.Product)
	require.Equal(t, 3, session.lastOrder.Quantity)
	require.Zero(t, session.lastOrder.Price) // market orders submit price 0
	require.Equal(t, domain.BackendLegacy, res.Backend)
	require.Contains(t, string(res.Raw), "legacy-1")
}

func TestLegacyOrder_DeliveryProduct(t *testing.T) {
	session := &fakeSession{orderResp: map[string]any{}}
	gw := newLegacyGateway(session)

	_, err := gw.PlaceMarketOrder(context.Background(), domain.OrderRequest{
		InstrumentKey: "NSE_EQ|SBIN",
		Side:          domain.SideBuy,
		Quantity:      1,
		Product:       domain.ProductDelivery,
	})
	require.NoError(t, err)
	require.Equal(t, exchange.LegacyProductDelivery, session.lastOrder.Product)
}
