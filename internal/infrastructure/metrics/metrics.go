package metrics

import "github.com/prometheus/client_golang/prometheus"

// Instruments the bot updates during a run, served at /metrics by the web
// server in Prometheus text exposition format.
var (
	Quotes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_quotes_total",
			Help: "Successful LTP fetches",
		},
	)

	QuoteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_quote_failures_total",
			Help: "Failed LTP fetches",
		},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders placed",
		},
		[]string{"backend", "side"},
	)

	OrderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_order_failures_total",
			Help: "Orders rejected by the gateway",
		},
		[]string{"side"},
	)

	Trades = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_trades_total",
			Help: "Confirmed fills",
		},
	)

	PositionQty = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_position_qty",
			Help: "Currently held quantity",
		},
	)

	LastPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_last_price",
			Help: "Last traded price seen",
		},
	)
)

func init() {
	prometheus.MustRegister(
		Quotes,
		QuoteFailures,
		Orders,
		OrderFailures,
		Trades,
		PositionQty,
		LastPrice,
	)
}
