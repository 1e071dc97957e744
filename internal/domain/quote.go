package domain

// Quote is a last-traded-price snapshot for one instrument. Created fresh on
// every successful fetch; never mutated.
type Quote struct {
	InstrumentKey string  `json:"instrument_key"`
	LastPrice     float64 `json:"last_price"`
	Timestamp     string  `json:"timestamp,omitempty"` // exchange timestamp when the backend provides one
}
