package domain

import (
	"encoding/json"
	"time"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Product codes follow the Upstox v2 convention.
const (
	ProductIntraday = "I"
	ProductDelivery = "D"
)

const ValidityDay = "DAY"

// OrderRequest describes a market order to submit through the gateway.
// Product defaults to intraday and Validity to DAY when left empty.
type OrderRequest struct {
	InstrumentKey string
	Side          Side
	Quantity      int
	Product       string
	Validity      string
	Tag           string
}

// OrderResult is the normalized acknowledgement for a placed order. Dry runs
// fill the echo fields locally; live orders additionally carry the backend
// response body in Raw.
type OrderResult struct {
	Status        string          `json:"status"`
	Action        Side            `json:"action"`
	InstrumentKey string          `json:"instrument_key"`
	Quantity      int             `json:"quantity"`
	Product       string          `json:"product"`
	Validity      string          `json:"validity"`
	Tag           string          `json:"tag,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Backend       string          `json:"backend"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// Order is a confirmed fill recorded in the trade journal.
type Order struct {
	ID            int64     `json:"id"`
	InstrumentKey string    `json:"instrument_key"`
	Side          Side      `json:"side"`
	Quantity      int       `json:"quantity"`
	Price         float64   `json:"price"`
	Backend       string    `json:"backend"`
	Tag           string    `json:"tag,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
