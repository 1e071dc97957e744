package domain

import "context"

// Gateway resolves price quotes and executes market orders against whichever
// backend the configured credentials allow.
type Gateway interface {
	GetQuote(ctx context.Context, instrumentKey string) (*Quote, error)
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
}

// TradeRepository defines storage operations for confirmed fills.
type TradeRepository interface {
	SaveTrade(ctx context.Context, order *Order) error
	ListTrades(ctx context.Context, limit int) ([]*Order, error)
}
