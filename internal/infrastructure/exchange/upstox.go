package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
)

const DefaultBaseURL = "https://api.upstox.com/v2"

// The v2 LTP payload is loosely shaped; field synonyms are tried in this
// fixed priority order.
var (
	priceFields     = []string{"ltp", "last_price", "last_traded_price", "close"}
	timestampFields = []string{"timestamp", "exchange_timestamp"}
)

// maxErrBody bounds how much of a backend response a GatewayError carries.
const maxErrBody = 500

// upstoxHTTP talks to the Upstox v2 REST API with bearer-token auth.
type upstoxHTTP struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func newUpstoxHTTP(baseURL, accessToken string) *upstoxHTTP {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &upstoxHTTP{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		client:      &http.Client{Timeout: 20 * time.Second},
	}
}

func (u *upstoxHTTP) sendRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+u.accessToken)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Backend: domain.BackendHTTP, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.GatewayError{Backend: domain.BackendHTTP, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.GatewayError{
			Backend: domain.BackendHTTP,
			Message: fmt.Sprintf("upstox api error %d", resp.StatusCode),
			Body:    truncate(respBody),
		}
	}
	return respBody, nil
}

// GetQuote fetches the LTP through the v2 quotes endpoint. The response nests
// per-instrument nodes under "data"; when the requested key is absent (the API
// sometimes rewrites it) the lone child of a single-instrument request is used.
func (u *upstoxHTTP) GetQuote(ctx context.Context, instrumentKey string) (*domain.Quote, error) {
	path := "/market/quotes/ltp?instrument_key=" + url.QueryEscape(instrumentKey)
	body, err := u.sendRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.GatewayError{
			Backend: domain.BackendHTTP,
			Message: "decode ltp response: " + err.Error(),
			Body:    truncate(body),
		}
	}

	var (
		price     float64
		found     bool
		timestamp string
	)
	if data, ok := payload["data"].(map[string]any); ok {
		node, _ := data[instrumentKey].(map[string]any)
		if node == nil {
			for _, v := range data {
				if m, ok := v.(map[string]any); ok {
					node = m
					break
				}
			}
		}
		if node != nil {
			price, found = firstNumber(node, priceFields)
			timestamp = firstString(node, timestampFields)
		}
	}
	if !found {
		price, found = asNumber(payload["ltp"])
	}
	if !found {
		return nil, &domain.GatewayError{
			Backend: domain.BackendHTTP,
			Message: "no price field in ltp response",
			Body:    truncate(body),
		}
	}

	return &domain.Quote{InstrumentKey: instrumentKey, LastPrice: price, Timestamp: timestamp}, nil
}

// PlaceMarketOrder submits a MARKET order through the v2 order endpoint.
func (u *upstoxHTTP) PlaceMarketOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	payload := map[string]any{
		"instrument_key":   req.InstrumentKey,
		"quantity":         req.Quantity,
		"product":          req.Product,
		"transaction_type": string(req.Side),
		"order_type":       "MARKET",
		"validity":         req.Validity,
		"tag":              req.Tag,
	}
	body, err := u.sendRequest(ctx, http.MethodPost, "/order/place", payload)
	if err != nil {
		return nil, err
	}

	return &domain.OrderResult{
		Status:        "ok",
		Action:        req.Side,
		InstrumentKey: req.InstrumentKey,
		Quantity:      req.Quantity,
		Product:       req.Product,
		Validity:      req.Validity,
		Tag:           req.Tag,
		Timestamp:     time.Now(),
		Backend:       domain.BackendHTTP,
		Raw:           json.RawMessage(body),
	}, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrBody {
		b = b[:maxErrBody]
	}
	return string(b)
}

func firstNumber(node map[string]any, fields []string) (float64, bool) {
	for _, f := range fields {
		if v, ok := asNumber(node[f]); ok {
			return v, true
		}
	}
	return 0, false
}

func firstString(node map[string]any, fields []string) string {
	for _, f := range fields {
		switch v := node[f].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
