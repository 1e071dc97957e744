package domain

import (
	"fmt"
	"strings"
)

// BuildInstrumentKey joins an exchange segment and trading symbol into the
// key format the APIs expect, e.g. ("NSE_EQ", "RELIANCE") -> "NSE_EQ|RELIANCE".
func BuildInstrumentKey(exchange, symbol string) string {
	return strings.TrimSpace(exchange) + "|" + strings.TrimSpace(symbol)
}

// SplitInstrumentKey splits "EXCHANGE|SYMBOL" or "EXCHANGE:SYMBOL" into its
// parts. Detection prefers '|' over ':'. A symbol that itself contains either
// character is ambiguous; the first delimiter wins. Known limitation.
func SplitInstrumentKey(key string) (exchange, symbol string, err error) {
	delimiter := ":"
	if strings.Contains(key, "|") {
		delimiter = "|"
	}
	parts := strings.SplitN(key, delimiter, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &ValidationError{
			Field:  "instrument_key",
			Reason: fmt.Sprintf("want <EXCHANGE>|<SYMBOL> or <EXCHANGE>:<SYMBOL>, got %q", key),
		}
	}
	return parts[0], parts[1], nil
}
