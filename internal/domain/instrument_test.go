package domain_test

import (
	"errors"
	"testing"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
)

func TestBuildInstrumentKey(t *testing.T) {
	got := domain.BuildInstrumentKey(" NSE_EQ ", " RELIANCE ")
	if got != "NSE_EQ|RELIANCE" {
		t.Errorf("got %q", got)
	}
}

func TestSplitInstrumentKey(t *testing.T) {
	cases := []struct {
		key      string
		exchange string
		symbol   string
		wantErr  bool
	}{
		{"NSE_EQ|RELIANCE", "NSE_EQ", "RELIANCE", false},
		{"NSE_EQ:TCS", "NSE_EQ", "TCS", false},
		// Pipe wins when both delimiters appear; remainder stays intact.
		{"NSE_EQ|AB:CD", "NSE_EQ", "AB:CD", false},
		{"RELIANCE", "", "", true},
		{"|RELIANCE", "", "", true},
		{"NSE_EQ|", "", "", true},
		{"", "", "", true},
	}

	for _, tc := range cases {
		exchange, symbol, err := domain.SplitInstrumentKey(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Errorf("key %q: expected error", tc.key)
				continue
			}
			var valErr *domain.ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("key %q: want ValidationError, got %T", tc.key, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("key %q: unexpected error %v", tc.key, err)
			continue
		}
		if exchange != tc.exchange || symbol != tc.symbol {
			t.Errorf("key %q: got (%q, %q), want (%q, %q)", tc.key, exchange, symbol, tc.exchange, tc.symbol)
		}
	}
}
