package domain

import "fmt"

// Backend labels carried by GatewayError and OrderResult.
const (
	BackendHTTP      = "http"
	BackendLegacy    = "legacy"
	BackendSimulator = "simulator"
	BackendNone      = "none"
)

// GatewayError is the single failure type for all quote/order backends.
// Body carries the raw backend response, truncated, for diagnostics.
type GatewayError struct {
	Backend string
	Message string
	Body    string
}

func (e *GatewayError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("gateway (%s): %s: %s", e.Backend, e.Message, e.Body)
	}
	return fmt.Sprintf("gateway (%s): %s", e.Backend, e.Message)
}

// ErrNoCredentials reports that no backend could be selected for an operation.
func ErrNoCredentials(operation string) *GatewayError {
	return &GatewayError{
		Backend: BackendNone,
		Message: "no upstox credentials available for " + operation + "; provide UPSTOX_ACCESS_TOKEN",
	}
}

// ValidationError reports a structurally invalid caller argument. It is never
// retried and must never reach a backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports an engine configuration that could never trade.
// Fatal at startup; the loop never begins.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}
