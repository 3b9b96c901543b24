package llm

import "fmt"

// ErrQuotaExceeded indicates the provider rejected the request over rate
// or quota limits (429).
type ErrQuotaExceeded struct {
	Err error
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("quota exceeded: %v", e.Err)
}

func (e *ErrQuotaExceeded) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable or
// returned an unusable response.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrEmptyResponse indicates the provider answered without any text
// content.
type ErrEmptyResponse struct{}

func (e *ErrEmptyResponse) Error() string {
	return "empty response from provider"
}
