// Package errs defines the closed set of error kinds a bot run can fail with.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error. Every kind is fatal to the current run.
type Kind int

const (
	// KindOther is an unclassified library error
	KindOther Kind = iota
	// KindIO is a file open, read or write failure
	KindIO
	// KindConfig is missing or invalid configuration
	KindConfig
	// KindState is malformed persisted state
	KindState
	// KindProtocol is a failed exchange with a remote API
	KindProtocol
	// KindProviderResponse is a grant that lacks a required field
	KindProviderResponse
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindConfig:
		return "config"
	case KindState:
		return "state"
	case KindProtocol:
		return "protocol"
	case KindProviderResponse:
		return "provider_response"
	default:
		return "other"
	}
}

// Sentinel causes, matched with errors.Is
var (
	ErrMissingConfig       = errors.New("required configuration value is not set")
	ErrMissingRefreshToken = errors.New("token grant has no refresh_token, most likely the offline.access scope was not granted")
	ErrMissingExpiry       = errors.New("token grant has no expires_in")
)

// Error is a classified error with the operation that produced it
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and an operation name. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IO wraps a file system failure
func IO(op string, err error) error {
	return E(KindIO, op, err)
}

// State wraps a decode failure of persisted data
func State(op string, err error) error {
	return E(KindState, op, err)
}

// Protocol wraps a failed remote exchange
func Protocol(op string, err error) error {
	return E(KindProtocol, op, err)
}

// MissingConfig reports an unset configuration key together with its env var
func MissingConfig(key, env string) error {
	return &Error{
		Kind: KindConfig,
		Op:   key,
		Err:  fmt.Errorf("%w: set %s or %q in the config file", ErrMissingConfig, env, key),
	}
}

// KindOf returns the kind of the outermost classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}
