package geolib

import (
	"errors"
	"strings"
)

// ErrorKind is a closed set of reasons why a provider has failed.
type ErrorKind uint8

const (
	// KindUnknown is a failure which does not belong to any other kind:
	// broken transport, unparseable response etc.
	KindUnknown ErrorKind = iota

	// KindUnsupportedOperation means that provider structurally cannot
	// handle a query class or an operation. For example, address-only
	// backend is asked to resolve an IP.
	KindUnsupportedOperation

	// KindNoResult means that backend was queried but has returned
	// nothing usable.
	KindNoResult

	// KindInvalidCredentials means that backend has rejected
	// authentication.
	KindInvalidCredentials

	// KindQuotaExceeded means that backend rate limit was hit.
	KindQuotaExceeded

	// KindChainFailure is returned only by chains if every member has
	// failed.
	KindChainFailure
)

var (
	ErrUnsupported        = errors.New("unsupported operation")
	ErrNoResult           = errors.New("no result")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrChainFailure       = errors.New("all chain members have failed")
	ErrUnknown            = errors.New("provider failure")

	ErrContextIsClosed = errors.New("context is closed")
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedOperation:
		return "unsupported_operation"
	case KindNoResult:
		return "no_result"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindChainFailure:
		return "chain_failure"
	}

	return "unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnsupportedOperation:
		return ErrUnsupported
	case KindNoResult:
		return ErrNoResult
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindQuotaExceeded:
		return ErrQuotaExceeded
	case KindChainFailure:
		return ErrChainFailure
	}

	return ErrUnknown
}

// ProviderError is a failure of a single provider. It carries a query
// which has caused it.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Query    string
	Err      error
}

func (p *ProviderError) Error() string {
	builder := strings.Builder{}

	builder.WriteString(p.Provider)
	builder.WriteString(": ")
	builder.WriteString(p.Kind.sentinel().Error())

	if p.Query != "" {
		builder.WriteString(" (query=")
		builder.WriteString(p.Query)
		builder.WriteString(")")
	}

	if p.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(p.Err.Error())
	}

	return builder.String()
}

func (p *ProviderError) Unwrap() error {
	return p.Err
}

// Is makes errors.Is(err, ErrNoResult) and friends work.
func (p *ProviderError) Is(target error) bool {
	return target == p.Kind.sentinel()
}

// NewProviderError builds a new error of the given kind.
func NewProviderError(kind ErrorKind, provider, query string, err error) *ProviderError {
	return &ProviderError{
		Kind:     kind,
		Provider: provider,
		Query:    query,
		Err:      err,
	}
}

// ChainError is an aggregate of all failures of chain members in the
// order they were tried.
type ChainError struct {
	Errors []error
}

func (c *ChainError) Error() string {
	builder := strings.Builder{}

	builder.WriteString(ErrChainFailure.Error())

	for i, v := range c.Errors {
		if i == 0 {
			builder.WriteString(": ")
		} else {
			builder.WriteString("; ")
		}

		builder.WriteString(v.Error())
	}

	return builder.String()
}

func (c *ChainError) Unwrap() []error {
	return c.Errors
}

func (c *ChainError) Is(target error) bool {
	return target == ErrChainFailure
}

// Kinds returns a kind of each aggregated error.
func (c *ChainError) Kinds() []ErrorKind {
	rv := make([]ErrorKind, 0, len(c.Errors))

	for _, v := range c.Errors {
		rv = append(rv, KindOf(v))
	}

	return rv
}

// KindOf extracts an error kind. Chain failures are checked first so
// a chain error does not pretend to be one of its members.
func KindOf(err error) ErrorKind {
	var chainErr *ChainError
	if errors.As(err, &chainErr) {
		return KindChainFailure
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind
	}

	return KindUnknown
}
