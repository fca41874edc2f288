// Package currency provides the registry of currencies the POS engine can
// trade in. Every monetary amount in the system carries a Code, and the
// registry supplies the per-currency metadata (decimal places, symbol) that
// pricing and display logic depend on.
package currency

import (
	"errors"
	"sync"
)

const (
	// DefaultCurrency is the fallback currency code (USD).
	DefaultCurrency = Code("USD")
	// DefaultDecimals is the default number of decimal places for currencies.
	DefaultDecimals = 2
)

// ErrUnsupportedCurrency is returned when a currency code is not registered.
var ErrUnsupportedCurrency = errors.New("currency not supported")

// Code represents an ISO 4217 currency code (e.g., "USD", "IDR").
type Code string

// String returns the code as a plain string.
func (c Code) String() string { return string(c) }

// Common currency codes for convenience.
const (
	USD = Code("USD")
	EUR = Code("EUR")
	JPY = Code("JPY")
	KWD = Code("KWD")
	GBP = Code("GBP")
	IDR = Code("IDR")
)

// Meta holds currency-specific metadata.
type Meta struct {
	Decimals int
	Symbol   string
}

// Registry maps currency codes to their metadata. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	currencies map[Code]Meta
}

// NewRegistry creates a registry seeded with the default currency set.
func NewRegistry() *Registry {
	r := &Registry{currencies: make(map[Code]Meta)}
	defaults := map[Code]Meta{
		USD:   {Decimals: 2, Symbol: "$"},
		EUR:   {Decimals: 2, Symbol: "€"},
		JPY:   {Decimals: 0, Symbol: "¥"},
		KWD:   {Decimals: 3, Symbol: "د.ك"},
		GBP:   {Decimals: 2, Symbol: "£"},
		IDR:   {Decimals: 0, Symbol: "Rp"},
		"CAD": {Decimals: 2, Symbol: "C$"},
		"AUD": {Decimals: 2, Symbol: "A$"},
		"CHF": {Decimals: 2, Symbol: "CHF"},
		"CNY": {Decimals: 2, Symbol: "¥"},
		"INR": {Decimals: 2, Symbol: "₹"},
	}
	for code, meta := range defaults {
		r.Register(code, meta)
	}
	return r
}

// Register adds or updates a currency in the registry.
func (r *Registry) Register(code Code, meta Meta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currencies[code] = meta
}

// Get returns currency metadata for the given code.
func (r *Registry) Get(code Code) (Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.currencies[code]
	if !ok {
		return Meta{}, ErrUnsupportedCurrency
	}
	return meta, nil
}

// IsSupported checks if a currency code is registered.
func (r *Registry) IsSupported(code Code) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.currencies[code]
	return ok
}

// ListSupported returns all registered currency codes.
func (r *Registry) ListSupported() []Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]Code, 0, len(r.currencies))
	for code := range r.currencies {
		codes = append(codes, code)
	}
	return codes
}

// defaultRegistry backs the package-level helpers.
var defaultRegistry = NewRegistry()

// Get returns metadata for the given code from the default registry.
func Get(code Code) (Meta, error) { return defaultRegistry.Get(code) }

// IsSupported reports whether the default registry knows the code.
func IsSupported(code Code) bool { return defaultRegistry.IsSupported(code) }

// Register adds or updates a currency in the default registry.
func Register(code Code, meta Meta) { defaultRegistry.Register(code, meta) }

// ListSupported returns all codes in the default registry.
func ListSupported() []Code { return defaultRegistry.ListSupported() }

// IsValidFormat checks that a code is three uppercase ASCII letters.
func IsValidFormat(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, ch := range code {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}
