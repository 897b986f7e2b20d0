package domain

import (
	"strconv"
	"strings"
	"time"
)

// Boot is a catalog item: free-form descriptive attributes plus an optional price.
type Boot struct {
	ID         string
	Attributes map[string]string
	Price      *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PriceValue returns the boot price, zero when unset.
func (b Boot) PriceValue() float64 {
	if b.Price == nil {
		return 0
	}
	return *b.Price
}

// BootPatch describes a partial update of a boot.
// Attributes are merged key by key. When SetPrice is true Price replaces the
// stored price, a nil Price clears it.
type BootPatch struct {
	Attributes map[string]string
	SetPrice   bool
	Price      *float64
}

// Apply merges the patch into b.
func (p BootPatch) Apply(b *Boot) {
	if len(p.Attributes) > 0 && b.Attributes == nil {
		b.Attributes = make(map[string]string, len(p.Attributes))
	}
	for k, v := range p.Attributes {
		b.Attributes[k] = v
	}
	if p.SetPrice {
		b.Price = p.Price
	}
}

// CoercePrice converts a stored price of unknown type into a number.
// Numbers pass through, numeric strings are parsed and anything else reports false.
func CoercePrice(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
