package domain

import "time"

// Order is an immutable record of a purchase of one or more boots.
type Order struct {
	ID         string
	UserID     string
	BootIDs    []string
	TotalPrice float64
	CreatedAt  time.Time

	// Boots holds the expanded catalog records for display. Boots removed from
	// the catalog after the order was placed are absent here but kept in BootIDs.
	Boots []Boot
}

// TotalOf sums the prices of boots, an unset price counts as zero.
func TotalOf(boots []Boot) float64 {
	var total float64
	for _, b := range boots {
		total += b.PriceValue()
	}
	return total
}
