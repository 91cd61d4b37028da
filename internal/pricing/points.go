package pricing

import (
	"errors"
	"fmt"
)

// DefaultValue is the price bucket preselected when a wizard starts ($500K).
const DefaultValue = 500

// ErrUnknownPricePoint is returned when a value does not match any bucket.
var ErrUnknownPricePoint = errors.New("unknown price point")

// PricePoint is one labeled bucket of the price selector. Values are in
// thousands of dollars.
type PricePoint struct {
	Value   int    `json:"value"`
	Display string `json:"display"`
}

var table = generate()

// Points returns the canonical ascending price table. The returned slice is a
// copy and may be modified by the caller.
func Points() []PricePoint {
	out := make([]PricePoint, len(table))
	copy(out, table)
	return out
}

func generate() []PricePoint {
	points := []PricePoint{{Value: 50, Display: "Under $100K"}}

	for v := 100; v < 950; v += 50 {
		points = append(points, PricePoint{Value: v, Display: fmt.Sprintf("$%dK - $%dK", v, v+50)})
	}

	// merged bucket bridging the K and M labels
	points = append(points, PricePoint{Value: 950, Display: "$950K - $1M"})

	for v := 1000; v < 2750; v += 250 {
		lower := millions(v)
		if v == 1000 {
			lower = "$1M"
		}
		points = append(points, PricePoint{Value: v, Display: fmt.Sprintf("%s - %s", lower, millions(v+250))})
	}

	return append(points,
		PricePoint{Value: 2750, Display: "$2.75M - $3M"},
		PricePoint{Value: 3000, Display: "$3M - $4M"},
		PricePoint{Value: 4000, Display: "$4M - $5M"},
		PricePoint{Value: 5000, Display: "$5M+"},
	)
}

func millions(thousands int) string {
	return fmt.Sprintf("$%.2fM", float64(thousands)/1000)
}

// IndexOf returns the position of value in the table or -1.
func IndexOf(value int) int {
	for i, p := range table {
		if p.Value == value {
			return i
		}
	}
	return -1
}

// FormatPriceRange returns the label of the bucket whose value equals value.
func FormatPriceRange(value int) (string, error) {
	idx := IndexOf(value)
	if idx < 0 {
		return "", fmt.Errorf("%w: %d", ErrUnknownPricePoint, value)
	}
	return table[idx].Display, nil
}

// At returns the value stored at index idx, clamped to the table bounds.
func At(idx int) int {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(table) {
		idx = len(table) - 1
	}
	return table[idx].Value
}

// Len reports the number of buckets.
func Len() int { return len(table) }

// Step moves value by delta buckets. Moving past either end of the table
// leaves the value unchanged, as does an unknown value.
func Step(value, delta int) int {
	idx := IndexOf(value)
	if idx < 0 {
		return value
	}
	next := idx + delta
	if next < 0 || next >= len(table) {
		return value
	}
	return table[next].Value
}
