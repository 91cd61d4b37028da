package leads

import "time"

// Kind tells which wizard produced a lead.
type Kind string

const (
	KindBuy        Kind = "buy"
	KindBuyAndSell Kind = "buy-and-sell"
)

// Lead is a captured prospect as stored and forwarded to agents.
type Lead struct {
	ID                string
	Kind              Kind
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Address           string
	CityToBuy         string
	PriceRange        string
	HomePriceRange    string
	LookingPriceRange string
	HasAgent          bool
	AlsoSelling       *bool
	AdditionalDetails string
	CreatedAt         time.Time
}

// FullName joins the first and last name.
func (l Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}
