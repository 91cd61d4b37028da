package wizard

import (
	"fmt"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/pricing"
)

// buyPayload builds the /email/buy body. The address/looking-to-sell fields
// are deliberately cross-wired to match what the intake service has always
// received: lookingToSell carries the address, addressToSell the answer.
func buyPayload(f FormState, token Token) (any, error) {
	price, err := pricing.FormatPriceRange(f.PriceRange)
	if err != nil {
		return nil, fmt.Errorf("price range: %w", err)
	}
	return api.BuyLead{
		AdditionalDetails: f.AdditionalDetails,
		AddressToSell:     f.LookingToSell,
		Email:             f.Email,
		FirstName:         f.FirstName,
		HasAgent:          f.HasAgent != nil && *f.HasAgent,
		LastName:          f.LastName,
		LookingToSell:     f.AddressToSell.Description,
		OTP:               token.Code,
		PhoneNumber:       token.Phone,
		PriceRange:        price,
	}, nil
}

func sellAndBuyPayload(f FormState, token Token) (any, error) {
	home, err := pricing.FormatPriceRange(f.HomePriceRange)
	if err != nil {
		return nil, fmt.Errorf("home price range: %w", err)
	}
	looking, err := pricing.FormatPriceRange(f.LookingPriceRange)
	if err != nil {
		return nil, fmt.Errorf("looking price range: %w", err)
	}
	hasAgent := "No"
	if f.HasAgent != nil && *f.HasAgent {
		hasAgent = "Yes"
	}
	return api.SellAndBuyLead{
		AdditionalDetails: f.AdditionalDetails,
		AddressToSell:     f.AddressToSell.Description,
		CityToBuy:         f.CityToBuy.Description,
		FirstName:         f.FirstName,
		HasAgent:          hasAgent,
		HomePriceRange:    home,
		LastName:          f.LastName,
		LookingPriceRange: looking,
		PhoneNumber:       token.Phone,
		Email:             f.Email,
	}, nil
}
