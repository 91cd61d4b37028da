// Package api holds the JSON contracts shared by the wizard clients and the
// lead intake endpoints. Field names are part of the integration contract and
// must not change.
package api

import "encoding/json"

// Location is one address candidate returned by GET /location.
type Location struct {
	Description string          `json:"description"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// SendOTPRequest is the body of POST /otp/send-otp.
type SendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,lead_phone" label:"Phone number"`
}

// SendOTPResponse is returned by POST /otp/send-otp.
type SendOTPResponse struct {
	Success bool   `json:"success"`
	OTP     string `json:"otp,omitempty"`
	Message string `json:"message"`
}

// BuyLead is the body of POST /email/buy.
//
// AddressToSell and LookingToSell keep the legacy wiring: AddressToSell carries
// the "also looking to sell?" answer and LookingToSell carries the selected
// address description.
type BuyLead struct {
	AdditionalDetails string `json:"additionalDetails"`
	AddressToSell     *bool  `json:"addressToSell"`
	Email             string `json:"email" validate:"required,lead_email" label:"Email"`
	FirstName         string `json:"firstName" validate:"required" label:"First name"`
	HasAgent          bool   `json:"hasAgent"`
	LastName          string `json:"lastName" validate:"required" label:"Last name"`
	LookingToSell     string `json:"lookingToSell" validate:"required" label:"Address"`
	OTP               string `json:"otp" validate:"required,len=6,numeric" label:"OTP"`
	PhoneNumber       string `json:"phoneNumber" validate:"required,lead_phone" label:"Phone number"`
	PriceRange        string `json:"priceRange" validate:"required" label:"Price range"`
}

// SellAndBuyLead is the body of POST /email/buy-and-sell. HasAgent is encoded
// as "Yes" or "No".
type SellAndBuyLead struct {
	AdditionalDetails string `json:"additionalDetails"`
	AddressToSell     string `json:"addressToSell" validate:"required" label:"Address to sell"`
	CityToBuy         string `json:"cityToBuy" validate:"required" label:"City to buy"`
	FirstName         string `json:"firstName" validate:"required" label:"First name"`
	HasAgent          string `json:"hasAgent" validate:"oneof=Yes No" label:"Has agent"`
	HomePriceRange    string `json:"homePriceRange" validate:"required" label:"Home price range"`
	LastName          string `json:"lastName" validate:"required" label:"Last name"`
	LookingPriceRange string `json:"lookingPriceRange" validate:"required" label:"Looking price range"`
	PhoneNumber       string `json:"phoneNumber" validate:"required,lead_phone" label:"Phone number"`
	Email             string `json:"email" validate:"required,lead_email" label:"Email"`
}

// Result is the generic response of the lead endpoints.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
