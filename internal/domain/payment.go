package domain

import "github.com/shopspring/decimal"

type PaymentRequest struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

type Payment struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"clientSecret,omitempty"`
	TestMode     bool   `json:"testMode,omitempty"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Airport struct {
	Code    string `json:"code"`
	City    string `json:"city"`
	Name    string `json:"name"`
	Country string `json:"country"`
}
