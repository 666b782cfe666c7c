package domain

import "github.com/shopspring/decimal"

type GuestConfig struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Rooms    int `json:"rooms"`
}

type HotelQuery struct {
	Location string      `json:"location"`
	CheckIn  string      `json:"checkIn"`
	CheckOut string      `json:"checkOut"`
	Guests   GuestConfig `json:"guests"`
	Offset   int         `json:"offset"`
}

type Hotel struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Price    string   `json:"price"`
	Rating   string   `json:"rating"`
	Reviews  string   `json:"reviews"`
	Image    string   `json:"image"`
	Link     string   `json:"link"`
	Vibes    []string `json:"vibes"`
	Source   string   `json:"source"`
}

type HouseRules struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

type TruthLens struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

type HotelDetails struct {
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Amenities   []string   `json:"amenities"`
	Rooms       []string   `json:"rooms"`
	HouseRules  HouseRules `json:"houseRules"`
	Images      []string   `json:"images"`
	TruthLens   TruthLens  `json:"truthLens"`
}

// HotelOffer is a priced, bookable hotel room offer from the booking provider.
type HotelOffer struct {
	ID        string
	HotelName string
	HotelID   string
	Amount    decimal.Decimal
	Currency  string
	CheckIn   string
	CheckOut  string
}

type GuestName struct {
	Title     string `json:"title,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type GuestContact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Guest struct {
	Name    GuestName    `json:"name"`
	Contact GuestContact `json:"contact"`
}

type CardPayment struct {
	Vendor     string `json:"vendorCode"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	HolderName string `json:"holderName,omitempty"`
}

// HotelOrder carries the card details to the provider; they are never stored.
type HotelOrder struct {
	OfferID         string
	Guests          []Guest
	Payment         CardPayment
	SpecialRequests string
}
