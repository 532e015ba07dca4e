package domain

// Shop represents a storefront
type Shop struct {
	ID           int64          `json:"id"`           // Unique identifier, assigned by the store
	CreatedAt    Date           `json:"createdAt"`    // Creation date, set once
	InVacations  bool           `json:"inVacations"`  // Whether the shop is currently closed for vacations
	Name         string         `json:"name"`         // Display name (1-255 characters)
	NbProducts   int64          `json:"nbProducts"`   // Derived count of products referencing the shop
	OpeningHours []OpeningHours `json:"openingHours"` // Weekly schedule, replaced wholesale on update
	Products     []Product      `json:"-"`            // Back reference, only loaded for read-side aggregation
}

// OpeningHours is a single day-tagged open/close range belonging to a shop
type OpeningHours struct {
	Day     int       `json:"day"`     // ISO-8601 weekday, 1 (Monday) to 7 (Sunday)
	OpenAt  ClockTime `json:"openAt"`  // Opening time
	CloseAt ClockTime `json:"closeAt"` // Closing time, strictly after OpenAt
}

// Product represents an item sold by a shop
type Product struct {
	ID          int64      `json:"id"`               // Unique identifier
	Name        string     `json:"name"`             // Product name (1-255 characters)
	Description string     `json:"description"`      // Optional free text
	Price       float64    `json:"price"`            // Unit price, never negative
	ShopID      *int64     `json:"shopId,omitempty"` // Owning shop, nil once the shop is deleted
	Categories  []Category `json:"categories"`       // Categories the product is filed under
}

// Category groups products across shops
type Category struct {
	ID   int64  `json:"id"`   // Unique identifier
	Name string `json:"name"` // Unique category name
}

// ShopSummary is the read-only projection of a shop returned by full-text search
type ShopSummary struct {
	ID                 int64          `json:"id"`
	CreatedAt          Date           `json:"createdAt"`
	InVacations        bool           `json:"inVacations"`
	Name               string         `json:"name"`
	NbProducts         int64          `json:"nbProducts"`
	OpeningHours       []OpeningHours `json:"openingHours"`
	Products           []Product      `json:"products"`
	NumberOfCategories int            `json:"numberOfCategories"`
}
