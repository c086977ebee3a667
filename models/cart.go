package models

// CartItem represents one independently priced, independently schedulable rental item.
type CartItem struct {
	ID        string  `bson:"id" json:"id"`                // Service/item identifier
	Name      string  `bson:"name" json:"name"`            // Display name
	UnitPrice float64 `bson:"unit_price" json:"unitPrice"` // Catalog unit price
	Quantity  int     `bson:"quantity" json:"quantity"`    // Units rented
	Category  string  `bson:"category" json:"category"`    // e.g. "tents", "audio", "lighting"
	DailyRate float64 `bson:"daily_rate" json:"dailyRate"` // Price per day per unit
	Duration  int     `bson:"duration" json:"duration"`    // Computed rental duration in days (>= 1)
}

// TotalPrice returns dailyRate x duration x quantity for the item.
func (ci CartItem) TotalPrice() float64 {
	return ci.DailyRate * float64(ci.Duration) * float64(ci.Quantity)
}

// StockReport is the outcome of a read-only availability check.
type StockReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}
