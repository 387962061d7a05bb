package models

// Position is one holding, keyed by its uppercase ticker symbol.
// AveragePrice is the volume-weighted cost basis of all buys net of sells;
// selling reduces Quantity but never changes AveragePrice.
// A position whose quantity reaches zero is removed, not kept as a zero row.
type Position struct {
	ID           uint    `gorm:"primarykey" json:"-"`
	Symbol       string  `gorm:"uniqueIndex;not null" json:"symbol"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	AveragePrice float64 `gorm:"not null" json:"averagePrice"`
}
