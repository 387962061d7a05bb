package models

// Account holds the simulated user's cash balance.
// There is exactly one account row in this system.
type Account struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	Email    string  `json:"email"`
	Cash     float64 `gorm:"not null" json:"cash"`
	Currency string  `json:"currency"`
}
