package dto

import "time"

// ItemName and Unit may be omitted when ItemID names an inventory item.
type CreateWasteLogDTO struct {
	ItemID   string     `json:"itemId"`
	ItemName string     `json:"itemName" binding:"max=200"`
	Quantity float64    `json:"quantity" binding:"required,gt=0"`
	Unit     string     `json:"unit" binding:"max=32"`
	Reason   string     `json:"reason" binding:"required"`
	Cost     *float64   `json:"cost" binding:"omitempty,gte=0"`
	Notes    string     `json:"notes" binding:"max=2000"`
	LoggedAt *time.Time `json:"loggedAt"`
}
