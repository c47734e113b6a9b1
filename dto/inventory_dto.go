package dto

import "time"

type CreateInventoryItemDTO struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Category    string     `json:"category" binding:"max=100"`
	Quantity    *float64   `json:"quantity" binding:"required,gte=0"`
	Unit        string     `json:"unit" binding:"required,max=32"`
	CostPerUnit float64    `json:"costPerUnit" binding:"gte=0"`
	ExpiryDate  *time.Time `json:"expiryDate" binding:"required"`
	Location    string     `json:"location" binding:"max=100"`
}

// UpdateInventoryItemDTO: all fields are optional pointers
type UpdateInventoryItemDTO struct {
	Name        *string    `json:"name" binding:"omitempty,max=200"`
	Category    *string    `json:"category" binding:"omitempty,max=100"`
	Quantity    *float64   `json:"quantity" binding:"omitempty,gte=0"`
	Unit        *string    `json:"unit" binding:"omitempty,max=32"`
	CostPerUnit *float64   `json:"costPerUnit" binding:"omitempty,gte=0"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Location    *string    `json:"location" binding:"omitempty,max=100"`
}
