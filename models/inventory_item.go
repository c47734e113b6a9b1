package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type InventoryItem struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	SKU         string        `bson:"sku" json:"sku"`
	Category    string        `bson:"category,omitempty" json:"category,omitempty"`
	Quantity    float64       `bson:"quantity" json:"quantity"`
	Unit        string        `bson:"unit" json:"unit"`
	CostPerUnit float64       `bson:"costPerUnit" json:"costPerUnit"`
	ExpiryDate  time.Time     `bson:"expiryDate" json:"expiryDate"`
	Location    string        `bson:"location,omitempty" json:"location,omitempty"`
	CreatedBy   bson.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
