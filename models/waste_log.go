package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type WasteReason string

const (
	WasteReasonExpired        WasteReason = "expired"
	WasteReasonSpoiled        WasteReason = "spoiled"
	WasteReasonOverproduction WasteReason = "overproduction"
	WasteReasonPlateWaste     WasteReason = "plate_waste"
	WasteReasonDamaged        WasteReason = "damaged"
	WasteReasonOther          WasteReason = "other"
)

func (r WasteReason) Valid() bool {
	switch r {
	case WasteReasonExpired, WasteReasonSpoiled, WasteReasonOverproduction,
		WasteReasonPlateWaste, WasteReasonDamaged, WasteReasonOther:
		return true
	}
	return false
}

type WasteLog struct {
	ID       bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	ItemID   *bson.ObjectID `bson:"itemId,omitempty" json:"itemId,omitempty"`
	ItemName string         `bson:"itemName" json:"itemName"`
	Quantity float64        `bson:"quantity" json:"quantity"`
	Unit     string         `bson:"unit" json:"unit"`
	Reason   WasteReason    `bson:"reason" json:"reason"`
	Cost     float64        `bson:"cost" json:"cost"`
	Notes    string         `bson:"notes,omitempty" json:"notes,omitempty"`
	LoggedBy bson.ObjectID  `bson:"loggedBy" json:"loggedBy"`
	LoggedAt time.Time      `bson:"loggedAt" json:"loggedAt"`
}

// WasteSummaryRow is one group of an aggregation report.
type WasteSummaryRow struct {
	Key      string  `bson:"_id" json:"key"`
	Count    int64   `bson:"count" json:"count"`
	Quantity float64 `bson:"quantity" json:"quantity"`
	Cost     float64 `bson:"cost" json:"cost"`
}
