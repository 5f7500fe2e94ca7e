package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Purchase is an order header. Items are loaded alongside it, never
// lazily.
type Purchase struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID snowflake.ID `gorm:"not null;index" json:"user_id"`
	Date   time.Time    `gorm:"not null;index" json:"date"`

	Items []PurchaseItem `gorm:"-" json:"items"`
}

func (Purchase) TableName() string { return "purchases" }

// PurchaseItem records one product line. Paid is the amount the buyer
// actually paid for the line, captured as supplied.
type PurchaseItem struct {
	PurchaseID snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"purchase_id"`
	ProductID  snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Count      int64        `gorm:"not null" json:"count"`
	Paid       float64      `gorm:"not null" json:"paid"`
}

func (PurchaseItem) TableName() string { return "purchase_items" }
