package models

import "time"

// Ingredient is one received batch of a raw ingredient. Several batches may
// share a name; they are grouped for display, never merged.
type Ingredient struct {
	ID              uint    `gorm:"primaryKey"`
	Name            string  `gorm:"size:150;not null;index"`
	Unit            string  `gorm:"size:10;not null"` // g, kg, ml, l, pcs
	BatchNumber     string  `gorm:"size:50;index"`
	Category        string  `gorm:"size:100;index"`
	Supplier        string  `gorm:"size:150"`
	Brutto          float64 `gorm:"not null"`
	Netto           float64 `gorm:"not null"`
	WastePercent    float64 `gorm:"not null;default:0"`
	ShelfLifeDays   *int
	GrossPrice      float64 `gorm:"not null;default:0"` // total paid for the batch
	NetPrice        float64 `gorm:"not null;default:0"`
	PricePerUnit    float64 `gorm:"not null;default:0"` // per kg / l / pcs of brutto
	NetPricePerUnit float64 `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	MovementsCount int64 `gorm:"-"`
}

type MovementType string

const (
	MovementAddition   MovementType = "addition"
	MovementRemoval    MovementType = "removal"
	MovementAdjustment MovementType = "adjustment"
)

// StockMovement is an append-only log entry against an ingredient batch.
type StockMovement struct {
	ID           uint `gorm:"primaryKey"`
	IngredientID uint `gorm:"index;not null"`
	Ingredient   Ingredient
	Quantity     float64      `gorm:"not null"` // signed delta
	Type         MovementType `gorm:"size:20;not null"`
	Note         string       `gorm:"size:255"`
	CreatedBy    *uint
	CreatedAt    time.Time
}
