package models

import "time"

// SemiFinished is an intermediate preparation (prepared rice, sauces) made
// from raw ingredients and itself usable in menu products.
type SemiFinished struct {
	ID             uint    `gorm:"primaryKey"`
	Name           string  `gorm:"size:150;not null"`
	OutputQuantity float64 `gorm:"not null"`
	OutputUnit     string  `gorm:"size:10;not null"`
	CostPerUnit    float64 `gorm:"not null;default:0"` // sum(items.total) / output_quantity
	Category       string  `gorm:"size:100;index"`
	IsVisible      bool    `gorm:"not null;default:true"`
	IsArchived     bool    `gorm:"not null;default:false"`
	Items          []SemiFinishedItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SemiFinished) TableName() string { return "semi_finished" }

// SemiFinishedItem locks in the ingredient price at the time the recipe was
// saved; later batches do not change it.
type SemiFinishedItem struct {
	ID             uint `gorm:"primaryKey"`
	SemiFinishedID uint `gorm:"index;not null"`
	IngredientID   uint `gorm:"index;not null"`
	Ingredient     Ingredient
	Quantity       float64 `gorm:"not null"`
	Unit           string  `gorm:"size:10;not null"`
	PricePerUnit   float64 `gorm:"not null"`
	Total          float64 `gorm:"not null"`
}

func (SemiFinishedItem) TableName() string { return "semi_finished_items" }
