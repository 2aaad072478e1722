package models

import "time"

type Product struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:150;not null"`
	Description string  `gorm:"size:1000"`
	Price       float64 `gorm:"not null"`
	Image       string  `gorm:"size:255"`
	Weight      string  `gorm:"size:50"` // free text, e.g. "250 г"
	Category    string  `gorm:"size:100;index"`
	IsVisible   bool    `gorm:"not null;default:true"`
	Cost        float64 `gorm:"not null;default:0"` // sum(components.total)
	Components  []ProductComponent
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ComponentKind string

const (
	ComponentIngredient   ComponentKind = "ingredient"
	ComponentSemiFinished ComponentKind = "semi_finished"
)

// ProductComponent references exactly one of IngredientID or SemiFinishedID,
// depending on Kind.
type ProductComponent struct {
	ID             uint          `gorm:"primaryKey"`
	ProductID      uint          `gorm:"index;not null"`
	Kind           ComponentKind `gorm:"size:20;not null"`
	IngredientID   *uint
	SemiFinishedID *uint
	Name           string  `gorm:"size:150"`
	Quantity       float64 `gorm:"not null"`
	Unit           string  `gorm:"size:10;not null"`
	PricePerUnit   float64 `gorm:"not null"`
	Total          float64 `gorm:"not null"`
}
