package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	EntityIngredient   = "ingredient"
	EntitySemiFinished = "semi_finished"
	EntityProduct      = "product"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func snapshot(v any) string {
	// jsonb columns need a JSON literal, not an empty string
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func WriteLog(opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes a log and only reports failures; an audit failure never
// fails the mutation that triggered it.
func Record(opts LogOptions) {
	if err := WriteLog(opts); err != nil {
		zap.L().Error("audit log failed",
			zap.String("entity_type", opts.EntityType),
			zap.Uint("entity_id", opts.EntityID),
			zap.Error(err))
	}
}

func UndoLog(logID uint, userID uint, userName string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, "id = ?", logID).Error; err != nil {
			return fmt.Errorf("log not found: %w", err)
		}
		if entry.IsUndone {
			return fmt.Errorf("log %d is already undone", logID)
		}

		switch entry.Action {
		case models.AuditActionCreate:
			if err := deleteEntity(tx, entry.EntityType, entry.EntityID); err != nil {
				return fmt.Errorf("delete entity: %w", err)
			}
		case models.AuditActionUpdate:
			if err := restoreEntity(tx, entry.EntityType, entry.EntityID, entry.BeforeData); err != nil {
				return fmt.Errorf("restore entity: %w", err)
			}
		case models.AuditActionDelete:
			if err := recreateEntity(tx, entry.EntityType, entry.BeforeData); err != nil {
				return fmt.Errorf("recreate entity: %w", err)
			}
		default:
			return fmt.Errorf("action %q cannot be undone", entry.Action)
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("mark log undone: %w", err)
		}

		undo := models.AuditLog{
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Отменено: %s", entry.Description),
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
			Undone:      true,
		}
		if err := tx.Create(&undo).Error; err != nil {
			return fmt.Errorf("write undo log: %w", err)
		}
		return nil
	})
}

func deleteEntity(tx *gorm.DB, entityType string, id uint) error {
	switch entityType {
	case EntityIngredient:
		return tx.Delete(&models.Ingredient{}, "id = ?", id).Error
	case EntitySemiFinished:
		return tx.Select("Items").Delete(&models.SemiFinished{ID: id}).Error
	case EntityProduct:
		return tx.Select("Components").Delete(&models.Product{ID: id}).Error
	}
	return fmt.Errorf("unknown entity type %q", entityType)
}

// recreateEntity brings a deleted row back under its original id.
func recreateEntity(tx *gorm.DB, entityType string, data string) error {
	switch entityType {
	case EntityIngredient:
		var ing models.Ingredient
		if err := json.Unmarshal([]byte(data), &ing); err != nil {
			return err
		}
		return tx.Create(&ing).Error

	case EntitySemiFinished:
		var sf models.SemiFinished
		if err := json.Unmarshal([]byte(data), &sf); err != nil {
			return err
		}
		items := sf.Items
		if err := tx.Omit(clause.Associations).Create(&sf).Error; err != nil {
			return err
		}
		return createItems(tx, sf.ID, items)

	case EntityProduct:
		var p models.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		components := p.Components
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		return createComponents(tx, p.ID, components)
	}
	return fmt.Errorf("unknown entity type %q", entityType)
}

func restoreEntity(tx *gorm.DB, entityType string, id uint, data string) error {
	switch entityType {
	case EntityIngredient:
		var ing models.Ingredient
		if err := json.Unmarshal([]byte(data), &ing); err != nil {
			return err
		}
		ing.ID = id
		return tx.Save(&ing).Error

	case EntitySemiFinished:
		var sf models.SemiFinished
		if err := json.Unmarshal([]byte(data), &sf); err != nil {
			return err
		}
		sf.ID = id
		if err := tx.Where("semi_finished_id = ?", id).Delete(&models.SemiFinishedItem{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&sf).Error; err != nil {
			return err
		}
		return createItems(tx, id, sf.Items)

	case EntityProduct:
		var p models.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		p.ID = id
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductComponent{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}
		return createComponents(tx, id, p.Components)
	}
	return fmt.Errorf("unknown entity type %q", entityType)
}

func createItems(tx *gorm.DB, semiFinishedID uint, items []models.SemiFinishedItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].SemiFinishedID = semiFinishedID
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func createComponents(tx *gorm.DB, productID uint, components []models.ProductComponent) error {
	if len(components) == 0 {
		return nil
	}
	for i := range components {
		components[i].ID = 0
		components[i].ProductID = productID
	}
	return tx.Create(&components).Error
}
