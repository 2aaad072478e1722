package inventory

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/costcalc"
	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ingredientSheet = "Ингредиенты"

// Column order shared by export and import. Derived columns after
// "Цена партии" are ignored on import.
var ingredientColumns = []interface{}{
	"Название",
	"Ед.",
	"Партия",
	"Категория",
	"Поставщик",
	"Брутто",
	"Нетто",
	"Отход, %",
	"Срок годности, дн.",
	"Цена партии",
	"Цена за ед.",
	"Цена нетто",
	"Годен до",
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// WriteIngredientsXLSX renders batches into a single-sheet workbook.
func WriteIngredientsXLSX(w io.Writer, list []models.Ingredient) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ingredientSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ingredientSheet, "A1", &ingredientColumns); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	for i, ing := range list {
		shelf := interface{}("")
		expiry := costcalc.NoExpiry
		if ing.ShelfLifeDays != nil {
			shelf = *ing.ShelfLifeDays
			expiry = costcalc.ExpiryDateFrom(ing.CreatedAt, *ing.ShelfLifeDays)
		}
		row := []interface{}{
			ing.Name,
			ing.Unit,
			ing.BatchNumber,
			ing.Category,
			ing.Supplier,
			ing.Brutto,
			ing.Netto,
			ing.WastePercent,
			shelf,
			ing.GrossPrice,
			ing.PricePerUnit,
			ing.NetPrice,
			expiry,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ingredientSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func cellFloat(row []string, i int) (*float64, error) {
	if i >= len(row) {
		return nil, nil
	}
	s := strings.TrimSpace(costcalc.NormalizeNumberInput(row[i]))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !costcalc.IsFinite(v) {
		return nil, fmt.Errorf("колонка %d: %q не число", i+1, row[i])
	}
	return &v, nil
}

func cellString(row []string, i int) *string {
	if i >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[i])
	return &s
}

// ParseIngredientRow maps one spreadsheet row onto a create request.
func ParseIngredientRow(row []string) (IngredientRequest, error) {
	var req IngredientRequest
	req.Name = cellString(row, 0)
	req.Unit = cellString(row, 1)
	req.BatchNumber = cellString(row, 2)
	req.Category = cellString(row, 3)
	req.Supplier = cellString(row, 4)

	var err error
	if req.Brutto, err = cellFloat(row, 5); err != nil {
		return req, err
	}
	if req.Netto, err = cellFloat(row, 6); err != nil {
		return req, err
	}
	if req.WastePercent, err = cellFloat(row, 7); err != nil {
		return req, err
	}
	shelf, err := cellFloat(row, 8)
	if err != nil {
		return req, err
	}
	if shelf != nil {
		days := int(*shelf)
		req.ShelfLifeDays = &days
	}
	if req.GrossPrice, err = cellFloat(row, 9); err != nil {
		return req, err
	}

	if req.Name == nil || *req.Name == "" || req.Unit == nil || *req.Unit == "" {
		return req, fmt.Errorf("название и единица обязательны")
	}
	return req, nil
}

// GET /api/admin/ingredients/export
func ExportIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := loadIngredients(database.DB.Model(&models.Ingredient{}))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось получить ингредиенты")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="ingredients-%s.xlsx"`, time.Now().Format("2006-01-02")))

		if err := WriteIngredientsXLSX(c.Response().BodyWriter(), list); err != nil {
			zap.L().Error("xlsx export failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось сформировать файл")
		}
		return nil
	}
}

// POST /api/admin/ingredients/import (multipart, field "file")
func ImportIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Файл не передан")
		}
		src, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Не удалось открыть файл")
		}
		defer src.Close()

		f, err := excelize.OpenReader(src)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Файл не является книгой Excel")
		}
		defer func() { _ = f.Close() }()

		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Не удалось прочитать лист")
		}

		result := ImportResult{Errors: []string{}}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
				continue
			}

			req, err := ParseIngredientRow(row)
			if err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", i+1, err))
				continue
			}

			var ing models.Ingredient
			if err := applyIngredientRequest(&ing, req, true); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", i+1, errorText(err)))
				continue
			}

			if err := database.DB.Transaction(func(tx *gorm.DB) error {
				return createBatch(tx, &ing, &user.ID)
			}); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("строка %d: не удалось сохранить", i+1))
				zap.L().Warn("xlsx import row failed", zap.Int("row", i+1), zap.Error(err))
				continue
			}
			audit.Record(batchCreatedLog(user, ing))
			result.Imported++
		}

		zap.L().Info("xlsx import finished",
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped))
		return c.JSON(result)
	}
}

func errorText(err error) string {
	if e, ok := err.(*fiber.Error); ok {
		return e.Message
	}
	return err.Error()
}
