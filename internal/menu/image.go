package menu

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/config"
	"fodi-backend/internal/database"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// ImageRoute is where the product image directory is served from.
const ImageRoute = "/product-images"

const (
	maxImageSize    = 5 << 20
	downloadTimeout = 30 * time.Second
)

var (
	errEmptyImage       = errors.New("image is empty")
	errImageTooLarge    = errors.New("image exceeds 5 MB")
	errUnsupportedImage = errors.New("image must be jpeg, png or webp")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ImageURLRequest struct {
	URL string `json:"url"`
}

// ImageURL maps a stored image reference to a browser path. Remote
// references are returned as is.
func ImageURL(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return ImageRoute + "/" + image
}

func imageExtension(contentType string, data []byte) (string, error) {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	ext, ok := imageExtensions[ct]
	if !ok {
		return "", errUnsupportedImage
	}
	return ext, nil
}

// SaveImage writes the image into dir as product-<id>.<ext> and returns the
// file name.
func SaveImage(dir string, productID uint, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyImage
	}
	if len(data) > maxImageSize {
		return "", errImageTooLarge
	}
	ext, err := imageExtension(contentType, data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	name := fmt.Sprintf("product-%d%s", productID, ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// DownloadImage fetches a remote image. The content type is sniffed from
// the body later, so only the bytes are returned.
func DownloadImage(rawURL string, timeout time.Duration) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid image url %q", rawURL)
	}

	agent := fiber.Get(u.String())
	agent.Timeout(timeout)
	agent.UserAgent("fodi-backend")
	agent.MaxRedirectsCount(3)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("download image: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("download image: status %d", code)
	}
	return body, nil
}

func imageErrorMessage(err error) string {
	switch {
	case errors.Is(err, errEmptyImage):
		return "Файл изображения пуст"
	case errors.Is(err, errImageTooLarge):
		return "Изображение больше 5 МБ"
	case errors.Is(err, errUnsupportedImage):
		return "Поддерживаются только JPEG, PNG и WebP"
	}
	return "Не удалось сохранить изображение"
}

// POST /api/admin/products/:id/image
// multipart field "image", or JSON {"url": "https://..."}
func UploadImageHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		p, err := findProduct(c)
		if err != nil {
			return err
		}
		before := *p

		var (
			data        []byte
			contentType string
		)
		if fh, ferr := c.FormFile("image"); ferr == nil {
			if fh.Size > maxImageSize {
				return fiber.NewError(fiber.StatusRequestEntityTooLarge, imageErrorMessage(errImageTooLarge))
			}
			src, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Не удалось открыть файл")
			}
			defer src.Close()
			if data, err = io.ReadAll(io.LimitReader(src, maxImageSize+1)); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Не удалось прочитать файл")
			}
			contentType = fh.Header.Get(fiber.HeaderContentType)
		} else {
			var body ImageURLRequest
			if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.URL) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Передайте файл image или url")
			}
			if data, err = DownloadImage(strings.TrimSpace(body.URL), downloadTimeout); err != nil {
				zap.L().Warn("image download failed", zap.String("url", body.URL), zap.Error(err))
				return fiber.NewError(fiber.StatusBadGateway, "Не удалось скачать изображение")
			}
		}

		name, err := SaveImage(cfg.ProductImagePath, p.ID, contentType, data)
		if err != nil {
			if errors.Is(err, errEmptyImage) || errors.Is(err, errImageTooLarge) || errors.Is(err, errUnsupportedImage) {
				return fiber.NewError(fiber.StatusBadRequest, imageErrorMessage(err))
			}
			zap.L().Error("save image failed", zap.Uint("product_id", p.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, imageErrorMessage(err))
		}

		// a new extension leaves the previous file behind
		if old := p.Image; old != "" && old != name && !strings.Contains(old, "://") {
			_ = os.Remove(filepath.Join(cfg.ProductImagePath, filepath.Base(old)))
		}

		p.Image = name
		if err := database.DB.Omit(clause.Associations).Save(p).Error; err != nil {
			zap.L().Error("update product image failed", zap.Uint("product_id", p.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось обновить товар")
		}

		audit.Record(audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  audit.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Товар %s: новое изображение", p.Name),
			Before:      before,
			After:       p,
		})

		return c.JSON(toProductResponse(*p))
	}
}
