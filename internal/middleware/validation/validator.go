package validation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxBodySize         int
	MaxFieldLength      int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware screens workflow write requests: content type, body size, and
// markup injection in free-text fields (triage notes, rejection reasons,
// RRA narratives, director notes).
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 1 * 1024 * 1024
	}
	if cfg.MaxFieldLength == 0 {
		cfg.MaxFieldLength = 10000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		if len(c.Body()) > cfg.MaxBodySize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Request body too large",
			})
		}

		contentType := c.Get("Content-Type")
		if len(c.Body()) > 0 && contentType != "" {
			allowed := false
			for _, allowedType := range cfg.AllowedContentTypes {
				if strings.Contains(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if len(c.Body()) > 0 {
			var payload map[string]interface{}
			if err := json.Unmarshal(c.Body(), &payload); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			for field, value := range payload {
				text, ok := value.(string)
				if !ok {
					continue
				}
				if len(text) > cfg.MaxFieldLength {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Field exceeds maximum length: " + field,
					})
				}
				if xssPattern.MatchString(text) {
					if cfg.Logger != nil {
						cfg.Logger.Warn("Rejected markup in request field",
							zap.String("ip", c.IP()),
							zap.String("field", field),
						)
					}
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid content in field: " + field,
					})
				}
			}
		}

		return c.Next()
	}
}
