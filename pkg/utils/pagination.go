package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads zero-indexed "page" and "limit" query parameters.
func ParsePagination(c *fiber.Ctx) PaginationParams {
	page := parseIntDefault(c.Query("page"), 0)
	limit := parseIntDefault(c.Query("limit"), 20)

	if page < 0 {
		page = 0
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: page * limit,
	}
}

func ApplyPagination(db *gorm.DB, p PaginationParams) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Limit)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
