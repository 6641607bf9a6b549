package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ResolvePaging reads skip and limit from the query string, clamping limit to maxLimit
func ResolvePaging(c *fiber.Ctx, defaultLimit, maxLimit int) (skip, limit int) {
	skip, _ = strconv.Atoi(c.Query("skip", "0"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// PageMeta is the pagination block returned next to a listing
func PageMeta(total int64, skip, limit int) fiber.Map {
	return fiber.Map{"total": total, "skip": skip, "limit": limit}
}
