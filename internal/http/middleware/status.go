package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// statusOf predicts the status the app ErrorHandler will write for err.
func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
