package verification

import (
	"context"
	"errors"

	"backend-geoattend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// Historian reads back recorded samples for the audit endpoint.
type Historian interface {
	History(ctx context.Context, classID, studentID string) ([]ledger.Record, error)
}

func RegisterRoutes(r fiber.Router, svc *Service, hist Historian) {
	r.Post("/submit-log", func(c *fiber.Ctx) error {
		var req SubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No logs provided"})
		}

		result, err := svc.Submit(c.Context(), req)
		switch {
		case errors.Is(err, ErrNoLogs):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No logs provided"})
		case errors.Is(err, ErrStudentRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "student_id required"})
		case errors.Is(err, ErrZoneNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Class not found"})
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Get("/logs/:classID", func(c *fiber.Ctx) error {
		records, err := hist.History(c.Context(), c.Params("classID"), c.Query("student_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if records == nil {
			records = []ledger.Record{}
		}
		return c.JSON(records)
	})
}
