package handler

import (
	"github.com/gofiber/fiber/v2"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/domain/repository"
)

type LogHandler struct {
	logRepo repository.APILogRepository
}

func NewLogHandler(logRepo repository.APILogRepository) *LogHandler {
	return &LogHandler{logRepo: logRepo}
}

// GetLogs returns the most recent REST PKI calls
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	logs, err := h.logRepo.List(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse("INTERNAL_ERROR", err.Error()),
		)
	}

	return c.JSON(entity.NewSuccessResponse(logs, "Logs retrieved successfully"))
}
