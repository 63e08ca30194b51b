package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/infrastructure/redis"
	"restpki-batch/pkg/version"
)

type HealthHandler struct {
	redisClient *redis.RedisClient
}

func NewHealthHandler(redisClient *redis.RedisClient) *HealthHandler {
	return &HealthHandler{redisClient: redisClient}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Redis     string    `json:"redis"`
}

// Health godoc
// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 503 {object} entity.APIResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version.Version,
		Redis:     "disabled",
	}

	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.redisClient.Ping(ctx); err != nil {
			response.Status = "degraded"
			response.Redis = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(&entity.APIResponse{
				Success: false,
				Message: "Token ledger unreachable",
				Data:    response,
			})
		}
		response.Redis = "ok"
	}

	return c.JSON(entity.NewSuccessResponse(response, "Service is healthy"))
}
