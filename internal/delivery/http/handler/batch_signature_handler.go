package handler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/usecase"
	"restpki-batch/pkg/apierrors"
)

type BatchSignatureHandler struct {
	usecase usecase.BatchSignatureUsecase
	logger  *zap.Logger
}

func NewBatchSignatureHandler(usecase usecase.BatchSignatureUsecase, logger *zap.Logger) *BatchSignatureHandler {
	return &BatchSignatureHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// batchSignatureRequest is the optional body of start and complete; query
// parameters take precedence.
type batchSignatureRequest struct {
	ID     flexString `json:"id" form:"id"`
	Preset flexString `json:"preset" form:"preset"`
	Token  string     `json:"token" form:"token"`
}

// flexString accepts both "07" and 7 in JSON bodies
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

func (h *BatchSignatureHandler) parseRequest(c *fiber.Ctx) (batchSignatureRequest, error) {
	var req batchSignatureRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, apierrors.Wrap(apierrors.CodeInvalidArgument, "Invalid request body", err)
		}
	}
	if v := c.Query("id"); v != "" {
		req.ID = flexString(v)
	}
	if v := c.Query("preset"); v != "" {
		req.Preset = flexString(v)
	}
	if v := c.Query("token"); v != "" {
		req.Token = v
	}
	return req, nil
}

// ListDocuments godoc
// @Summary List batch documents
// @Description Get the ids of the documents the batch signature page will sign
// @Tags batch-signature
// @Produce json
// @Success 200 {array} string
// @Router /batch-signature [get]
func (h *BatchSignatureHandler) ListDocuments(c *fiber.Ctx) error {
	return c.JSON(h.usecase.ListDocuments())
}

// Start godoc
// @Summary Start a signature
// @Description Upload document NN to REST PKI and return the signature process token
// @Tags batch-signature
// @Produce json
// @Param id query string true "Document id"
// @Param preset query int false "Visual position preset 1..6"
// @Success 200 {string} string
// @Failure 400 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Failure 422 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /batch-signature/start [post]
func (h *BatchSignatureHandler) Start(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	if strings.TrimSpace(string(req.ID)) == "" {
		return h.fail(c, apierrors.New(apierrors.CodeInvalidArgument, "Document id is required"))
	}

	preset := 0
	if req.Preset != "" {
		p, err := strconv.Atoi(string(req.Preset))
		if err != nil {
			return h.fail(c, apierrors.Wrap(apierrors.CodeInvalidArgument, "Preset must be a number", err))
		}
		// 0 would silently select the configured preset
		if p == 0 {
			return h.fail(c, usecase.ErrUnknownPreset)
		}
		preset = p
	}

	result, err := h.usecase.Start(c.UserContext(), string(req.ID), preset)
	if err != nil {
		return h.fail(c, err)
	}

	setNoCache(c)
	return c.JSON(result.Token)
}

// Complete godoc
// @Summary Complete a signature
// @Description Finalize the signature identified by token and return the signed file name
// @Tags batch-signature
// @Produce json
// @Param token query string true "Signature process token"
// @Success 200 {string} string
// @Failure 400 {object} entity.APIResponse
// @Failure 410 {object} entity.APIResponse
// @Failure 422 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /batch-signature/complete [post]
func (h *BatchSignatureHandler) Complete(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	if req.Token == "" {
		return h.fail(c, apierrors.New(apierrors.CodeInvalidArgument, "Token is required"))
	}

	result, err := h.usecase.Complete(c.UserContext(), req.Token)
	if err != nil {
		return h.fail(c, err)
	}

	setNoCache(c)
	return c.JSON(result.Filename)
}

func (h *BatchSignatureHandler) fail(c *fiber.Ctx, err error) error {
	code := apierrors.CodeOf(err)

	h.logger.Warn("Batch signature request failed",
		zap.String("path", c.Path()),
		zap.String("code", string(code)),
		zap.Error(err),
	)

	requestID, _ := c.Locals("requestid").(string)
	return c.Status(apierrors.HTTPStatus(code)).JSON(
		entity.NewErrorResponse(string(code), err.Error()).WithRequestID(requestID),
	)
}

// Tokens must never be served from a cache
func setNoCache(c *fiber.Ctx) {
	c.Set(fiber.HeaderCacheControl, "private, no-store, max-age=0, no-cache, must-revalidate")
	c.Set("Pragma", "no-cache")
}
