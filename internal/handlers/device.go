package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ltiit/asterisk-api/internal/config"
	"github.com/ltiit/asterisk-api/internal/services"
	"github.com/ltiit/asterisk-api/pkg/logger"
	"github.com/ltiit/asterisk-api/pkg/response"
	"gorm.io/gorm"
)

type DeviceHandler struct {
	devices *services.DeviceService
	timeout time.Duration
}

func NewDeviceHandler(db *gorm.DB, cfg *config.Config) *DeviceHandler {
	return &DeviceHandler{
		devices: services.NewDeviceService(db, cfg.Asterisk.Filename),
		timeout: cfg.Server.RequestTimeout(),
	}
}

// requestCtx bounds every database round trip of one request.
func (h *DeviceHandler) requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// List returns every device category with its cat_metric.
func (h *DeviceHandler) List(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	cats, err := h.devices.ListCategories(ctx)
	if err != nil {
		h.storageError(c, "list devices", err)
		return
	}
	response.Success(c, cats)
}

// GetByCatMetric returns the variable rows of one device section.
func (h *DeviceHandler) GetByCatMetric(c *gin.Context) {
	catMetric, err := strconv.Atoi(c.Param("cat_metric"))
	if err != nil {
		response.BadRequest(c, "cat_metric must be an integer")
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	vars, err := h.devices.GetByCatMetric(ctx, catMetric)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			response.NotFound(c, fmt.Sprintf("It doesn't look like %d exists...", catMetric))
			return
		}
		h.storageError(c, "get device", err)
		return
	}
	response.Success(c, vars)
}

// Create inserts a new device section from the posted fields.
func (h *DeviceHandler) Create(c *gin.Context) {
	fields := services.NewFields()
	if err := c.ShouldBindJSON(fields); err != nil {
		response.BadRequest(c, "body must be a JSON object of string fields")
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.devices.CreateCategory(ctx, fields)
	if err != nil {
		var missing *services.MissingFieldError
		switch {
		case errors.As(err, &missing):
			response.UnprocessableEntity(c, missing.Error())
		case errors.Is(err, services.ErrCategoryExists):
			category, _ := fields.Get("category")
			response.Message(c, fmt.Sprintf("Sorry, %s already exists...", category))
		default:
			h.storageError(c, "create device", err)
		}
		return
	}
	response.Success(c, result)
}

// Merge upserts the posted fields into an existing device section.
func (h *DeviceHandler) Merge(c *gin.Context) {
	fields := services.NewFields()
	if err := c.ShouldBindJSON(fields); err != nil {
		response.BadRequest(c, "body must be a JSON object of string fields")
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	result, err := h.devices.MergeCategory(ctx, fields)
	if err != nil {
		var missing *services.MissingFieldError
		switch {
		case errors.As(err, &missing):
			response.UnprocessableEntity(c, missing.Error())
		case errors.Is(err, services.ErrCategoryNotFound):
			category, _ := fields.Get("category")
			response.Message(c, fmt.Sprintf("It doesn't look like %s exists...", category))
		default:
			h.storageError(c, "update device", err)
		}
		return
	}
	response.Success(c, result)
}

type deleteDeviceRequest struct {
	Category string `json:"category"`
}

// Delete removes every row of the named device section.
func (h *DeviceHandler) Delete(c *gin.Context) {
	var req deleteDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "body must be a JSON object")
		return
	}
	if req.Category == "" {
		response.UnprocessableEntity(c, `missing required field "category" (device name)`)
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	removed, err := h.devices.DeleteCategory(ctx, req.Category)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			response.Message(c, fmt.Sprintf("It doesn't look like %s exists...", req.Category))
			return
		}
		h.storageError(c, "delete device", err)
		return
	}
	response.Success(c, gin.H{"category": req.Category, "removed": removed})
}

// storageError logs the underlying failure and answers with a 500 so a
// broken database never crashes or hangs a request.
func (h *DeviceHandler) storageError(c *gin.Context, op string, err error) {
	logger.Error().Err(err).Str("op", op).Msg("storage failure")
	response.ServerError(c, "storage failure, try again later")
}
