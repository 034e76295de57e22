package scans

import (
	"errors"
	"net/http"

	"quickzone-pickup/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for scan reconciliation.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new scans handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) ScanOne(c echo.Context) error {
	missionID := c.Param("missionId")

	var req models.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	res, err := h.svc.ScanOne(c.Request().Context(), missionID, req.Code)
	if err != nil {
		return h.scanError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ScanBatch(c echo.Context) error {
	missionID := c.Param("missionId")

	var req models.ScanBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	res, err := h.svc.ScanBatch(c.Request().Context(), missionID, req.Codes)
	if err != nil {
		return h.scanError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) WarehouseScan(c echo.Context) error {
	agencyID := c.Param("agencyId")

	var req models.ScanBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	res, err := h.svc.WarehouseScan(c.Request().Context(), agencyID, req.Codes)
	if err != nil {
		return h.scanError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) scanError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Mission not found"})
	case errors.Is(err, models.ErrIllegalTransition):
		return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Mission is not open for scanning"})
	}
	c.Logger().Error("Handler.scan: ", err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to reconcile scan"})
}
