package missions

import (
	"errors"
	"net/http"
	"strconv"

	"quickzone-pickup/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for pickup missions.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new missions handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) CreateMissions(c echo.Context) error {
	userID, _ := c.Get("userID").(string)

	var req models.CreateMissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	results, err := h.svc.CreateMissions(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Driver, shipper or parcel not found"})
		}
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrParcelNotEligible) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
		}
		c.Logger().Error("Handler.CreateMissions: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create missions"})
	}

	// 201 when every shipper group produced a mission, 207 as soon as
	// any group failed: the caller always learns the per-group outcome.
	status := http.StatusCreated
	for _, res := range results {
		if res.Error != "" {
			status = http.StatusMultiStatus
			break
		}
	}
	return c.JSON(status, map[string]interface{}{"results": results})
}

func (h *Handler) ListMissions(c echo.Context) error {
	page := 1
	limit := 20
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	filter := models.MissionListFilter{DriverID: c.QueryParam("driver_id")}
	if statusStr := c.QueryParam("status"); statusStr != "" {
		if !models.ValidMissionStatus(statusStr) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Unknown mission status"})
		}
		filter.Status = models.MissionStatus(statusStr)
	}

	missions, total, err := h.svc.ListMissions(c.Request().Context(), filter, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListMissions: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list missions"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"missions": missions, "total": total})
}

func (h *Handler) GetMission(c echo.Context) error {
	missionID := c.Param("missionId")

	mission, err := h.svc.GetMission(c.Request().Context(), missionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Mission not found"})
		}
		c.Logger().Error("Handler.GetMission: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve mission"})
	}
	return c.JSON(http.StatusOK, mission)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	missionID := c.Param("missionId")

	var req models.UpdateMissionStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	mission, err := h.svc.UpdateStatus(c.Request().Context(), missionID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Mission not found"})
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
		case errors.Is(err, models.ErrIllegalTransition):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Transition not allowed from the current status"})
		case errors.Is(err, models.ErrParcelsUnscanned):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Not all expected parcels have been scanned"})
		case errors.Is(err, models.ErrCodeMismatch):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Completion code does not match"})
		case errors.Is(err, models.ErrConflict):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Mission was updated concurrently, reload and retry"})
		}
		c.Logger().Error("Handler.UpdateStatus: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update mission status"})
	}
	return c.JSON(http.StatusOK, mission)
}

func (h *Handler) GetSecurityCode(c echo.Context) error {
	missionID := c.Param("missionId")

	code, err := h.svc.SecurityCode(c.Request().Context(), missionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Mission not found"})
		}
		c.Logger().Error("Handler.GetSecurityCode: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to issue security code"})
	}
	return c.JSON(http.StatusOK, models.MissionCodeResponse{MissionID: missionID, Code: code})
}

func (h *Handler) GetCompletionCode(c echo.Context) error {
	missionID := c.Param("missionId")

	code, err := h.svc.CompletionCode(c.Request().Context(), missionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Mission not found"})
		}
		if errors.Is(err, models.ErrParcelsUnscanned) {
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Not all expected parcels have been scanned"})
		}
		c.Logger().Error("Handler.GetCompletionCode: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to issue completion code"})
	}
	return c.JSON(http.StatusOK, models.MissionCodeResponse{MissionID: missionID, Code: code})
}

func (h *Handler) DeleteMission(c echo.Context) error {
	missionID := c.Param("missionId")

	if err := h.svc.DeleteMission(c.Request().Context(), missionID); err != nil {
		c.Logger().Error("Handler.DeleteMission: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to delete mission"})
	}
	return c.NoContent(http.StatusNoContent)
}
