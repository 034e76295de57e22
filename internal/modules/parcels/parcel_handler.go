package parcels

import (
	"errors"
	"net/http"

	"quickzone-pickup/internal/models"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for parcels.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new parcels handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListPickupCandidates(c echo.Context) error {
	driverID := c.QueryParam("driver_id")
	if driverID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "driver_id is required"})
	}

	candidates, err := h.svc.ListPickupCandidates(c.Request().Context(), driverID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Driver not found"})
		}
		c.Logger().Error("Handler.ListPickupCandidates: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list pickup candidates"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"candidates": candidates, "total": len(candidates)})
}

func (h *Handler) GetParcel(c echo.Context) error {
	parcelID := c.Param("parcelId")

	parcel, err := h.svc.GetParcel(c.Request().Context(), parcelID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Parcel not found"})
		}
		c.Logger().Error("Handler.GetParcel: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve parcel"})
	}
	return c.JSON(http.StatusOK, parcel)
}

func (h *Handler) ReleaseHeldParcel(c echo.Context) error {
	parcelID := c.Param("parcelId")

	if err := h.svc.ReleaseHeldParcel(c.Request().Context(), parcelID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Parcel is not awaiting reassignment"})
		}
		c.Logger().Error("Handler.ReleaseHeldParcel: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to release parcel"})
	}
	return c.NoContent(http.StatusNoContent)
}
