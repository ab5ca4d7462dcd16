package api

import (
	"net/http"

	"github.com/fadliRafidan/smart-lock-api/pkg/api/resource"
	"github.com/fadliRafidan/smart-lock-api/pkg/devicestate"
	"github.com/labstack/echo"
	"github.com/pkg/errors"
)

// errorJSON writes the response for the outcomes shared by all device routes
func errorJSON(c echo.Context, err error) error {
	switch devicestate.OutcomeOf(err) {
	case devicestate.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, &resource.ErrorResource{Error: "Device not found"})
	case devicestate.OutcomeConflict:
		conflict, _ := devicestate.IsConflict(err)
		return c.JSON(http.StatusConflict, resource.NewConflict(conflict))
	default:
		return c.JSON(http.StatusInternalServerError, resource.NewError(err))
	}
}

func (h *Handler) handleGetStatus(c echo.Context) error {
	m, err := h.coord.GetStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, resource.NewDevice(m))
}

func (h *Handler) handleUpdateStatus(c echo.Context) error {
	r := &resource.StatusUpdateResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, resource.NewError(err))
	}

	change, err := resource.ValidateStatusUpdate(c.Param("id"), r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, resource.NewError(err))
	}

	m, err := h.coord.UpdateStatus(c.Request().Context(), change)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, resource.NewStatusUpdated(m))
}

func (h *Handler) handleFetchDevices(c echo.Context) error {
	m, err := h.coord.ListDevices(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, resource.NewError(err))
	}

	return c.JSON(http.StatusOK, resource.NewDeviceList(m))
}

func (h *Handler) handleCreateDevice(c echo.Context) error {
	r := &resource.ProvisionDeviceResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, resource.NewError(err))
	}

	m, err := resource.ValidateDevice(r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, resource.NewError(err))
	}

	if err := h.coord.Provision(c.Request().Context(), m); err != nil {
		if errors.Is(err, devicestate.ErrAlreadyExists) {
			return c.JSON(http.StatusConflict, resource.NewError(err))
		}
		return c.JSON(http.StatusInternalServerError, resource.NewError(err))
	}

	return c.JSON(http.StatusCreated, resource.NewDevice(m))
}

func (h *Handler) handleFetchDeviceLogs(c echo.Context) error {
	m, err := h.coord.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, resource.NewAuditEntryList(m))
}
