package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devinventory/internal/errors"
	"devinventory/internal/model"
	"devinventory/internal/service"
)

// DeviceHandler handles device registry endpoints.
type DeviceHandler struct {
	deviceService service.DeviceService
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(deviceService service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// DeviceRequest represents a device create or update payload.
type DeviceRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	SerialNumber string `json:"serial_number"`
	Manufacturer string `json:"manufacturer"`
	Image        string `json:"image"`
}

// MessageResponse represents a plain confirmation response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListDevices godoc
// @Summary List all devices
// @Tags devices
// @Produce json
// @Success 200 {array} model.Device
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c echo.Context) error {
	devices, err := h.deviceService.ListDevices(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, devices)
}

// GetDevice godoc
// @Summary Get a device by id
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} model.Device
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid device ID",
			Code:  "INVALID_UUID",
		})
	}

	device, err := h.deviceService.GetDevice(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, device)
}

// CreateDevice godoc
// @Summary Register a new device
// @Tags devices
// @Accept json
// @Produce json
// @Param request body DeviceRequest true "Device data"
// @Success 201 {object} model.Device
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices [post]
func (h *DeviceHandler) CreateDevice(c echo.Context) error {
	var req DeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	device := &model.Device{
		Name:         req.Name,
		Description:  req.Description,
		SerialNumber: req.SerialNumber,
		Manufacturer: req.Manufacturer,
		Image:        req.Image,
	}

	created, err := h.deviceService.CreateDevice(c.Request().Context(), device)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateDevice godoc
// @Summary Update a device
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body DeviceRequest true "Device data"
// @Success 200 {object} model.Device
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices/{id} [put]
func (h *DeviceHandler) UpdateDevice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid device ID",
			Code:  "INVALID_UUID",
		})
	}

	var req DeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	updated, err := h.deviceService.UpdateDevice(c.Request().Context(), id, service.DeviceUpdate{
		Name:         req.Name,
		Description:  req.Description,
		SerialNumber: req.SerialNumber,
		Manufacturer: req.Manufacturer,
		Image:        req.Image,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteDevice godoc
// @Summary Delete a device
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices/{id} [delete]
func (h *DeviceHandler) DeleteDevice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid device ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.deviceService.DeleteDevice(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "device deleted"})
}

// UploadImage godoc
// @Summary Upload a device image
// @Tags devices
// @Accept mpfd
// @Produce json
// @Param id path string true "Device ID"
// @Param image formData file true "Image file"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices/{id}/image [post]
func (h *DeviceHandler) UploadImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid device ID",
			Code:  "INVALID_UUID",
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "image file is required",
			Code:  "IMAGE_REQUIRED",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable image upload",
			Code:  "INVALID_REQUEST",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable image upload",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := h.deviceService.AttachImage(c.Request().Context(), id, fileHeader.Filename, data); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "device image uploaded"})
}

// GetImage godoc
// @Summary Get a device image
// @Tags devices
// @Produce octet-stream
// @Param id path string true "Device ID"
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices/{id}/image [get]
func (h *DeviceHandler) GetImage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid device ID",
			Code:  "INVALID_UUID",
		})
	}

	data, err := h.deviceService.FetchImage(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.Blob(http.StatusOK, http.DetectContentType(data), data)
}
