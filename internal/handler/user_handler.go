package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devinventory/internal/errors"
	"devinventory/internal/service"
)

// UserHandler handles user registration and checkout endpoints.
type UserHandler struct {
	userService     service.UserService
	checkoutService service.CheckoutService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, checkoutService service.CheckoutService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		checkoutService: checkoutService,
	}
}

// RegisterRequest represents a user registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public projection of a user. It never carries the
// credential hash.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RegisterResponse represents a successful registration.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
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

	user, err := h.userService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "user registered",
		User: UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	})
}

// TakeDevice godoc
// @Summary Take a device into use
// @Tags checkout
// @Produce json
// @Param id path string true "Device ID"
// @Param user-id header string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /devices/{id}/take [post]
func (h *UserHandler) TakeDevice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid device ID",
			Code:  "INVALID_UUID",
		})
	}

	userID := c.Request().Header.Get("user-id")
	if err := h.checkoutService.TakeDevice(c.Request().Context(), id, userID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "device taken"})
}

// DevicesInUse godoc
// @Summary List devices held by a user
// @Tags checkout
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} model.Device
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{userId}/devices [get]
func (h *UserHandler) DevicesInUse(c echo.Context) error {
	devices, err := h.checkoutService.DevicesHeldBy(c.Request().Context(), c.Param("userId"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, devices)
}
