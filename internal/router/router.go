package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"devinventory/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	deviceHandler *handler.DeviceHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	// Caps every request body, most importantly multipart image uploads,
	// which are buffered in memory by the upload handler.
	e.Use(middleware.BodyLimit("8M"))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Device registry
	e.GET("/devices", deviceHandler.ListDevices)
	e.POST("/devices", deviceHandler.CreateDevice)
	e.GET("/devices/:id", deviceHandler.GetDevice)
	e.PUT("/devices/:id", deviceHandler.UpdateDevice)
	e.DELETE("/devices/:id", deviceHandler.DeleteDevice)
	e.POST("/devices/:id/image", deviceHandler.UploadImage)
	e.GET("/devices/:id/image", deviceHandler.GetImage)

	// Users and checkout
	e.POST("/register", userHandler.Register)
	e.POST("/devices/:id/take", userHandler.TakeDevice)
	e.GET("/users/:userId/devices", userHandler.DevicesInUse)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
