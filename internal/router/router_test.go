package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"devinventory/internal/handler"
)

func TestRegister_Healthz(t *testing.T) {
	e := echo.New()
	Register(e, handler.NewDeviceHandler(nil), handler.NewUserHandler(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_BodyLimit(t *testing.T) {
	e := echo.New()
	Register(e, handler.NewDeviceHandler(nil), handler.NewUserHandler(nil, nil))

	// 9 MiB body, above the 8M cap; rejected before any handler runs
	body := bytes.Repeat([]byte("a"), 9<<20)
	req := httptest.NewRequest(http.MethodPost, "/devices/"+"00000000-0000-0000-0000-000000000000"+"/image", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEMultipartForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
