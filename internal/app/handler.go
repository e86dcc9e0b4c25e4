package app

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stolasapp/kangaroo/internal/sec"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

// Client-facing login messages. Internal failures never leak their cause.
const (
	msgMissingCredentials = "Missing email or password"
	msgInvalidCredentials = "Invalid credentials"
	msgInternal           = "Internal error"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

type handler struct {
	auth     Authenticator
	programs ProgramLister
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", h.index)

	api := e.Group("/api")
	api.GET("/ping", h.ping)
	api.GET("/health", h.health)
	api.POST("/login", h.login)
	api.POST("/logout", h.logout)
	api.GET("/programs", h.listPrograms)
}

func (h handler) index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/login.html")
}

func (h handler) ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

func (h handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{OK: true})
}

func (h handler) login(c echo.Context) error {
	// decoded regardless of Content-Type; the bundled pages post bare JSON
	var req loginRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{Message: msgMissingCredentials})
	}

	id, err := h.auth.Login(c.Request().Context(), req.Email, sec.Password(req.Password))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, loginResponse{Success: true, Email: string(id)})
	case errors.Is(err, sec.ErrMissingCredentials):
		return c.JSON(http.StatusBadRequest, loginResponse{Message: msgMissingCredentials})
	case errors.Is(err, sec.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, loginResponse{Message: msgInvalidCredentials})
	default:
		return c.JSON(http.StatusInternalServerError, loginResponse{Message: msgInternal})
	}
}

// logout is a no-op: no session is ever issued.
func (h handler) logout(c echo.Context) error {
	return c.JSON(http.StatusOK, loginResponse{Success: true})
}

func (h handler) listPrograms(c echo.Context) error {
	programs := h.programs.ListPrograms(c.Request().Context())
	if programs == nil {
		programs = []db.Program{}
	}
	return c.JSON(http.StatusOK, programs)
}
