package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pulsegate/signal-service/internal/http/dto"
	issvc "github.com/pulsegate/signal-service/internal/service"
)

// EnrollTarget — enroll a repository for enforcement
// @Summary     Enroll a gate target
// @Tags        targets
// @Accept      json
// @Produce     json
// @Param       request body dto.EnrollTargetRequest true "Enroll target"
// @Success     201 {object} dto.TargetResponse
// @Failure     400 {object} APIError
// @Router      /targets [post]
func EnrollTarget(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.EnrollTargetRequest
		if err := c.Bind(&req); err != nil {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "malformed"})
		}
		if err := req.Validate(); err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		t, err := svc.EnrollTarget(c.Request().Context(), req.ToCommand())
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusCreated, dto.FromTarget(t))
	}
}

// GetTarget — target projection by id
// @Summary     Get a gate target
// @Tags        targets
// @Produce     json
// @Param       id  path string true "Target ID"
// @Success     200 {object} dto.TargetResponse
// @Failure     404 {object} APIError
// @Router      /targets/{id} [get]
func GetTarget(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "id"})
		}
		t, err := svc.GetTarget(c.Request().Context(), id)
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusOK, dto.FromTarget(t))
	}
}

// DeactivateTarget — remove a repository from enforcement (row is kept)
// @Summary     Deactivate a gate target
// @Tags        targets
// @Produce     json
// @Param       id  path string true "Target ID"
// @Success     200 {object} dto.TargetResponse
// @Failure     404 {object} APIError
// @Failure     409 {object} APIError
// @Router      /targets/{id}/deactivate [post]
func DeactivateTarget(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "id"})
		}
		if err := svc.DeactivateTarget(c.Request().Context(), id); err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		t, err := svc.GetTarget(c.Request().Context(), id)
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusOK, dto.FromTarget(t))
	}
}
