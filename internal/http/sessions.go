package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulsegate/signal-service/internal/http/dto"
	issvc "github.com/pulsegate/signal-service/internal/service"
)

// StartSession — open a monitoring session
// @Summary     Start a monitoring session
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       request body dto.StartSessionRequest true "Start session"
// @Success     201 {object} dto.SessionResponse
// @Failure     400 {object} APIError
// @Router      /sessions [post]
func StartSession(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.StartSessionRequest
		if err := c.Bind(&req); err != nil {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "malformed"})
		}
		if err := req.Validate(); err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		s, err := svc.StartSession(c.Request().Context(), req.SubjectKey, req.Threshold)
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusCreated, dto.FromSession(s))
	}
}

// IngestReading — record a biometric sample; triggers debounced issuance
// @Summary     Ingest a reading
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       id      path string true "Session ID"
// @Param       request body dto.IngestReadingRequest true "Reading"
// @Success     200 {object} dto.IngestReadingResponse
// @Failure     400 {object} APIError
// @Failure     409 {object} APIError
// @Router      /sessions/{id}/readings [post]
func IngestReading(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "id"})
		}
		var req dto.IngestReadingRequest
		if err := c.Bind(&req); err != nil {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "malformed"})
		}
		if err := req.Validate(); err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		recordedAt := time.Time{}
		if req.RecordedAt != nil {
			recordedAt = *req.RecordedAt
		}
		res, err := svc.IngestReading(c.Request().Context(), id, req.Value, recordedAt)
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusOK, dto.FromIngestResult(res))
	}
}

// CloseSession — end monitoring; publishes a final deny payload
// @Summary     Close a monitoring session
// @Tags        sessions
// @Produce     json
// @Param       id  path string true "Session ID"
// @Success     200 {object} dto.SessionResponse
// @Failure     404 {object} APIError
// @Failure     409 {object} APIError
// @Router      /sessions/{id}/close [post]
func CloseSession(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "id"})
		}
		s, err := svc.CloseSession(c.Request().Context(), id)
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusOK, dto.FromSession(s))
	}
}

// GetIndicator — hysteresis state of the client-side locked/unlocked indicator
// @Summary     Session indicator state
// @Tags        sessions
// @Produce     json
// @Param       id  path string true "Session ID"
// @Success     200 {object} dto.IndicatorResponse
// @Failure     404 {object} APIError
// @Router      /sessions/{id}/indicator [get]
func GetIndicator(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return writeJSON(c, http.StatusBadRequest, APIError{Code: "invalid_request", Message: "id"})
		}
		s, err := svc.GetSession(c.Request().Context(), id)
		if err != nil {
			status, body := MapError(err)
			return writeJSON(c, status, body)
		}
		return writeJSON(c, http.StatusOK, dto.IndicatorResponse{State: string(s.IndicatorState)})
	}
}
