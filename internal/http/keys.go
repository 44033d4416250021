package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsegate/signal-service/internal/http/dto"
	issvc "github.com/pulsegate/signal-service/internal/service"
)

// SignalKeys — publish the authority's Ed25519 public keys for verifier enrollment
// @Summary     Authority public keys
// @Tags        keys
// @Produce     json
// @Success     200 {object} dto.SignerKeySet
// @Failure     500 {object} APIError
// @Router      /.well-known/signal-key [get]
func SignalKeys(svc *issvc.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		keys, err := svc.ListSignerKeys(c.Request().Context())
		if err != nil {
			return writeJSON(c, http.StatusInternalServerError, APIError{Code: "internal", Message: "db"})
		}
		return writeJSON(c, http.StatusOK, dto.FromSignerKeys(keys))
	}
}
