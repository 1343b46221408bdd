package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/api/metrics"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// MatchingHandler exposes the compatible-package and pending-negotiation views.
type MatchingHandler struct {
	service ports.MatchingService
}

func NewMatchingHandler(service ports.MatchingService) *MatchingHandler {
	return &MatchingHandler{service: service}
}

// Matches handles GET /v1/matching/packages: open packages bound for the
// destination of the caller's current trip.
//
// @Summary      List packages compatible with the caller's trip
// @Tags         matching
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Package
// @Failure      422  {object}  map[string]string
// @Router       /v1/matching/packages [get]
func (h *MatchingHandler) Matches(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	metrics.MatchQueriesTotal.Inc()
	pkgs, err := h.service.FindMatchesForTraveler(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// Accepted handles GET /v1/matching/accepted: the caller's approved packages.
//
// @Summary      List the caller's approved packages
// @Tags         matching
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Package
// @Router       /v1/matching/accepted [get]
func (h *MatchingHandler) Accepted(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkgs, err := h.service.FindAcceptedForProprietor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// Suggested handles GET /v1/matching/suggested: the caller's packages with a
// pending traveler offer.
//
// @Summary      List the caller's packages awaiting offer confirmation
// @Tags         matching
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Package
// @Router       /v1/matching/suggested [get]
func (h *MatchingHandler) Suggested(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkgs, err := h.service.FindSuggestedForProprietor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// Requests handles GET /v1/matching/requests: packages assigned directly to
// the caller that are still awaiting approval.
//
// @Summary      List direct requests targeting the caller
// @Tags         matching
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Package
// @Router       /v1/matching/requests [get]
func (h *MatchingHandler) Requests(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkgs, err := h.service.FindRequestsForTraveler(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}
