package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// DashboardHandler exposes the staff read projections.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type dashboardItem struct {
	Package    *domain.Package     `json:"package"`
	Proprietor *domain.UserSummary `json:"proprietor,omitempty"`
	Traveler   *domain.UserSummary `json:"traveler,omitempty"`
}

func toDashboardItems(in []*ports.PackageWithParty) []dashboardItem {
	out := make([]dashboardItem, len(in))
	for i, p := range in {
		out[i] = dashboardItem{Package: p.Package, Proprietor: p.Proprietor, Traveler: p.Traveler}
	}
	return out
}

// Approved handles GET /v1/dashboard/approved.
//
// @Summary      List approved packages awaiting pickup
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dashboardItem
// @Router       /v1/dashboard/approved [get]
func (h *DashboardHandler) Approved(c echo.Context) error {
	items, err := h.service.ListApproved(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardItems(items))
}

// Shipped handles GET /v1/dashboard/shipped.
//
// @Summary      List packages picked up at origin
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dashboardItem
// @Router       /v1/dashboard/shipped [get]
func (h *DashboardHandler) Shipped(c echo.Context) error {
	items, err := h.service.ListShipped(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardItems(items))
}

// InTransit handles GET /v1/dashboard/in-transit.
//
// @Summary      List packages en route to the destination branch
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dashboardItem
// @Router       /v1/dashboard/in-transit [get]
func (h *DashboardHandler) InTransit(c echo.Context) error {
	items, err := h.service.ListInTransit(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardItems(items))
}

// Completed handles GET /v1/dashboard/completed.
//
// @Summary      List delivered packages
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dashboardItem
// @Router       /v1/dashboard/completed [get]
func (h *DashboardHandler) Completed(c echo.Context) error {
	items, err := h.service.ListCompleted(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardItems(items))
}
