package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// TravelHandler handles HTTP requests for the travel registry.
type TravelHandler struct {
	service ports.TravelService
}

func NewTravelHandler(service ports.TravelService) *TravelHandler {
	return &TravelHandler{service: service}
}

type travelRequest struct {
	Origin          string    `json:"origin" validate:"required"`
	Destination     string    `json:"destination" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	Airport         string    `json:"airport" validate:"required"`
	Terminal        string    `json:"terminal" validate:"required"`
	Company         string    `json:"company" validate:"required"`
	BillingTime     string    `json:"billingTime" validate:"required,billingtime"`
	AvailableWeight float64   `json:"availableWeight" validate:"required,gt=0"`
}

func (r travelRequest) toInput() ports.TravelInput {
	return ports.TravelInput{
		Origin:          r.Origin,
		Destination:     r.Destination,
		Date:            r.Date,
		Airport:         r.Airport,
		Terminal:        r.Terminal,
		Company:         r.Company,
		BillingTime:     r.BillingTime,
		AvailableWeight: r.AvailableWeight,
	}
}

// Create handles POST /v1/travels.
//
// @Summary      Publish an upcoming travel
// @Tags         travels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      travelRequest  true  "Travel details"
// @Success      201   {object}  domain.Travel
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/travels [post]
func (h *TravelHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req travelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	travel, err := h.service.CreateTravel(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, travel)
}

// Get handles GET /v1/travels/:id.
//
// @Summary      Get a travel by id
// @Tags         travels
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Travel id"
// @Success      200  {object}  domain.Travel
// @Failure      404  {object}  map[string]string
// @Router       /v1/travels/{id} [get]
func (h *TravelHandler) Get(c echo.Context) error {
	travel, err := h.service.GetTravel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travel)
}

// ListUpcoming handles GET /v1/travels. Optional origin/destination query
// parameters narrow the listing to a route; both must be present together.
//
// @Summary      List bookable upcoming travels
// @Tags         travels
// @Produce      json
// @Security     BearerAuth
// @Param        origin       query     string  false  "Origin city"
// @Param        destination  query     string  false  "Destination city"
// @Success      200  {array}   domain.Travel
// @Failure      400  {object}  map[string]string
// @Router       /v1/travels [get]
func (h *TravelHandler) ListUpcoming(c echo.Context) error {
	var filter *ports.UpcomingFilter
	origin := c.QueryParam("origin")
	destination := c.QueryParam("destination")
	if origin != "" || destination != "" {
		filter = &ports.UpcomingFilter{Origin: origin, Destination: destination}
	}

	travels, err := h.service.ListUpcoming(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travels)
}

// ListMine handles GET /v1/travels/mine.
//
// @Summary      List the caller's travels
// @Tags         travels
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Travel
// @Router       /v1/travels/mine [get]
func (h *TravelHandler) ListMine(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	travels, err := h.service.ListByOwner(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travels)
}

// ListAll handles GET /v1/admin/travels.
//
// @Summary      List every travel (admin)
// @Tags         travels
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Travel
// @Router       /v1/admin/travels [get]
func (h *TravelHandler) ListAll(c echo.Context) error {
	travels, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, travels)
}

// Update handles PUT /v1/travels/:id.
//
// @Summary      Update an owned travel
// @Tags         travels
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string         true  "Travel id"
// @Param        body  body  travelRequest  true  "Travel details"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/travels/{id} [put]
func (h *TravelHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req travelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.UpdateTravel(c.Request().Context(), id, c.Param("id"), req.toInput()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Cancel handles POST /v1/travels/:id/cancel.
//
// @Summary      Cancel an owned travel
// @Tags         travels
// @Security     BearerAuth
// @Param        id  path  string  true  "Travel id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/travels/{id}/cancel [post]
func (h *TravelHandler) Cancel(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.CancelTravel(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/admin/travels/:id.
//
// @Summary      Hard-delete a travel (super-admin)
// @Tags         travels
// @Security     BearerAuth
// @Param        id  path  string  true  "Travel id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/travels/{id} [delete]
func (h *TravelHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTravel(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
