package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/entregas/delivery-marketplace/internal/core/ports"
)

// maxImageBytes caps a single uploaded image.
const maxImageBytes = 8 << 20

// PackageHandler handles HTTP requests for the package lifecycle.
type PackageHandler struct {
	service ports.PackageService
	audit   ports.AuditRepository
}

func NewPackageHandler(service ports.PackageService, audit ports.AuditRepository) *PackageHandler {
	return &PackageHandler{service: service, audit: audit}
}

// readImage extracts the uploaded image from the multipart form. Required
// toggles whether a missing file part is an error.
func readImage(c echo.Context, required bool) ([]byte, string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if !required {
			return nil, "", nil
		}
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fh.Size > maxImageBytes {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "image too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}
	if len(data) > maxImageBytes {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "image too large")
	}
	return data, fh.Filename, nil
}

func parseWeight(c echo.Context) (float64, error) {
	w, err := strconv.ParseFloat(c.FormValue("weight"), 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "weight must be a number")
	}
	return w, nil
}

// Create handles POST /v1/packages (multipart form).
//
// @Summary      Publish a package
// @Tags         packages
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image            formData  file    true   "Package photo"
// @Param        description      formData  string  true   "Description"
// @Param        weight           formData  number  true   "Weight in kg"
// @Param        receiverName     formData  string  true   "Receiver name"
// @Param        receiverSurname  formData  string  true   "Receiver surname"
// @Param        receiverCity     formData  string  true   "Receiver city"
// @Param        receiverStreet   formData  string  true   "Receiver street"
// @Param        receiverPhone    formData  string  true   "Receiver phone"
// @Param        traveler         formData  string  false  "Target traveler id (direct request)"
// @Success      201  {object}  domain.Package
// @Failure      400  {object}  map[string]string
// @Router       /v1/packages [post]
func (h *PackageHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	imageData, imageName, err := readImage(c, true)
	if err != nil {
		return err
	}
	weight, err := parseWeight(c)
	if err != nil {
		return err
	}

	pkg, err := h.service.CreatePackage(c.Request().Context(), id, ports.CreatePackageInput{
		Description:     c.FormValue("description"),
		Weight:          weight,
		ImageData:       imageData,
		ImageName:       imageName,
		ReceiverName:    c.FormValue("receiverName"),
		ReceiverSurname: c.FormValue("receiverSurname"),
		ReceiverCity:    c.FormValue("receiverCity"),
		ReceiverStreet:  c.FormValue("receiverStreet"),
		ReceiverPhone:   c.FormValue("receiverPhone"),
		Traveler:        c.FormValue("traveler"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pkg)
}

// Get handles GET /v1/packages/:id.
//
// @Summary      Get a package by id
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      404  {object}  map[string]string
// @Router       /v1/packages/{id} [get]
func (h *PackageHandler) Get(c echo.Context) error {
	pkg, err := h.service.GetPackage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// History handles GET /v1/packages/:id/history: the audit trail of a package.
//
// @Summary      Get the transition history of a package
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string  true  "Package id"
// @Success      200  {array}  domain.TransitionEvent
// @Router       /v1/packages/{id}/history [get]
func (h *PackageHandler) History(c echo.Context) error {
	events, err := h.audit.FindByPackage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// ListMine handles GET /v1/packages/mine.
//
// @Summary      List the caller's packages (cancelled excluded)
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Package
// @Router       /v1/packages/mine [get]
func (h *PackageHandler) ListMine(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkgs, err := h.service.ListByProprietor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// ListAll handles GET /v1/admin/packages.
//
// @Summary      List every package (admin)
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Package
// @Router       /v1/admin/packages [get]
func (h *PackageHandler) ListAll(c echo.Context) error {
	pkgs, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// Update handles PUT /v1/packages/:id (multipart form, image optional).
//
// @Summary      Edit an owned package (only while open)
// @Tags         packages
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        id  path  string  true  "Package id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/packages/{id} [put]
func (h *PackageHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	imageData, imageName, err := readImage(c, false)
	if err != nil {
		return err
	}
	weight, err := parseWeight(c)
	if err != nil {
		return err
	}

	err = h.service.UpdatePackage(c.Request().Context(), id, c.Param("id"), ports.UpdatePackageInput{
		Description:     c.FormValue("description"),
		Weight:          weight,
		ImageData:       imageData,
		ImageName:       imageName,
		ReceiverName:    c.FormValue("receiverName"),
		ReceiverSurname: c.FormValue("receiverSurname"),
		ReceiverCity:    c.FormValue("receiverCity"),
		ReceiverStreet:  c.FormValue("receiverStreet"),
		ReceiverPhone:   c.FormValue("receiverPhone"),
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Suggest handles POST /v1/packages/:id/suggest.
//
// @Summary      Offer to carry an open package
// @Tags         negotiation
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      422  {object}  map[string]string
// @Router       /v1/packages/{id}/suggest [post]
func (h *PackageHandler) Suggest(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.Suggest(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// ConfirmSuggestion handles POST /v1/packages/:id/confirm-suggestion.
//
// @Summary      Accept a traveler's offer
// @Tags         negotiation
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      422  {object}  map[string]string
// @Router       /v1/packages/{id}/confirm-suggestion [post]
func (h *PackageHandler) ConfirmSuggestion(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.ConfirmSuggestion(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// ConfirmRequest handles POST /v1/packages/:id/confirm-request.
//
// @Summary      Approve a direct traveler assignment
// @Tags         negotiation
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      422  {object}  map[string]string
// @Router       /v1/packages/{id}/confirm-request [post]
func (h *PackageHandler) ConfirmRequest(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.ConfirmRequest(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// RejectRequest handles POST /v1/packages/:id/reject-request.
//
// @Summary      Return a targeted package to the open pool
// @Tags         negotiation
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      422  {object}  map[string]string
// @Router       /v1/packages/{id}/reject-request [post]
func (h *PackageHandler) RejectRequest(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.RejectRequest(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// Cancel handles POST /v1/packages/:id/cancel.
//
// @Summary      Withdraw a package before shipping
// @Tags         packages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      422  {object}  map[string]string
// @Router       /v1/packages/{id}/cancel [post]
func (h *PackageHandler) Cancel(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.Cancel(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// MarkShipped handles POST /v1/dashboard/packages/:id/ship.
//
// @Summary      Mark a package picked up at the origin branch
// @Tags         pipeline
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/dashboard/packages/{id}/ship [post]
func (h *PackageHandler) MarkShipped(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.MarkShipped(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// MarkInTransit handles POST /v1/dashboard/packages/:id/transit.
//
// @Summary      Mark a package en route to the destination branch
// @Tags         pipeline
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/dashboard/packages/{id}/transit [post]
func (h *PackageHandler) MarkInTransit(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.MarkInTransit(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// MarkReceived handles POST /v1/dashboard/packages/:id/receive.
//
// @Summary      Mark a package arrived at the destination branch
// @Tags         pipeline
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/dashboard/packages/{id}/receive [post]
func (h *PackageHandler) MarkReceived(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.MarkReceived(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// MarkCompleted handles POST /v1/dashboard/packages/:id/complete.
//
// @Summary      Mark a package handed to its receiver
// @Tags         pipeline
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/dashboard/packages/{id}/complete [post]
func (h *PackageHandler) MarkCompleted(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	pkg, err := h.service.MarkCompleted(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// Delete handles DELETE /v1/admin/packages/:id.
//
// @Summary      Hard-delete a package (super-admin)
// @Tags         packages
// @Security     BearerAuth
// @Param        id  path  string  true  "Package id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/packages/{id} [delete]
func (h *PackageHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.DeletePackage(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
