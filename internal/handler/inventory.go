package handler // handler package contains catalog browsing and management handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cse-motors/dealership/internal/repository"
	"github.com/cse-motors/dealership/internal/service"
	"github.com/cse-motors/dealership/internal/utils"
)

// InventoryHandler bundles dependencies for public catalog browsing and the
// staff-only management endpoints.  Management routes are gated by role at
// the router; there is no per-record ownership for catalog data so the
// handlers themselves perform no owner checks.
type InventoryHandler struct {
	Classifications ClassificationStore
	Inventory       InventoryStore
	Reviews         *service.ReviewService
	Log             *zap.Logger
}

func NewInventoryHandler(classifications ClassificationStore, inventory InventoryStore, reviews *service.ReviewService, log *zap.Logger) *InventoryHandler {
	if classifications == nil || inventory == nil || reviews == nil {
		panic("nil dependency passed to NewInventoryHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryHandler{Classifications: classifications, Inventory: inventory, Reviews: reviews, Log: log}
}

// classificationNamePattern permits letters and digits only; no spaces or
// special characters.
var classificationNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Home handles GET / and returns the data behind the home page: the
// classification navigation and any flash notice.
func (h *InventoryHandler) Home(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classifications, err := h.Classifications.GetAll(ctx)
	if err != nil {
		h.Log.Error("classification list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	resp := echo.Map{
		"title":           "Home",
		"classifications": classifications,
		"notice":          utils.Notice(c),
	}
	if claims := currentSession(c); claims != nil {
		resp["account_firstname"] = claims.Firstname
	}
	return c.JSON(http.StatusOK, resp)
}

// ----- DTOs -----

type inventoryReq struct {
	InvID            uint64 `json:"inv_id" form:"inv_id"`
	Make             string `json:"inv_make" form:"inv_make"`
	Model            string `json:"inv_model" form:"inv_model"`
	Year             string `json:"inv_year" form:"inv_year"`
	Description      string `json:"inv_description" form:"inv_description"`
	Image            string `json:"inv_image" form:"inv_image"`
	Thumbnail        string `json:"inv_thumbnail" form:"inv_thumbnail"`
	Price            string `json:"inv_price" form:"inv_price"`
	Miles            string `json:"inv_miles" form:"inv_miles"`
	Color            string `json:"inv_color" form:"inv_color"`
	ClassificationID uint64 `json:"classification_id" form:"classification_id"`
}

// ByClassification handles GET /inv/type/:classificationId and returns the
// vehicles of one classification together with its display name.
func (h *InventoryHandler) ByClassification(c echo.Context) error {
	id, err := parseID(c.Param("classificationId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classification id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	name, err := h.Classifications.GetName(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClassificationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "classification not found"})
		}
		h.Log.Error("classification lookup failed", zap.Uint64("classification_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	vehicles, err := h.Inventory.ListByClassification(ctx, id)
	if err != nil {
		h.Log.Error("inventory list failed", zap.Uint64("classification_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":    name + " vehicles",
		"vehicles": vehicles,
	})
}

// Detail handles GET /inv/detail/:invId and returns one vehicle with its
// reviews and aggregate rating.
func (h *InventoryHandler) Detail(c echo.Context) error {
	id, err := parseID(c.Param("invId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Inventory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		h.Log.Error("vehicle lookup failed", zap.Uint64("inv_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}

	reviews, rating, err := h.Reviews.VehicleReviews(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}

	resp := echo.Map{
		"title":      v.Make + " " + v.Model,
		"vehicle":    v,
		"reviews":    reviews,
		"ratingData": rating,
		"notice":     utils.Notice(c),
	}
	if claims := currentSession(c); claims != nil {
		resp["account_id"] = claims.AccountID
	}
	return c.JSON(http.StatusOK, resp)
}

// InventoryJSON handles GET /inv/getInventory/:classification_id and returns
// the raw vehicle list for the management screen.  No matches yields an
// empty array, not an error.
func (h *InventoryHandler) InventoryJSON(c echo.Context) error {
	id, err := parseID(c.Param("classification_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classification id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Inventory.ListByClassification(ctx, id)
	if err != nil {
		h.Log.Error("inventory list failed", zap.Uint64("classification_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, vehicles)
}

// Management handles GET /inv/ and returns the data behind the staff
// management screen: the classification list for the dropdown.
func (h *InventoryHandler) Management(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classifications, err := h.Classifications.GetAll(ctx)
	if err != nil {
		h.Log.Error("classification list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":           "Inventory Management",
		"classifications": classifications,
		"notice":          utils.Notice(c),
	})
}

// AddClassificationView handles GET /inv/add-classification.
func (h *InventoryHandler) AddClassificationView(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"title": "Add New Classification", "notice": utils.Notice(c)})
}

// AddClassification handles POST /inv/add-classification.  Names must be
// alphanumeric with no spaces or special characters.
func (h *InventoryHandler) AddClassification(c echo.Context) error {
	var body struct {
		Name string `json:"classification_name" form:"classification_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(body.Name)
	if !classificationNamePattern.MatchString(name) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"errors":              []string{"classification name cannot contain spaces or special characters"},
			"classification_name": name,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cl := &repository.Classification{Name: name}
	if err := h.Classifications.Add(ctx, cl); err != nil {
		if errors.Is(err, repository.ErrClassificationExists) {
			utils.SetNotice(c, "That classification already exists.")
			return c.Redirect(http.StatusSeeOther, "/inv/add-classification")
		}
		h.Log.Error("classification insert failed", zap.Error(err))
		utils.SetNotice(c, "Sorry, the classification addition failed.")
		return c.Redirect(http.StatusSeeOther, "/inv/add-classification")
	}

	utils.SetNotice(c, "The "+name+" classification was successfully added.")
	return c.Redirect(http.StatusSeeOther, "/inv/")
}

// AddInventoryView handles GET /inv/add-inventory and includes the
// classification list for the form's dropdown.
func (h *InventoryHandler) AddInventoryView(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classifications, err := h.Classifications.GetAll(ctx)
	if err != nil {
		h.Log.Error("classification list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":           "Add New Inventory Item",
		"classifications": classifications,
		"notice":          utils.Notice(c),
	})
}

// AddInventory handles POST /inv/add-inventory.
func (h *InventoryHandler) AddInventory(c echo.Context) error {
	var req inventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	v, errs := h.vehicleFromRequest(c, &req)
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs, "submitted": req})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Inventory.Add(ctx, v); err != nil {
		h.Log.Error("inventory insert failed", zap.Error(err))
		utils.SetNotice(c, "Sorry, the inventory item addition failed.")
		return c.Redirect(http.StatusSeeOther, "/inv/add-inventory")
	}

	utils.SetNotice(c, "The "+v.Make+" "+v.Model+" was successfully added.")
	return c.Redirect(http.StatusSeeOther, "/inv/")
}

// EditView handles GET /inv/edit/:inv_id and returns the vehicle to edit
// plus the classification list.
func (h *InventoryHandler) EditView(c echo.Context) error {
	id, err := parseID(c.Param("inv_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Inventory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			utils.SetNotice(c, "Vehicle not found.")
			return c.Redirect(http.StatusSeeOther, "/inv/")
		}
		h.Log.Error("vehicle lookup failed", zap.Uint64("inv_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	classifications, err := h.Classifications.GetAll(ctx)
	if err != nil {
		h.Log.Error("classification list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":           "Edit " + v.Make + " " + v.Model,
		"vehicle":         v,
		"classifications": classifications,
	})
}

// UpdateInventory handles POST /inv/update.
func (h *InventoryHandler) UpdateInventory(c echo.Context) error {
	var req inventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.InvID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inv_id is required"})
	}
	v, errs := h.vehicleFromRequest(c, &req)
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs, "submitted": req})
	}
	v.ID = req.InvID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Inventory.Update(ctx, v); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			utils.SetNotice(c, "Vehicle not found.")
			return c.Redirect(http.StatusSeeOther, "/inv/")
		}
		h.Log.Error("inventory update failed", zap.Uint64("inv_id", v.ID), zap.Error(err))
		utils.SetNotice(c, "Sorry, the update failed.")
		return c.Redirect(http.StatusSeeOther, "/inv/")
	}

	utils.SetNotice(c, "The "+v.Make+" "+v.Model+" was successfully updated.")
	return c.Redirect(http.StatusSeeOther, "/inv/")
}

// DeleteView handles GET /inv/delete/:inv_id and returns the confirmation
// page data.
func (h *InventoryHandler) DeleteView(c echo.Context) error {
	id, err := parseID(c.Param("inv_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Inventory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			utils.SetNotice(c, "Vehicle not found.")
			return c.Redirect(http.StatusSeeOther, "/inv/")
		}
		h.Log.Error("vehicle lookup failed", zap.Uint64("inv_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":   "Delete " + v.Make + " " + v.Model,
		"vehicle": v,
	})
}

// DeleteInventory handles POST /inv/delete.  The notice distinguishes a
// successful delete from a no-op where nothing matched.
func (h *InventoryHandler) DeleteInventory(c echo.Context) error {
	var body struct {
		InvID uint64 `json:"inv_id" form:"inv_id"`
	}
	if err := c.Bind(&body); err != nil || body.InvID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inv_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Inventory.Delete(ctx, body.InvID)
	if err != nil {
		h.Log.Error("inventory delete failed", zap.Uint64("inv_id", body.InvID), zap.Error(err))
		utils.SetNotice(c, "Sorry, the deletion failed.")
		return c.Redirect(http.StatusSeeOther, "/inv/")
	}
	if !deleted {
		utils.SetNotice(c, "Sorry, the deletion failed.")
		return c.Redirect(http.StatusSeeOther, "/inv/")
	}

	utils.SetNotice(c, "The vehicle was successfully deleted.")
	return c.Redirect(http.StatusSeeOther, "/inv/")
}

// vehicleFromRequest validates the descriptive fields of an inventory form
// and converts them into a Vehicle.  Numeric fields arrive as strings the
// way HTML forms submit them; price must be non-negative and mileage a
// non-negative integer.
func (h *InventoryHandler) vehicleFromRequest(c echo.Context, req *inventoryReq) (*repository.Vehicle, []string) {
	var errs []string

	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	req.Year = strings.TrimSpace(req.Year)
	req.Color = strings.TrimSpace(req.Color)

	if req.Make == "" {
		errs = append(errs, "please provide a make")
	}
	if req.Model == "" {
		errs = append(errs, "please provide a model")
	}
	if len(req.Year) != 4 {
		errs = append(errs, "please provide a valid year (4 digits)")
	} else if _, err := strconv.Atoi(req.Year); err != nil {
		errs = append(errs, "year must be numeric")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, "please provide a description")
	}
	if strings.TrimSpace(req.Image) == "" {
		errs = append(errs, "please provide an image path")
	}
	if strings.TrimSpace(req.Thumbnail) == "" {
		errs = append(errs, "please provide a thumbnail path")
	}
	if req.Color == "" {
		errs = append(errs, "please provide a color")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(req.Price), 64)
	if err != nil || price < 0 {
		errs = append(errs, "price must be a non-negative number")
	}
	miles, err := strconv.ParseUint(strings.TrimSpace(req.Miles), 10, 64)
	if err != nil {
		errs = append(errs, "mileage must be a non-negative integer")
	}

	if req.ClassificationID == 0 {
		errs = append(errs, "please choose a classification")
	} else {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if _, err := h.Classifications.GetName(ctx, req.ClassificationID); err != nil {
			errs = append(errs, "please choose a valid classification")
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &repository.Vehicle{
		Make:             req.Make,
		Model:            req.Model,
		Year:             req.Year,
		Description:      strings.TrimSpace(req.Description),
		Image:            strings.TrimSpace(req.Image),
		Thumbnail:        strings.TrimSpace(req.Thumbnail),
		Price:            price,
		Miles:            miles,
		Color:            req.Color,
		ClassificationID: req.ClassificationID,
	}, nil
}
