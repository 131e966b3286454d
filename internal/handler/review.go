package handler // handler package contains review browsing and mutation handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cse-motors/dealership/internal/queue"
	"github.com/cse-motors/dealership/internal/repository"
	"github.com/cse-motors/dealership/internal/service"
	"github.com/cse-motors/dealership/internal/utils"
)

// ReviewHandler exposes the review endpoints.  All mutations resolve the
// acting account from the verified session claims; account ids in request
// bodies are never trusted for authorization.
type ReviewHandler struct {
	Svc       *service.ReviewService
	Inventory InventoryStore
	Log       *zap.Logger
}

func NewReviewHandler(svc *service.ReviewService, inventory InventoryStore, log *zap.Logger) *ReviewHandler {
	if svc == nil || inventory == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewHandler{Svc: svc, Inventory: inventory, Log: log}
}

// ----- DTOs -----

type reviewReq struct {
	InvID    uint64 `json:"inv_id" form:"inv_id"`
	ReviewID uint64 `json:"review_id" form:"review_id"`
	Text     string `json:"review_text" form:"review_text"`
	Rating   int    `json:"review_rating" form:"review_rating"`
}

func validateReviewBody(text string, rating int) []string {
	var errs []string
	n := len(strings.TrimSpace(text))
	if n < 10 || n > 1000 {
		errs = append(errs, "review text must be between 10 and 1000 characters")
	}
	if rating < 1 || rating > 5 {
		errs = append(errs, "rating must be between 1 and 5")
	}
	return errs
}

// ReviewsJSON handles GET /reviews/:inv_id and returns the reviews and
// aggregate rating of one vehicle.  A vehicle with no reviews yields an
// empty list and a zero rating, not an error.
func (h *ReviewHandler) ReviewsJSON(c echo.Context) error {
	invID, err := parseID(c.Param("inv_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reviews, rating, err := h.Svc.VehicleReviews(ctx, invID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":    reviews,
		"ratingData": rating,
	})
}

// AddView handles GET /reviews/add/:inv_id.  If the account already reviewed
// this vehicle the page switches to edit mode and is pre-filled with the
// existing review.
func (h *ReviewHandler) AddView(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	invID, err := parseID(c.Param("inv_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Inventory.GetByID(ctx, invID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		h.Log.Error("vehicle lookup failed", zap.Uint64("inv_id", invID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}

	resp := echo.Map{
		"title":   "Review the " + v.Make + " " + v.Model,
		"vehicle": v,
		"isEdit":  false,
		"notice":  utils.Notice(c),
	}
	if own, err := h.Svc.OwnReview(ctx, claims.AccountID, invID); err == nil {
		resp["isEdit"] = true
		resp["review"] = own
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		h.Log.Error("own review lookup failed", zap.Uint64("account_id", claims.AccountID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Add handles POST /reviews/add.  The acting account comes from the session
// claims, never from the body.
func (h *ReviewHandler) Add(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil || req.InvID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := validateReviewBody(req.Text, req.Rating); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs, "submitted": req})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Svc.Create(ctx, claims.AccountID, req.InvID, strings.TrimSpace(req.Text), req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReview):
			utils.SetNotice(c, "You have already left a review for this vehicle. You can edit it instead.")
			return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", req.InvID))
		case errors.Is(err, repository.ErrVehicleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		default:
			utils.SetNotice(c, "Sorry, the review could not be added.")
			return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", req.InvID))
		}
	}

	h.publishPosted(ctx, rv, claims.AccountID)

	utils.SetNotice(c, "Thank you! Your review has been added.")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", req.InvID))
}

// EditView handles GET /reviews/edit/:review_id and returns the review the
// account is about to edit.  Only the owner may load it.
func (h *ReviewHandler) EditView(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, err := parseID(c.Param("review_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Svc.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		h.Log.Error("review lookup failed", zap.Uint64("review_id", reviewID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	if rv.AccountID != claims.AccountID {
		utils.SetNotice(c, "You can only edit your own reviews.")
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", rv.InvID))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":  "Edit Your Review",
		"review": rv,
		"notice": utils.Notice(c),
	})
}

// Update handles POST /reviews/update.  Ownership is enforced in the service
// from the verified session id; no role bypasses it.
func (h *ReviewHandler) Update(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil || req.ReviewID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := validateReviewBody(req.Text, req.Rating); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs, "submitted": req})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Svc.Update(ctx, claims.AccountID, req.ReviewID, strings.TrimSpace(req.Text), req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrForbidden):
			utils.SetNotice(c, "You can only edit your own reviews.")
			return c.Redirect(http.StatusSeeOther, "/account/")
		case errors.Is(err, repository.ErrReviewNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		default:
			utils.SetNotice(c, "Sorry, the review update failed.")
			return c.Redirect(http.StatusSeeOther, "/account/")
		}
	}

	utils.SetNotice(c, "Your review has been updated.")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", rv.InvID))
}

// Delete handles POST /reviews/delete.
func (h *ReviewHandler) Delete(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil || req.ReviewID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invID, deleted, err := h.Svc.Delete(ctx, claims.AccountID, req.ReviewID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrForbidden):
			utils.SetNotice(c, "You can only delete your own reviews.")
			return c.Redirect(http.StatusSeeOther, "/account/")
		case errors.Is(err, repository.ErrReviewNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		default:
			utils.SetNotice(c, "Sorry, the review deletion failed.")
			return c.Redirect(http.StatusSeeOther, "/account/")
		}
	}
	if !deleted {
		utils.SetNotice(c, "Sorry, the review deletion failed.")
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", invID))
	}

	utils.SetNotice(c, "Your review has been deleted.")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/inv/detail/%d", invID))
}

// publishPosted emits a review.posted event for the background consumer.
// Publishing is best effort; a broker outage never fails the request.
func (h *ReviewHandler) publishPosted(ctx context.Context, rv *repository.Review, accountID uint64) {
	vehicle := ""
	if v, err := h.Inventory.GetByID(ctx, rv.InvID); err == nil {
		vehicle = v.Make + " " + v.Model
	}
	ev := queue.ReviewPostedEvent{
		ReviewID:  rv.ID,
		InvID:     rv.InvID,
		AccountID: accountID,
		Rating:    rv.Rating,
		Vehicle:   vehicle,
		PostedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue.PublishReviewPosted(ctx, ev); err != nil {
		h.Log.Warn("review event publish failed", zap.Uint64("review_id", rv.ID), zap.Error(err))
	}
}
