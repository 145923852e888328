package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/repository"
)

// FeedbackHandler serves /api/feedback.  Non-admin callers only ever see
// feedback they submitted themselves.
type FeedbackHandler struct {
	Feedback *repository.FeedbackRepo
}

func NewFeedbackHandler(r *repository.FeedbackRepo) *FeedbackHandler {
	return &FeedbackHandler{Feedback: r}
}

type feedbackReq struct {
	CustomerID uint64 `json:"customer_id" validate:"required"`
	VehicleID  uint64 `json:"vehicle_id" validate:"required"`
	Rating     int    `json:"rating" validate:"gte=1,lte=5"`
	Comments   string `json:"comments" validate:"max=2000"`
}

// scope derives the visible rows from the caller's identity.
func scope(c echo.Context) (repository.FeedbackScope, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return repository.FeedbackScope{}, echo.ErrUnauthorized
	}
	return repository.FeedbackScope{UserID: id.UserID, All: id.Role == model.RoleAdmin}, nil
}

func (h *FeedbackHandler) List(c echo.Context) error {
	sc, err := scope(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Feedback.List(ctx, sc)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get answers 404 for rows outside the caller's scope.
func (h *FeedbackHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sc, err := scope(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f, err := h.Feedback.Get(ctx, id, sc)
	if err != nil {
		return feedbackErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FeedbackHandler) Create(c echo.Context) error {
	var req feedbackReq
	if err := bind(c, &req); err != nil {
		return err
	}
	sc, err := scope(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f := model.Feedback{
		CustomerID:  req.CustomerID,
		VehicleID:   req.VehicleID,
		SubmittedBy: sc.UserID,
		Rating:      req.Rating,
		Comments:    strings.TrimSpace(req.Comments),
	}
	if err := h.Feedback.Create(ctx, &f); err != nil {
		return feedbackErrors.storeError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FeedbackHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req feedbackReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	f := model.Feedback{
		ID:         id,
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		Rating:     req.Rating,
		Comments:   strings.TrimSpace(req.Comments),
	}
	if err := h.Feedback.Update(ctx, &f); err != nil {
		return feedbackErrors.storeError(err)
	}
	// reload so the response carries the preserved submitter and date
	out, err := h.Feedback.Get(ctx, id, repository.FeedbackScope{All: true})
	if err != nil {
		return feedbackErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Feedback.Delete(ctx, id); err != nil {
		return feedbackErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, deleted("Feedback", id))
}
