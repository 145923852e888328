package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/repository"
)

// UserHandler exposes the account list to admins.  Responses are built
// from userPart, which has no field for the password digest.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(r *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: r}
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return serverError(err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return userErrors.storeError(err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
