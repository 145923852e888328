package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/model"
	"github.com/iliyamo/garage-api/internal/repository"
	"github.com/iliyamo/garage-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *utils.TokenService
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *utils.TokenService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // user | admin, default user
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64     `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Role: u.Role}
}

type loginResp struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userPart  `json:"user"`
}

var errInvalidCredentials = badRequest("Invalid credentials")

// Register creates an account.  Usernames are never reused: a taken name
// is refused and the existing account is left untouched.  Creating an
// admin requires an admin token on the request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body").SetInternal(err)
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidatePassword(req.Password); err != nil {
		return badRequest(err.Error())
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return badRequest(err.Error())
	}
	role := model.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		r, err := model.ParseRole(req.Role)
		if err != nil {
			return badRequest(`Invalid role. Role must be "user" or "admin".`)
		}
		role = r
	}
	if role == model.RoleAdmin && !middleware.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only administrators can create admin accounts")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return badRequest(userErrors.duplicate)
		}
		return serverError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered", "user": toUserPart(u)})
}

// Login verifies the password and issues an access token.  Unknown users
// and wrong passwords get the same answer and cost the same bcrypt work.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body").SetInternal(err)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest("Username and password are required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnCompare(req.Password)
			return errInvalidCredentials
		}
		return serverError(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return errInvalidCredentials
	}

	access, err := h.Tokens.Issue(u)
	if err != nil {
		return serverError(err)
	}
	return c.JSON(http.StatusOK, loginResp{
		Message:   "Logged in successfully",
		Token:     access.Token,
		ExpiresAt: access.Exp,
		User:      toUserPart(u),
	})
}

// Me returns the identity carried by the caller's token.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":    id.UserID,
		"role":       id.Role,
		"expires_at": id.ExpiresAt,
	})
}
