package handler

import (
	"context"
	"net/http"

	"github.com/YouSangSon/reports-service/internal/domain/schema"
	"github.com/YouSangSon/reports-service/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// UserService는 UserHandler가 사용하는 사용자 유즈케이스입니다
type UserService interface {
	Register(ctx context.Context, in *schema.UserSignup) (*schema.UserOut, error)
	Login(ctx context.Context, in *schema.UserLogin) (*schema.Token, error)
	VerifyToken(ctx context.Context, in *schema.TokenIn) (*schema.TokenValidity, error)
	Refresh(ctx context.Context, in *schema.RefreshIn) (*schema.Token, error)
	Get(ctx context.Context, id string) (*schema.UserOut, error)
	Update(ctx context.Context, id string, update *schema.UserUpdate) (*schema.UserOut, error)
	SetFlags(ctx context.Context, id string, flags *schema.UserFlags) (*schema.UserOut, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler는 사용자 관련 HTTP 핸들러입니다
type UserHandler struct {
	users UserService
}

// NewUserHandler는 새로운 UserHandler를 생성합니다
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register godoc
// @Summary      Register a password user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      schema.UserSignup  true  "Signup"
// @Success      201      {object}  schema.UserOut
// @Failure      409      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var in schema.UserSignup
	if !bindJSON(c, &in) {
		return
	}

	out, err := h.users.Register(c.Request.Context(), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// Login godoc
// @Summary      Log in with username and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      schema.UserLogin  true  "Credentials"
// @Success      200      {object}  schema.Token
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var in schema.UserLogin
	if !bindJSON(c, &in) {
		return
	}

	token, err := h.users.Login(c.Request.Context(), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// VerifyToken godoc
// @Summary      Check whether an access token is valid
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      schema.TokenIn  true  "Token"
// @Success      200      {object}  schema.TokenValidity
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/users/token/verify [post]
func (h *UserHandler) VerifyToken(c *gin.Context) {
	var in schema.TokenIn
	if !bindJSON(c, &in) {
		return
	}

	out, err := h.users.VerifyToken(c.Request.Context(), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// RefreshToken godoc
// @Summary      Exchange a refresh token for a new token pair
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      schema.RefreshIn  true  "Refresh token"
// @Success      200      {object}  schema.Token
// @Failure      401      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/users/token/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var in schema.RefreshIn
	if !bindJSON(c, &in) {
		return
	}
	token, err := h.users.Refresh(c.Request.Context(), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Me godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  schema.UserOut
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	out, err := h.users.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateMe godoc
// @Summary      Update the current user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      schema.UserUpdate  true  "Profile fields"
// @Success      200      {object}  schema.UserOut
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var update schema.UserUpdate
	if !bindJSON(c, &update) {
		return
	}

	out, err := h.users.Update(c.Request.Context(), middleware.CurrentUserID(c), &update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteMe godoc
// @Summary      Delete the current user
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  schema.UserOut
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/users/{user_id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	out, err := h.users.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// SetFlags godoc
// @Summary      Set verified/active flags (administrators only)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string            true  "User ID"
// @Param        request  body      schema.UserFlags  true  "Flags"
// @Success      200      {object}  schema.UserOut
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/users/{user_id}/flags [patch]
func (h *UserHandler) SetFlags(c *gin.Context) {
	var flags schema.UserFlags
	if !bindJSON(c, &flags) {
		return
	}

	out, err := h.users.SetFlags(c.Request.Context(), c.Param("user_id"), &flags)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
