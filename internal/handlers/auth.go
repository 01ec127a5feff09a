package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/guitar-store/internal/auth"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

// RegisterRequest is the sign-up form. It binds from JSON or a form post.
type RegisterRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
	RPassword string `json:"rpassword" form:"rpassword" binding:"required"`
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
}

type AuthHandler struct {
	users  service.UserService
	logger *slog.Logger
}

func NewAuthHandler(users service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// Verify echoes the caller resolved by auth.Require.
func (h *AuthHandler) Verify(c *gin.Context) {
	caller, _ := auth.CallerFrom(c)
	c.JSON(http.StatusOK, gin.H{"message": "Signed in successfully", "user": caller})
}

// Register signs up a new user with the "user" role. Form posts from the
// registration page are answered with redirects, JSON clients with the user.
func (h *AuthHandler) Register(c *gin.Context) {
	form := !strings.Contains(c.ContentType(), "json")

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		if form {
			c.Redirect(http.StatusSeeOther, "/auth/register?error=1")
			return
		}
		_ = c.Error(bindError(err))
		return
	}
	if req.Password != req.RPassword {
		if form {
			c.Redirect(http.StatusSeeOther, "/auth/register?error=1")
			return
		}
		_ = c.Error(&service.ValidationError{Field: "rpassword", Message: "passwords do not match"})
		return
	}

	u, err := h.users.Register(c.Request.Context(), models.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Profile:  &models.ProfileInput{FirstName: req.FirstName, LastName: req.LastName},
	})
	if err != nil {
		if form {
			h.logger.Warn("registration failed", "email", req.Email, "error", err)
			c.Redirect(http.StatusSeeOther, "/auth/register?error=2")
			return
		}
		_ = c.Error(err)
		return
	}

	if form {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusCreated, u)
}
