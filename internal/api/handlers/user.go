package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/corelord/corelord/internal/database"
	"github.com/corelord/corelord/internal/middleware"
	"github.com/corelord/corelord/internal/models"
)

// UserHandler handles registration, login and profile management.
type UserHandler struct {
	db         database.DatabasePool
	auth       *middleware.AuthMiddleware
	bcryptCost int
}

type RegisterRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	Name           *string `json:"name,omitempty"`
	TelegramChatID *string `json:"telegram_chat_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User  models.UserResponse `json:"user"`
	Token string              `json:"token"`
}

type UpdateProfileRequest struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Country        *string `json:"country,omitempty"`
	TelegramChatID *string `json:"telegram_chat_id,omitempty"`
	AlertsEnabled  *bool   `json:"alerts_enabled,omitempty"`
}

func NewUserHandler(db database.DatabasePool, auth *middleware.AuthMiddleware, bcryptCost int) *UserHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{
		db:         db,
		auth:       auth,
		bcryptCost: bcryptCost,
	}
}

// RegisterUser handles POST /api/v1/users/register.
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	exists, err := h.userExists(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check user existence"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	userID := uuid.New().String()
	now := time.Now()

	query := `
		INSERT INTO users (id, email, password_hash, name, telegram_chat_id, alerts_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $6)
	`
	if _, err := h.db.Exec(c.Request.Context(), query,
		userID, req.Email, string(hashedPassword), req.Name, req.TelegramChatID, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": models.UserResponse{
		ID:             userID,
		Email:          req.Email,
		Name:           req.Name,
		TelegramChatID: req.TelegramChatID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}})
}

// LoginUser handles POST /api/v1/users/login.
func (h *UserHandler) LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.getUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:  userResponse(user),
		Token: token,
	})
}

// GetUserProfile handles GET /api/v1/users/profile.
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := h.getUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// UpdateUserProfile handles PUT /api/v1/users/profile. Only the fields
// present in the request body are changed.
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    country = COALESCE($4, country),
		    telegram_chat_id = COALESCE($5, telegram_chat_id),
		    alerts_enabled = COALESCE($6, alerts_enabled),
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := h.db.Exec(c.Request.Context(), query,
		userID, req.Name, req.Phone, req.Country, req.TelegramChatID, req.AlertsEnabled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user, err := h.getUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch updated user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func (h *UserHandler) userExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := h.db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const userColumns = `id, email, password_hash, name, phone, country, telegram_chat_id, alerts_enabled, created_at, updated_at`

func (h *UserHandler) getUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return h.scanUser(h.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (h *UserHandler) getUserByID(ctx context.Context, userID string) (*models.User, error) {
	return h.scanUser(h.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID))
}

func (h *UserHandler) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Phone,
		&user.Country, &user.TelegramChatID, &user.AlertsEnabled,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func userResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Phone:          user.Phone,
		Country:        user.Country,
		TelegramChatID: user.TelegramChatID,
		AlertsEnabled:  user.AlertsEnabled,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}
