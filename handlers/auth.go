package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Internal("Failed to process password", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.Conflict("Email already registered")
		}
		return utils.Internal("Failed to create user", err)
	}

	token, err := h.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return utils.Internal("Failed to generate token", err)
	}
	return utils.Created(c, authResponse{Token: token, User: user})
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.Unauthorized("Invalid email or password")
		}
		return utils.Internal("Failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return utils.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return utils.Unauthorized("Account is deactivated")
	}

	token, err := h.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return utils.Internal("Failed to generate token", err)
	}
	if err := h.store.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("Failed to record login for %s: %v", user.ID.Hex(), err)
	}

	return utils.OK(c, authResponse{Token: token, User: user})
}

func (h *Handler) Me(c echo.Context) error {
	return utils.OK(c, currentUser(c))
}
