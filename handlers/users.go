package handlers

import (
	"errors"

	"github.com/brushbolt/store-backend/database"
	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetProfile(c echo.Context) error {
	return utils.OK(c, currentUser(c))
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var req models.ProfileUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.store.UpdateProfile(ctx, currentUser(c).ID, req)
	if err != nil {
		return utils.NotFoundOr(err, "User not found")
	}
	return utils.OK(c, user)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req models.PasswordChange
	if err := bind(c, &req); err != nil {
		return err
	}
	user := currentUser(c)

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return utils.BadRequest("Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.Internal("Failed to process password", err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return utils.NotFoundOr(err, "User not found")
	}
	return utils.Message(c, "Password updated")
}

func (h *Handler) GetAddresses(c echo.Context) error {
	addresses := currentUser(c).Addresses
	if addresses == nil {
		addresses = []models.Address{}
	}
	return utils.OK(c, addresses)
}

// AddAddress saves a new address. The first address becomes the default.
func (h *Handler) AddAddress(c echo.Context) error {
	var addr models.Address
	if err := bind(c, &addr); err != nil {
		return err
	}
	user := currentUser(c)

	addr.ID = primitive.NewObjectID()
	if len(user.Addresses) == 0 {
		addr.IsDefault = true
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.AddAddress(ctx, user.ID, addr)
	if err != nil {
		return utils.NotFoundOr(err, "User not found")
	}
	return utils.Created(c, updated.Addresses)
}

func (h *Handler) UpdateAddress(c echo.Context) error {
	addressID, err := paramID(c, "id", "address")
	if err != nil {
		return err
	}
	var addr models.Address
	if err := bind(c, &addr); err != nil {
		return err
	}
	addr.ID = addressID

	user := currentUser(c)
	existing, ok := user.FindAddress(addressID)
	if !ok {
		return utils.NotFound("Address not found")
	}
	// The default moves only through SetDefaultAddress or an explicit
	// isDefault:true, so an edit never leaves the user without one.
	if existing.IsDefault {
		addr.IsDefault = true
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.UpdateAddress(ctx, user.ID, addr)
	if err != nil {
		return utils.NotFoundOr(err, "Address not found")
	}
	return utils.OK(c, updated.Addresses)
}

func (h *Handler) DeleteAddress(c echo.Context) error {
	addressID, err := paramID(c, "id", "address")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.DeleteAddress(ctx, currentUser(c).ID, addressID)
	if err != nil {
		return utils.NotFoundOr(err, "Address not found")
	}
	return utils.OK(c, updated.Addresses)
}

func (h *Handler) SetDefaultAddress(c echo.Context) error {
	addressID, err := paramID(c, "id", "address")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.store.SetDefaultAddress(ctx, currentUser(c).ID, addressID)
	if err != nil {
		return utils.NotFoundOr(err, "Address not found")
	}
	return utils.OK(c, updated.Addresses)
}

var userSorts = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "createdAt",
	"lastLogin": "lastLogin",
}

func (h *Handler) AdminListUsers(c echo.Context) error {
	params := utils.ParseListParams(c, "createdAt", userSorts)
	isActive, err := utils.QueryBool(c, "isActive")
	if err != nil {
		return err
	}
	isAdmin, err := utils.QueryBool(c, "isAdmin")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, total, err := h.store.ListUsers(ctx, database.UserFilter{IsActive: isActive, IsAdmin: isAdmin}, params)
	if err != nil {
		return utils.Internal("Failed to fetch users", err)
	}
	return utils.Paginated(c, users, models.NewPagination(params.Page, params.Limit, total))
}

// AdminUpdateUser flips isActive / isAdmin. Admins can't lock themselves out.
func (h *Handler) AdminUpdateUser(c echo.Context) error {
	userID, err := paramID(c, "id", "user")
	if err != nil {
		return err
	}
	var req models.UserAdminUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil && req.IsAdmin == nil {
		return utils.BadRequest("Nothing to update")
	}
	if userID == currentUser(c).ID && (!boolOr(req.IsActive, true) || !boolOr(req.IsAdmin, true)) {
		return utils.BadRequest("You cannot deactivate or demote your own account")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.store.AdminUpdateUser(ctx, userID, req)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NotFound("User not found")
		}
		return utils.Internal("Failed to update user", err)
	}
	return utils.OK(c, user)
}
