package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserFilter struct {
	IsActive *bool
	IsAdmin  *bool
}

func (f UserFilter) Build(search string) bson.M {
	q := bson.M{}
	if f.IsActive != nil {
		q["isActive"] = *f.IsActive
	}
	if f.IsAdmin != nil {
		q["isAdmin"] = *f.IsAdmin
	}
	if s := utils.SearchFilter(search, "name", "email", "phone"); s != nil {
		q["$or"] = s["$or"]
	}
	return q
}

func (s *Store) ListUsers(ctx context.Context, f UserFilter, p utils.ListParams) ([]models.User, int64, error) {
	return findPage[models.User](ctx, s.collection(UsersCollection), f.Build(p.Search), p)
}

func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.collection(UsersCollection), bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.collection(UsersCollection), bson.M{"email": NormalizeEmail(email)})
}

// NormalizeEmail is applied on every write and lookup so the unique index
// is case-insensitive in practice.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.ID = primitive.NewObjectID()
	u.Email = NormalizeEmail(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Addresses == nil {
		u.Addresses = []models.Address{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []primitive.ObjectID{}
	}
	_, err := s.collection(UsersCollection).InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	return s.updateUser(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":      upd.Name,
		"phone":     upd.Phone,
		"updatedAt": time.Now(),
	}}, nil)
}

func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.collection(UsersCollection).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.collection(UsersCollection).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLogin": time.Now()}})
	return err
}

// AdminUpdateUser flips the isActive/isAdmin flags.
func (s *Store) AdminUpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserAdminUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	if upd.IsAdmin != nil {
		set["isAdmin"] = *upd.IsAdmin
	}
	return s.updateUser(ctx, bson.M{"_id": id}, bson.M{"$set": set}, nil)
}

// AddAddress pushes a new embedded address. When it is the default, every
// other address is cleared first.
func (s *Store) AddAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) (*models.User, error) {
	if addr.IsDefault {
		if err := s.clearDefaultAddress(ctx, userID); err != nil {
			return nil, err
		}
	}
	return s.updateUser(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"addresses": addr},
		"$set":  bson.M{"updatedAt": time.Now()},
	}, nil)
}

func (s *Store) UpdateAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) (*models.User, error) {
	if _, err := findOne[models.User](ctx, s.collection(UsersCollection),
		bson.M{"_id": userID, "addresses._id": addr.ID}); err != nil {
		return nil, err
	}
	if addr.IsDefault {
		if err := s.clearDefaultAddress(ctx, userID); err != nil {
			return nil, err
		}
	}

	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem._id": addr.ID}},
	}
	return s.updateUser(ctx,
		bson.M{"_id": userID, "addresses._id": addr.ID},
		bson.M{"$set": bson.M{
			"addresses.$[elem]": addr,
			"updatedAt":         time.Now(),
		}},
		&arrayFilters,
	)
}

func (s *Store) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*models.User, error) {
	return s.updateUser(ctx,
		bson.M{"_id": userID, "addresses._id": addressID},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		}, nil)
}

func (s *Store) SetDefaultAddress(ctx context.Context, userID, addressID primitive.ObjectID) (*models.User, error) {
	if _, err := findOne[models.User](ctx, s.collection(UsersCollection),
		bson.M{"_id": userID, "addresses._id": addressID}); err != nil {
		return nil, err
	}
	if err := s.clearDefaultAddress(ctx, userID); err != nil {
		return nil, err
	}
	return s.updateUser(ctx,
		bson.M{"_id": userID, "addresses._id": addressID},
		bson.M{"$set": bson.M{"addresses.$.isDefault": true, "updatedAt": time.Now()}},
		nil)
}

func (s *Store) clearDefaultAddress(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.collection(UsersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
	)
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}

func (s *Store) updateUser(ctx context.Context, filter, update bson.M, arrayFilters *options.ArrayFilters) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if arrayFilters != nil {
		opts.SetArrayFilters(*arrayFilters)
	}
	var out models.User
	if err := s.collection(UsersCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
