package repository

import (
	"context"
	"fmt"
	"strings"

	"checklistapp/model"
	"checklistapp/store"
)

type userCodec struct{}

func (userCodec) Key(u model.User) string { return u.UID }

func (userCodec) WithKey(u model.User, id string) model.User {
	u.UID = id
	return u
}

// Decode falls back to the document ID for documents written without a uid
// field, and to the older teamIds field name.
func (userCodec) Decode(doc store.Document) (model.User, error) {
	r := newReader(store.CollectionUsers, doc)
	u := model.User{
		UID:   r.str("uid", false),
		Email: r.str("email", true),
		Name:  r.str("name", false),
		Role:  model.Role(r.str("role", true)),
	}
	if r.has("teamUIDs") {
		u.TeamUIDs = r.strings("teamUIDs")
	} else {
		u.TeamUIDs = r.strings("teamIds")
	}
	if r.err != nil {
		return model.User{}, r.err
	}
	if u.UID == "" {
		u.UID = doc.ID
	}
	if !u.Role.IsValid() {
		return model.User{}, &DecodeError{Collection: store.CollectionUsers, ID: doc.ID, Field: "role",
			Err: fmt.Errorf("unknown role %q", u.Role)}
	}
	return u, nil
}

func (userCodec) Encode(u model.User) map[string]interface{} {
	teams := u.TeamUIDs
	if teams == nil {
		teams = []string{}
	}
	return map[string]interface{}{
		"uid":      u.UID,
		"email":    u.Email,
		"name":     u.Name,
		"role":     string(u.Role),
		"teamUIDs": teams,
	}
}

type UserRepository struct {
	*Repository[model.User]
}

func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{Repository: New[model.User](s, store.CollectionUsers, userCodec{})}
}

func ValidateUser(u model.User) error {
	fields := fieldErrors{}
	validateStruct(u, fields)
	return fields.err()
}

// Create writes the profile under its auth uid.
func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if err := ValidateUser(u); err != nil {
		return model.User{}, err
	}
	if err := r.store.Set(ctx, r.collection, u.UID, r.codec.Encode(u)); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UpdateProfile changes the display name and role. Team membership is owned
// by TeamRepository.
func (r *UserRepository) UpdateProfile(ctx context.Context, uid, name string, role model.Role) error {
	problems := fieldErrors{}
	if name == "" {
		problems.add("Name", "is required")
	}
	if !role.IsValid() {
		problems.add("Role", "must be one of manager worker")
	}
	if err := problems.err(); err != nil {
		return err
	}
	return r.update(ctx, uid, map[string]interface{}{"name": name, "role": string(role)})
}

func (r *UserRepository) GetByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return r.GetByPredicate(ctx, func(u model.User) bool {
		return u.Role == role
	})
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.TrimSpace(email)
	users, err := r.GetByPredicate(ctx, func(u model.User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if err != nil {
		return model.User{}, err
	}
	if len(users) == 0 {
		return model.User{}, fmt.Errorf("%s email %s: %w", r.collection, email, store.ErrNotFound)
	}
	return users[0], nil
}
