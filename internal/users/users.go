// Package users stores registered accounts.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"automator/internal/docstore"
	"automator/internal/service"
)

// Collection is the document collection holding users.
const Collection = "users"

const fieldEmail = "email"

type document struct {
	ID        string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password" bson:"password"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Repository reads and writes users.
type Repository struct {
	store docstore.Store
	log   *zap.Logger
	now   func() time.Time
	cost  int
}

// New creates a Repository. A nil logger discards output.
func New(store docstore.Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: store, log: log, now: time.Now, cost: bcrypt.DefaultCost}
}

// EnsureIndexes creates the unique email index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, Collection, docstore.Index{Fields: []string{fieldEmail}, Unique: true})
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a user. A taken email returns false; the unique index only
// closes the race between the lookup and the insert.
func (r *Repository) Create(ctx context.Context, in service.NewUser) (string, bool) {
	email := NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") || in.Password == "" {
		r.log.Debug("rejected user without valid email or password")
		return "", false
	}
	if _, taken := r.GetByEmail(ctx, email); taken {
		r.log.Info("email already registered", zap.String("email", email))
		return "", false
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.cost)
	if err != nil {
		r.log.Error("failed to hash password", zap.Error(err))
		return "", false
	}

	now := r.now().UTC()
	id, err := r.store.Insert(ctx, Collection, document{
		Email:     email,
		Password:  string(hash),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			r.log.Info("email already registered", zap.String("email", email))
		} else {
			r.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		}
		return "", false
	}
	return id, true
}

// GetByID returns a user.
func (r *Repository) GetByID(ctx context.Context, id string) (service.User, bool) {
	if id == "" {
		return service.User{}, false
	}
	return r.findOne(ctx, docstore.Where(docstore.ByID(id)))
}

// GetByEmail looks a user up by address, ignoring case and surrounding space.
func (r *Repository) GetByEmail(ctx context.Context, email string) (service.User, bool) {
	email = NormalizeEmail(email)
	if email == "" {
		return service.User{}, false
	}
	return r.findOne(ctx, docstore.Where(docstore.Eq(fieldEmail, email)))
}

func (r *Repository) findOne(ctx context.Context, f docstore.Filter) (service.User, bool) {
	var doc document
	if err := r.store.FindOne(ctx, Collection, f, &doc); err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			r.log.Error("failed to get user", zap.Error(err))
		}
		return service.User{}, false
	}
	return service.User{
		ID:        doc.ID,
		Email:     doc.Email,
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, true
}
