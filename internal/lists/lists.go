// Package lists stores task lists and protects the per-user default lists.
package lists

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"automator/internal/docstore"
	"automator/internal/service"
)

// Collection is the document collection holding lists.
const Collection = "task_lists"

// Icon metadata given to lists created without any.
const (
	DefaultIcon      = "list"
	DefaultIconColor = int64(0xFF0078D4)
)

const (
	fieldOwner     = "user_id"
	fieldName      = "name"
	fieldIcon      = "icon"
	fieldIconColor = "iconColor"
	fieldDefault   = "isDefault"
	fieldUpdated   = "updated_at"
)

// Defaults are the lists every user starts with, in creation order.
var Defaults = []service.NewList{
	{Name: service.MyDayList, Icon: "wb_sunny_outlined", IconColor: 0xFFFFB900, IsDefault: true},
	{Name: service.ImportantList, Icon: "star_border", IconColor: 0xFFD13438, IsDefault: true},
	{Name: service.TasksList, Icon: "home_outlined", IconColor: 0xFF0078D4, IsDefault: true},
}

type document struct {
	ID        string    `json:"_id,omitempty" bson:"_id,omitempty"`
	OwnerID   string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Icon      string    `json:"icon" bson:"icon"`
	IconColor int64     `json:"iconColor" bson:"iconColor"`
	IsDefault bool      `json:"isDefault" bson:"isDefault"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Repository reads and writes task lists.
type Repository struct {
	store docstore.Store
	log   *zap.Logger
	now   func() time.Time
}

// New creates a Repository. A nil logger discards output.
func New(store docstore.Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: store, log: log, now: time.Now}
}

// EnsureIndexes creates the owner index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndex(ctx, Collection, docstore.Index{Fields: []string{fieldOwner}})
}

// Create inserts a list and returns its id.
func (r *Repository) Create(ctx context.Context, in service.NewList) (string, bool) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.OwnerID == "" {
		r.log.Debug("rejected list without name or owner", zap.String("user_id", in.OwnerID))
		return "", false
	}
	if in.Icon == "" {
		in.Icon = DefaultIcon
	}
	if in.IconColor == 0 {
		in.IconColor = DefaultIconColor
	}
	now := r.now().UTC()
	id, err := r.store.Insert(ctx, Collection, document{
		OwnerID:   in.OwnerID,
		Name:      name,
		Icon:      in.Icon,
		IconColor: in.IconColor,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.log.Error("failed to create list", zap.String("user_id", in.OwnerID), zap.String("name", name), zap.Error(err))
		return "", false
	}
	return id, true
}

// Get returns the owner's lists in creation order, only default ones when defaultOnly is set.
func (r *Repository) Get(ctx context.Context, owner string, defaultOnly bool) []service.TaskList {
	if owner == "" {
		return []service.TaskList{}
	}
	f := docstore.Where(docstore.Eq(fieldOwner, owner))
	if defaultOnly {
		f = append(f, docstore.Eq(fieldDefault, true))
	}
	return r.find(ctx, f)
}

// GetByID returns a list. A list owned by someone else is reported as missing.
func (r *Repository) GetByID(ctx context.Context, id, owner string) (service.TaskList, bool) {
	if id == "" || owner == "" {
		return service.TaskList{}, false
	}
	var doc document
	if err := r.store.FindOne(ctx, Collection, byOwner(id, owner), &doc); err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			r.log.Error("failed to get list", zap.String("list_id", id), zap.Error(err))
		}
		return service.TaskList{}, false
	}
	return toList(doc), true
}

// FindDefault returns the owner's default list called name.
func (r *Repository) FindDefault(ctx context.Context, owner, name string) (service.TaskList, bool) {
	if owner == "" {
		return service.TaskList{}, false
	}
	found := r.find(ctx, docstore.Where(
		docstore.Eq(fieldOwner, owner),
		docstore.Eq(fieldDefault, true),
		docstore.Eq(fieldName, name),
	))
	if len(found) == 0 {
		return service.TaskList{}, false
	}
	return found[0], true
}

// Update merges p into the list and reports whether it was modified.
func (r *Repository) Update(ctx context.Context, id, owner string, p service.ListPatch) bool {
	set := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return false
		}
		set[fieldName] = name
	}
	if p.Icon != nil {
		set[fieldIcon] = *p.Icon
	}
	if p.IconColor != nil {
		set[fieldIconColor] = *p.IconColor
	}
	if len(set) == 0 {
		return false
	}
	set[fieldUpdated] = r.now().UTC()

	res, err := r.store.UpdateOne(ctx, Collection, byOwner(id, owner), docstore.Update{Set: set})
	if err != nil {
		r.log.Error("failed to update list", zap.String("list_id", id), zap.Error(err))
		return false
	}
	return res.Modified > 0
}

// Delete removes a non-default list. The delete filter itself excludes default lists,
// so a list that became default after the check still survives.
func (r *Repository) Delete(ctx context.Context, id, owner string) bool {
	l, ok := r.GetByID(ctx, id, owner)
	if !ok {
		return false
	}
	if l.IsDefault {
		r.log.Debug("refused to delete default list", zap.String("list_id", id))
		return false
	}
	filter := append(byOwner(id, owner), docstore.Ne(fieldDefault, true))
	n, err := r.store.DeleteOne(ctx, Collection, filter)
	if err != nil {
		r.log.Error("failed to delete list", zap.String("list_id", id), zap.Error(err))
		return false
	}
	return n > 0
}

// BootstrapDefaults creates the default lists for a new user and returns the ids
// created. A failed insert is logged and skipped; nothing is rolled back.
func (r *Repository) BootstrapDefaults(ctx context.Context, owner string) []string {
	ids := make([]string, 0, len(Defaults))
	for _, d := range Defaults {
		d.OwnerID = owner
		id, ok := r.Create(ctx, d)
		if !ok {
			r.log.Warn("default list not created", zap.String("user_id", owner), zap.String("name", d.Name))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (r *Repository) find(ctx context.Context, f docstore.Filter) []service.TaskList {
	var docs []document
	if err := r.store.FindMany(ctx, Collection, f, &docs); err != nil {
		r.log.Error("failed to get lists", zap.Error(err))
		return []service.TaskList{}
	}
	out := make([]service.TaskList, 0, len(docs))
	for _, d := range docs {
		out = append(out, toList(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func byOwner(id, owner string) docstore.Filter {
	return docstore.Where(docstore.ByID(id), docstore.Eq(fieldOwner, owner))
}

func toList(d document) service.TaskList {
	return service.TaskList{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Icon:      d.Icon,
		IconColor: d.IconColor,
		IsDefault: d.IsDefault,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
