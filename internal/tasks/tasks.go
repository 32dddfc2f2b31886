// Package tasks stores tasks and enforces list membership rules:
// a task always belongs to at least one list, and every access is scoped to its owner.
package tasks

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

// Collection is the document collection holding tasks.
const Collection = "tasks"

// Field names of the stored document.
const (
	fieldOwner     = "user_id"
	fieldTitle     = "title"
	fieldNote      = "note"
	fieldCompleted = "isCompleted"
	fieldImportant = "isImportant"
	fieldDue       = "dueDate"
	fieldListIDs   = "list_ids"
	fieldLegacyID  = "list_id"
	fieldUpdated   = "updated_at"
)

type document struct {
	ID           string     `json:"_id,omitempty" bson:"_id,omitempty"`
	OwnerID      string     `json:"user_id" bson:"user_id"`
	Title        string     `json:"title" bson:"title"`
	Note         string     `json:"note,omitempty" bson:"note,omitempty"`
	IsCompleted  bool       `json:"isCompleted" bson:"isCompleted"`
	IsImportant  bool       `json:"isImportant" bson:"isImportant"`
	DueDate      *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	ListIDs      []string   `json:"list_ids,omitempty" bson:"list_ids,omitempty"`
	LegacyListID string     `json:"list_id,omitempty" bson:"list_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// Repository reads and writes tasks.
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

// EnsureIndexes creates the indexes task queries rely on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	for _, idx := range []docstore.Index{
		{Fields: []string{fieldOwner}},
		{Fields: []string{fieldOwner, fieldListIDs}},
	} {
		if err := r.store.EnsureIndex(ctx, Collection, idx); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a task and returns its id. Title and owner are required.
func (r *Repository) Create(ctx context.Context, in service.NewTask) (string, bool) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.OwnerID == "" {
		r.log.Debug("rejected task without title or owner", zap.String("user_id", in.OwnerID))
		return "", false
	}
	now := r.now().UTC()
	doc := document{
		OwnerID:     in.OwnerID,
		Title:       title,
		Note:        in.Note,
		IsCompleted: in.IsCompleted,
		IsImportant: in.IsImportant,
		DueDate:     utc(in.DueDate),
		ListIDs:     membership(in.ListID, in.ListIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := r.store.Insert(ctx, Collection, doc)
	if err != nil {
		r.log.Error("failed to create task", zap.String("user_id", in.OwnerID), zap.Error(err))
		return "", false
	}
	return id, true
}

// Get returns the owner's tasks in creation order. A non-empty listID restricts the
// result to members of that list, including legacy single-list documents.
func (r *Repository) Get(ctx context.Context, owner, listID string) []service.Task {
	if owner == "" {
		return []service.Task{}
	}
	if listID == "" {
		return r.find(ctx, "get tasks", docstore.Where(docstore.Eq(fieldOwner, owner)))
	}

	current := r.find(ctx, "get tasks", docstore.Where(docstore.Eq(fieldOwner, owner), docstore.Has(fieldListIDs, listID)))
	legacy := r.find(ctx, "get legacy tasks", docstore.Where(docstore.Eq(fieldOwner, owner), docstore.Eq(fieldLegacyID, listID)))

	seen := make(map[string]bool, len(current))
	out := make([]service.Task, 0, len(current)+len(legacy))
	for _, t := range append(current, legacy...) {
		if seen[t.ID] || !t.InList(listID) {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	sortByCreation(out)
	return out
}

// GetByID returns a task. A task owned by someone else is reported as missing.
func (r *Repository) GetByID(ctx context.Context, id, owner string) (service.Task, bool) {
	doc, ok := r.fetch(ctx, id, owner)
	if !ok {
		return service.Task{}, false
	}
	return toTask(doc), true
}

// Update merges p into the task and reports whether it was modified.
func (r *Repository) Update(ctx context.Context, id, owner string, p service.TaskPatch) bool {
	set := map[string]any{}
	var unset []string

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return false
		}
		set[fieldTitle] = title
	}
	if p.Note != nil {
		set[fieldNote] = *p.Note
	}
	if p.IsCompleted != nil {
		set[fieldCompleted] = *p.IsCompleted
	}
	if p.IsImportant != nil {
		set[fieldImportant] = *p.IsImportant
	}
	if p.DueDate != nil {
		set[fieldDue] = p.DueDate.UTC()
	}
	switch {
	case p.ListIDs != nil:
		ids := dedupe(p.ListIDs)
		if len(ids) == 0 {
			r.log.Debug("rejected empty membership", zap.String("task_id", id))
			return false
		}
		set[fieldListIDs] = ids
		unset = append(unset, fieldLegacyID)
	case p.ListID != nil:
		if *p.ListID == "" {
			return false
		}
		set[fieldListIDs] = []string{*p.ListID}
		unset = append(unset, fieldLegacyID)
	}
	if len(set) == 0 {
		return false
	}
	set[fieldUpdated] = r.now().UTC()

	res, err := r.store.UpdateOne(ctx, Collection, byOwner(id, owner), docstore.Update{Set: set, Unset: unset})
	if err != nil {
		r.log.Error("failed to update task", zap.String("task_id", id), zap.Error(err))
		return false
	}
	return res.Modified > 0
}

// Delete removes one task.
func (r *Repository) Delete(ctx context.Context, id, owner string) bool {
	if id == "" || owner == "" {
		return false
	}
	n, err := r.store.DeleteOne(ctx, Collection, byOwner(id, owner))
	if err != nil {
		r.log.Error("failed to delete task", zap.String("task_id", id), zap.Error(err))
		return false
	}
	return n > 0
}

// DeleteMany removes the listed tasks and returns how many were deleted.
func (r *Repository) DeleteMany(ctx context.Context, ids []string, owner string) int64 {
	if len(ids) == 0 || owner == "" {
		return 0
	}
	n, err := r.store.DeleteMany(ctx, Collection, docstore.Where(docstore.In(docstore.IDField, ids), docstore.Eq(fieldOwner, owner)))
	if err != nil {
		r.log.Error("failed to delete tasks", zap.Strings("task_ids", ids), zap.Error(err))
		return 0
	}
	return n
}

// DeleteByList removes every owner task filed under listID, whatever its other memberships.
// A legacy list_id only counts when the task has no list_ids, as in Get.
func (r *Repository) DeleteByList(ctx context.Context, listID, owner string) int64 {
	if listID == "" || owner == "" {
		return 0
	}
	total, err := r.store.DeleteMany(ctx, Collection, docstore.Where(docstore.Eq(fieldOwner, owner), docstore.Has(fieldListIDs, listID)))
	if err != nil {
		r.log.Error("failed to delete list tasks", zap.String("list_id", listID), zap.Error(err))
		return 0
	}

	var legacy []string
	for _, t := range r.find(ctx, "get legacy tasks", docstore.Where(docstore.Eq(fieldOwner, owner), docstore.Eq(fieldLegacyID, listID))) {
		if t.InList(listID) {
			legacy = append(legacy, t.ID)
		}
	}
	if len(legacy) == 0 {
		return total
	}
	n, err := r.store.DeleteMany(ctx, Collection, docstore.Where(docstore.In(docstore.IDField, legacy), docstore.Eq(fieldOwner, owner)))
	if err != nil {
		r.log.Error("failed to delete legacy list tasks", zap.String("list_id", listID), zap.Error(err))
		return total
	}
	return total + n
}

// AddToList adds listID to the task's membership. Adding a list the task is already
// in succeeds without duplicating it.
func (r *Repository) AddToList(ctx context.Context, id, owner, listID string) bool {
	if listID == "" {
		return false
	}
	doc, ok := r.fetch(ctx, id, owner)
	if !ok {
		return false
	}

	u := docstore.Update{Set: map[string]any{fieldUpdated: r.now().UTC()}}
	if len(doc.ListIDs) == 0 {
		// Legacy shape: materialize the membership before extending it.
		u.Set[fieldListIDs] = dedupe(append(toTask(doc).ListIDs, listID))
		u.Unset = []string{fieldLegacyID}
	} else {
		u.AddToSet = map[string]any{fieldListIDs: listID}
	}

	res, err := r.store.UpdateOne(ctx, Collection, byOwner(id, owner), u)
	if err != nil {
		r.log.Error("failed to add task to list", zap.String("task_id", id), zap.String("list_id", listID), zap.Error(err))
		return false
	}
	return res.Matched > 0
}

// RemoveFromList drops listID from the task's membership. It refuses when the task
// would be left in no list; the store filter re-checks that at write time.
func (r *Repository) RemoveFromList(ctx context.Context, id, owner, listID string) bool {
	t, ok := r.GetByID(ctx, id, owner)
	if !ok || !t.InList(listID) {
		return false
	}
	if len(t.ListIDs) <= 1 {
		r.log.Debug("refused to remove last list", zap.String("task_id", id), zap.String("list_id", listID))
		return false
	}

	filter := append(byOwner(id, owner), docstore.MinLen(fieldListIDs, 2))
	res, err := r.store.UpdateOne(ctx, Collection, filter, docstore.Update{
		Pull: map[string]any{fieldListIDs: listID},
		Set:  map[string]any{fieldUpdated: r.now().UTC()},
	})
	if err != nil {
		r.log.Error("failed to remove task from list", zap.String("task_id", id), zap.String("list_id", listID), zap.Error(err))
		return false
	}
	return res.Modified > 0
}

// Search returns tasks whose title contains term, ignoring case. An empty term
// matches nothing.
func (r *Repository) Search(ctx context.Context, owner, term string) []service.Task {
	term = strings.TrimSpace(term)
	if term == "" || owner == "" {
		return []service.Task{}
	}
	return r.find(ctx, "search tasks", docstore.Where(docstore.Eq(fieldOwner, owner), docstore.ContainsFold(fieldTitle, term)))
}

// Important returns the owner's important tasks.
func (r *Repository) Important(ctx context.Context, owner string) []service.Task {
	if owner == "" {
		return []service.Task{}
	}
	return r.find(ctx, "get important tasks", docstore.Where(docstore.Eq(fieldOwner, owner), docstore.Eq(fieldImportant, true)))
}

// Completed returns the owner's completed tasks.
func (r *Repository) Completed(ctx context.Context, owner string) []service.Task {
	if owner == "" {
		return []service.Task{}
	}
	return r.find(ctx, "get completed tasks", docstore.Where(docstore.Eq(fieldOwner, owner), docstore.Eq(fieldCompleted, true)))
}

func (r *Repository) fetch(ctx context.Context, id, owner string) (document, bool) {
	if id == "" || owner == "" {
		return document{}, false
	}
	var doc document
	if err := r.store.FindOne(ctx, Collection, byOwner(id, owner), &doc); err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			r.log.Error("failed to get task", zap.String("task_id", id), zap.Error(err))
		}
		return document{}, false
	}
	return doc, true
}

func (r *Repository) find(ctx context.Context, op string, f docstore.Filter) []service.Task {
	var docs []document
	if err := r.store.FindMany(ctx, Collection, f, &docs); err != nil {
		r.log.Error("failed to "+op, zap.Error(err))
		return []service.Task{}
	}
	out := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, toTask(d))
	}
	sortByCreation(out)
	return out
}

func byOwner(id, owner string) docstore.Filter {
	return docstore.Where(docstore.ByID(id), docstore.Eq(fieldOwner, owner))
}

// toTask normalizes membership: list_ids wins, then the legacy scalar, then my-tasks.
func toTask(d document) service.Task {
	ids := d.ListIDs
	switch {
	case len(ids) > 0:
	case d.LegacyListID != "":
		ids = []string{d.LegacyListID}
	default:
		ids = []string{service.MyTasksListID}
	}
	return service.Task{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Note:        d.Note,
		IsCompleted: d.IsCompleted,
		IsImportant: d.IsImportant,
		DueDate:     d.DueDate,
		ListIDs:     ids,
		ListID:      ids[0],
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func membership(listID string, listIDs []string) []string {
	if ids := dedupe(listIDs); len(ids) > 0 {
		return ids
	}
	if listID != "" {
		return []string{listID}
	}
	return []string{service.MyTasksListID}
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func sortByCreation(ts []service.Task) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })
}
