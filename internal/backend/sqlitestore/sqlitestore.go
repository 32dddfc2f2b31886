// Package sqlitestore implements docstore.Store on SQLite.
//
// Each collection is a table of (id, doc) rows where doc holds the JSON document.
// Filters compile to json_extract / json_each predicates, so no schema is needed beyond
// the table itself and the expression indexes created by EnsureIndex.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"automator/internal/docstore"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

var (
	collectionPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	fieldPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Store is a SQLite-backed document store.
type Store struct {
	db *sqlx.DB

	mu     sync.Mutex
	tables map[string]bool
}

var _ docstore.Store = (*Store)(nil)

type row struct {
	ID  string `db:"id"`
	Doc string `db:"doc"`
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and UpdateOne's
	// read-modify-write transaction must not interleave with another.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, tables: make(map[string]bool)}
}

// Insert implements docstore.Store.
func (s *Store) Insert(ctx context.Context, collection string, doc any) (string, error) {
	if err := s.ensureTable(ctx, collection); err != nil {
		return "", err
	}
	d, err := docstore.ToDocument(doc)
	if err != nil {
		return "", err
	}
	id := d.ID()
	if id == "" {
		id = uuid.NewString()
		d[docstore.IDField] = id
	}
	data, err := d.Bytes()
	if err != nil {
		return "", err
	}

	query, args, err := sq.Insert(quote(collection)).Columns("id", "doc").Values(id, string(data)).ToSql()
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", wrapError(err)
	}
	return id, nil
}

// FindOne implements docstore.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	if err := s.ensureTable(ctx, collection); err != nil {
		return err
	}
	query, args, err := s.selectDocs(collection, filter).Limit(1).ToSql()
	if err != nil {
		return err
	}
	var r row
	if err := s.db.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.ErrNotFound
		}
		return wrapError(err)
	}
	d, err := docstore.ParseDocument([]byte(r.Doc))
	if err != nil {
		return err
	}
	return d.Decode(out)
}

// FindMany implements docstore.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	if err := s.ensureTable(ctx, collection); err != nil {
		return err
	}
	query, args, err := s.selectDocs(collection, filter).ToSql()
	if err != nil {
		return err
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return wrapError(err)
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, r := range rows {
		d, err := docstore.ParseDocument([]byte(r.Doc))
		if err != nil {
			return err
		}
		docs = append(docs, d)
	}
	return docstore.DecodeAll(docs, out)
}

// UpdateOne implements docstore.Store. The read and the write share one transaction.
func (s *Store) UpdateOne(ctx context.Context, collection string, filter docstore.Filter, update docstore.Update) (docstore.UpdateResult, error) {
	if err := s.ensureTable(ctx, collection); err != nil {
		return docstore.UpdateResult{}, err
	}
	query, args, err := s.selectDocs(collection, filter).Limit(1).ToSql()
	if err != nil {
		return docstore.UpdateResult{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return docstore.UpdateResult{}, wrapError(err)
	}
	defer tx.Rollback()

	var r row
	if err := tx.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.UpdateResult{}, nil
		}
		return docstore.UpdateResult{}, wrapError(err)
	}
	d, err := docstore.ParseDocument([]byte(r.Doc))
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	changed, err := d.Apply(update)
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	res := docstore.UpdateResult{Matched: 1}
	if !changed {
		return res, nil
	}

	data, err := d.Bytes()
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	upd, updArgs, err := sq.Update(quote(collection)).Set("doc", string(data)).Where(sq.Eq{"id": r.ID}).ToSql()
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	if _, err := tx.ExecContext(ctx, upd, updArgs...); err != nil {
		return docstore.UpdateResult{}, wrapError(err)
	}
	if err := tx.Commit(); err != nil {
		return docstore.UpdateResult{}, wrapError(err)
	}
	res.Modified = 1
	return res, nil
}

// DeleteOne implements docstore.Store.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	if err := s.ensureTable(ctx, collection); err != nil {
		return 0, err
	}
	where, err := compile(filter)
	if err != nil {
		return 0, err
	}
	sub := sq.Select("id").From(quote(collection)).OrderBy("rowid").Limit(1)
	if where != nil {
		sub = sub.Where(where)
	}
	subQuery, subArgs, err := sub.ToSql()
	if err != nil {
		return 0, err
	}
	query, args, err := sq.Delete(quote(collection)).Where("id IN ("+subQuery+")", subArgs...).ToSql()
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, query, args)
}

// DeleteMany implements docstore.Store.
func (s *Store) DeleteMany(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	if err := s.ensureTable(ctx, collection); err != nil {
		return 0, err
	}
	where, err := compile(filter)
	if err != nil {
		return 0, err
	}
	del := sq.Delete(quote(collection))
	if where != nil {
		del = del.Where(where)
	}
	query, args, err := del.ToSql()
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, query, args)
}

// EnsureIndex implements docstore.Store with an expression index over the JSON fields.
func (s *Store) EnsureIndex(ctx context.Context, collection string, idx docstore.Index) error {
	if err := s.ensureTable(ctx, collection); err != nil {
		return err
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("index on %s needs at least one field", collection)
	}
	exprs := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		expr, err := fieldExpr(f)
		if err != nil {
			return err
		}
		exprs = append(exprs, expr)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	name := "idx_" + collection + "_" + strings.Join(idx.Fields, "_")
	stmt := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)", unique, quote(name), quote(collection), strings.Join(exprs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	return nil
}

// Close implements docstore.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Store) ensureTable(ctx context.Context, collection string) error {
	if !collectionPattern.MatchString(collection) {
		return fmt.Errorf("invalid collection name: %q", collection)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[collection] {
		return nil
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc TEXT NOT NULL)", quote(collection))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", collection, err)
	}
	s.tables[collection] = true
	return nil
}

func (s *Store) selectDocs(collection string, filter docstore.Filter) sq.SelectBuilder {
	b := sq.Select("id", "doc").From(quote(collection)).OrderBy("rowid")
	where, err := compile(filter)
	if err != nil {
		// Surface the compile error from ToSql.
		return b.Where(errSqlizer{err})
	}
	if where != nil {
		b = b.Where(where)
	}
	return b
}

func (s *Store) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}

// wrapError maps SQLite constraint failures onto docstore sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%v: %w", err, docstore.ErrDuplicate)
	}
	return err
}

func quote(name string) string {
	return `"` + name + `"`
}

type errSqlizer struct{ err error }

func (e errSqlizer) ToSql() (string, []any, error) { return "", nil, e.err }
