package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/Yaocool/code-simplify/errors"
	"github.com/Yaocool/code-simplify/logger"
	"github.com/Yaocool/code-simplify/validation"
)

const (
	defaultPrimaryKeyColumn = "id"
	defaultSoftDeleteColumn = "is_deleted"

	defaultPage     = 1
	defaultPageSize = 20
)

// Client is a generic CRUD helper over three type roles: M is the persisted
// entity, Mut the caller-facing write shape, Res the caller-facing read
// shape. Mapping between roles is explicit via the two conversion functions.
type Client[M, Mut, Res any] struct {
	db *DB
	tx *gorm.DB

	fromMutation func(Mut) *M
	toResource   func(*M) Res

	pkColumn      string
	softDeleteCol string
	validate      bool
	log           *logger.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	pkColumn      string
	softDeleteCol string
	validate      bool
	log           *logger.Logger
}

// WithPrimaryKeyColumn overrides the primary key column name.
func WithPrimaryKeyColumn(column string) Option {
	return func(o *clientOptions) { o.pkColumn = column }
}

// WithSoftDeleteColumn overrides the soft-delete flag column name. An empty
// name disables soft-delete handling entirely: reads never filter on a flag
// and SoftDelete returns an error.
func WithSoftDeleteColumn(column string) Option {
	return func(o *clientOptions) { o.softDeleteCol = column }
}

// WithValidation enables struct-tag validation of mutations before writes.
func WithValidation() Option {
	return func(o *clientOptions) { o.validate = true }
}

// WithLogger sets the logger used by the client.
func WithLogger(log *logger.Logger) Option {
	return func(o *clientOptions) { o.log = log }
}

// NewClient builds a CRUD client for the three type roles. fromMutation and
// toResource define the mapping between the caller-facing shapes and the
// persisted entity.
func NewClient[M, Mut, Res any](db *DB, fromMutation func(Mut) *M, toResource func(*M) Res, opts ...Option) *Client[M, Mut, Res] {
	o := clientOptions{
		pkColumn:      defaultPrimaryKeyColumn,
		softDeleteCol: defaultSoftDeleteColumn,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("database")
	}
	return &Client[M, Mut, Res]{
		db:            db,
		fromMutation:  fromMutation,
		toResource:    toResource,
		pkColumn:      o.pkColumn,
		softDeleteCol: o.softDeleteCol,
		validate:      o.validate,
		log:           o.log,
	}
}

// WithTx returns a copy of the client bound to a caller-owned transaction.
// The client never commits or rolls back a bound transaction; the caller
// owns its lifecycle.
func (c *Client[M, Mut, Res]) WithTx(tx *gorm.DB) *Client[M, Mut, Res] {
	clone := *c
	clone.tx = tx
	return &clone
}

// GetOption adjusts a single Get call.
type GetOption func(*getOptions)

type getOptions struct {
	rangeAll bool
}

// RangeAll includes soft-deleted rows in the lookup.
func RangeAll() GetOption {
	return func(o *getOptions) { o.rangeAll = true }
}

// Get fetches the entity with the given primary key and returns its resource
// form. Soft-deleted rows are invisible unless RangeAll is passed. A missing
// row yields ErrNotFound.
func (c *Client[M, Mut, Res]) Get(ctx context.Context, key any, opts ...GetOption) (Res, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	var zero Res
	tx := c.session(ctx).Where(c.pkColumn+" = ?", key)
	if c.softDeleteCol != "" && !o.rangeAll {
		tx = tx.Where(c.softDeleteCol+" = ?", false)
	}

	model := new(M)
	if err := tx.First(model).Error; err != nil {
		return zero, wrapErr("get", err)
	}
	return c.toResource(model), nil
}

// List returns all matching resources. Soft-deleted rows are excluded unless
// the filter opts in via IncludeDeleted.
func (c *Client[M, Mut, Res]) List(ctx context.Context, f *Filter) ([]Res, error) {
	var models []M
	if err := c.readScope(ctx, f).Find(&models).Error; err != nil {
		return nil, wrapErr("list", err)
	}
	return c.toResources(models), nil
}

// Page returns the total match count and one page of resources. page defaults
// to 1 and pageSize to 20 when non-positive. direction must be "asc" or
// "desc" when an order column is given. A zero total short-circuits without
// issuing the data query.
func (c *Client[M, Mut, Res]) Page(ctx context.Context, page, pageSize int, orderColumn, direction string, f *Filter) (int64, []Res, error) {
	if page <= 0 {
		page = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	desc := false
	if orderColumn != "" {
		switch direction {
		case "asc":
		case "desc":
			desc = true
		default:
			return 0, nil, apperrors.BadRequestf("invalid order direction %q, must be asc or desc", direction)
		}
	}

	total, err := c.Count(ctx, f)
	if err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, []Res{}, nil
	}

	tx := c.readScope(ctx, f)
	if orderColumn != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: orderColumn}, Desc: desc})
	}
	var models []M
	if err := tx.Offset((page - 1) * pageSize).Limit(pageSize).Find(&models).Error; err != nil {
		return 0, nil, wrapErr("page", err)
	}
	return total, c.toResources(models), nil
}

// Count returns the number of matching rows under the filter's range mode.
func (c *Client[M, Mut, Res]) Count(ctx context.Context, f *Filter) (int64, error) {
	var total int64
	if err := c.readScope(ctx, f).Count(&total).Error; err != nil {
		return 0, wrapErr("count", err)
	}
	return total, nil
}

// Create persists the mutation as a new entity. A string primary key field
// left empty is populated with a generated hex identifier before insert.
func (c *Client[M, Mut, Res]) Create(ctx context.Context, mut Mut) (Res, error) {
	var zero Res
	if err := c.checkMutation(mut); err != nil {
		return zero, err
	}

	model := c.fromMutation(mut)
	if _, err := ensureKey(model, c.pkColumn); err != nil {
		return zero, apperrors.Internalf("resolve primary key: %v", err).WithCause(err)
	}

	err := c.write(ctx, func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return zero, wrapErr("create", err)
	}
	return c.toResource(model), nil
}

// BulkCreate persists all mutations in a single transaction, generating
// missing primary keys per element.
func (c *Client[M, Mut, Res]) BulkCreate(ctx context.Context, muts []Mut) ([]Res, error) {
	if len(muts) == 0 {
		return []Res{}, nil
	}

	models := make([]*M, 0, len(muts))
	for _, mut := range muts {
		if err := c.checkMutation(mut); err != nil {
			return nil, err
		}
		model := c.fromMutation(mut)
		if _, err := ensureKey(model, c.pkColumn); err != nil {
			return nil, apperrors.Internalf("resolve primary key: %v", err).WithCause(err)
		}
		models = append(models, model)
	}

	err := c.write(ctx, func(tx *gorm.DB) error {
		return tx.Create(models).Error
	})
	if err != nil {
		return nil, wrapErr("bulk create", err)
	}

	resources := make([]Res, 0, len(models))
	for _, model := range models {
		resources = append(resources, c.toResource(model))
	}
	return resources, nil
}

// Update applies the mutation's non-zero fields to the row identified by the
// explicit key, falling back to the mutation's own primary key field. Both
// absent is a BadRequest. The returned resource reflects the in-memory state
// of the applied mutation; when the client is bound to an uncommitted
// caller-owned transaction this is the pending state, not a committed read.
func (c *Client[M, Mut, Res]) Update(ctx context.Context, mut Mut, keys ...any) (Res, error) {
	var zero Res
	if err := c.checkMutation(mut); err != nil {
		return zero, err
	}

	model := c.fromMutation(mut)
	var key any
	if len(keys) > 0 && !isEmptyValue(keys[0]) {
		key = keys[0]
	} else if k, ok := readKey(model, c.pkColumn); ok {
		key = k
	} else {
		return zero, apperrors.BadRequest("update requires a primary key, none found in arguments or mutation")
	}

	err := c.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(new(M)).Where(c.pkColumn+" = ?", key).Updates(model).Error
	})
	if err != nil {
		return zero, wrapErr("update", err)
	}

	setKey(model, c.pkColumn, key)
	return c.toResource(model), nil
}

// SoftDelete marks the rows with the given keys as deleted by setting the
// flag column. Rows are never removed.
func (c *Client[M, Mut, Res]) SoftDelete(ctx context.Context, keys ...any) error {
	if c.softDeleteCol == "" {
		return apperrors.Internal("soft delete is disabled for this client")
	}
	if len(keys) == 0 {
		return apperrors.BadRequest("soft delete requires at least one key")
	}

	err := c.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(new(M)).
			Where(c.pkColumn+" IN ?", keys).
			Update(c.softDeleteCol, true).Error
	})
	return wrapErr("soft delete", err)
}

// HardDelete removes the row with the given key regardless of its
// soft-delete state.
func (c *Client[M, Mut, Res]) HardDelete(ctx context.Context, key any) error {
	err := c.write(ctx, func(tx *gorm.DB) error {
		return tx.Where(c.pkColumn+" = ?", key).Delete(new(M)).Error
	})
	return wrapErr("hard delete", err)
}

// RawQuery runs a raw SQL query and returns the rows as generic maps.
func (c *Client[M, Mut, Res]) RawQuery(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	var rows []map[string]any
	if err := c.session(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, wrapErr("raw query", err)
	}
	return rows, nil
}

// Exec runs a raw SQL statement inside the client's write scope.
func (c *Client[M, Mut, Res]) Exec(ctx context.Context, sql string, args ...any) error {
	err := c.write(ctx, func(tx *gorm.DB) error {
		return tx.Exec(sql, args...).Error
	})
	return wrapErr("exec", err)
}

// session returns the read handle: the bound transaction when present,
// otherwise a context-scoped session on the pool.
func (c *Client[M, Mut, Res]) session(ctx context.Context) *gorm.DB {
	if c.tx != nil {
		return c.tx.WithContext(ctx)
	}
	return c.db.Session(ctx)
}

// readScope builds the base query for read operations: model, filter
// conditions, and the soft-delete predicate unless the filter widens the
// range.
func (c *Client[M, Mut, Res]) readScope(ctx context.Context, f *Filter) *gorm.DB {
	tx := f.apply(c.session(ctx).Model(new(M)))
	if c.softDeleteCol != "" && !f.rangeAll() {
		tx = tx.Where(c.softDeleteCol+" = ?", false)
	}
	return tx
}

// write runs fn in the client's write scope. With a bound transaction fn runs
// directly on it and the caller keeps commit/rollback ownership; otherwise fn
// runs in a fresh transaction that is rolled back when fn fails.
func (c *Client[M, Mut, Res]) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if c.tx != nil {
		return fn(c.tx.WithContext(ctx))
	}
	return c.db.Gorm.WithContext(ctx).Transaction(fn)
}

// checkMutation validates the mutation when validation is enabled.
func (c *Client[M, Mut, Res]) checkMutation(mut Mut) error {
	if !c.validate {
		return nil
	}
	return validation.Validate(mut)
}

func (c *Client[M, Mut, Res]) toResources(models []M) []Res {
	resources := make([]Res, 0, len(models))
	for i := range models {
		resources = append(resources, c.toResource(&models[i]))
	}
	return resources
}
