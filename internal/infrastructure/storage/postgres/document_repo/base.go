// Package document_repo provides PostgreSQL repositories for warehouse
// documents (goods receipts, customer returns, supplier returns).
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/infrastructure/storage/postgres"
)

// baseDocumentRepo provides the CRUD surface shared by all document kinds.
// Status changes go through CompareAndSetStatus, never plain Update, so a
// transition cannot be overwritten by a stale writer.
type baseDocumentRepo[T any] struct {
	txm        *postgres.TxManager
	inserter   *postgres.BatchInserter
	tableName  string
	selectCols []string
	newFn      func() T
}

func newBaseDocumentRepo[T any](txm *postgres.TxManager, tableName string, newFn func() T) *baseDocumentRepo[T] {
	return &baseDocumentRepo[T]{
		txm:        txm,
		inserter:   postgres.NewBatchInserter(txm),
		tableName:  tableName,
		selectCols: postgres.ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

// builder returns a squirrel builder with $n placeholders.
func (r *baseDocumentRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(r.tableName)
}

// Create inserts a new document row.
func (r *baseDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(r.tableName).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// Update rewrites mutable columns with optimistic locking. Status is
// excluded: it only moves via CompareAndSetStatus.
func (r *baseDocumentRepo[T]) Update(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	docID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "number", "created_at", "created_by", "approved_by":
			continue // immutable
		case "version", "updated_at", "status", "rejection_reason":
			continue // managed by repo / transitions
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Update(r.tableName).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": docID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, docID)
	}
	return nil
}

// CompareAndSetStatus performs the conditional status swap
// (UPDATE ... WHERE id AND status = from). Exactly one of two concurrent
// callers sees true; the loser must not write anything else.
func (r *baseDocumentRepo[T]) CompareAndSetStatus(ctx context.Context, docID id.ID, from, to entity.Status, approvedBy *id.ID, reason string) (bool, error) {
	q := r.builder().
		Update(r.tableName).
		Set("status", to).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": docID}).
		Where(squirrel.Eq{"status": from})

	if approvedBy != nil {
		q = q.Set("approved_by", *approvedBy)
	}
	if reason != "" {
		q = q.Set("rejection_reason", reason)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build status update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("set status %s: %w", r.tableName, err)
	}
	return result.RowsAffected() > 0, nil
}

// CurrentStatus reads the live status of a document.
func (r *baseDocumentRepo[T]) CurrentStatus(ctx context.Context, docID id.ID) (entity.Status, error) {
	sql, args, err := r.builder().
		Select("status").
		From(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build status query: %w", err)
	}

	var status entity.Status
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&status); err != nil {
		if pgxscan.NotFound(err) {
			return "", apperror.NewNotFound(r.tableName, docID.String())
		}
		return "", fmt.Errorf("current status: %w", err)
	}
	return status, nil
}

// Delete removes the row only while its status is one of allowed. Returns
// false when the row exists in a different status or is already gone.
func (r *baseDocumentRepo[T]) Delete(ctx context.Context, docID id.ID, allowed []entity.Status) (bool, error) {
	statuses := make([]string, 0, len(allowed))
	for _, s := range allowed {
		statuses = append(statuses, string(s))
	}

	sql, args, err := r.builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		Where(squirrel.Eq{"status": statuses}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	return result.RowsAffected() > 0, nil
}

// GetByID retrieves a document by ID.
func (r *baseDocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	doc := r.newFn()
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": docID}).ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.tableName, docID.String())
		}
		return doc, fmt.Errorf("get by id: %w", err)
	}
	return doc, nil
}

// GetByNumber retrieves a document by its generated number.
func (r *baseDocumentRepo[T]) GetByNumber(ctx context.Context, number string) (T, error) {
	doc := r.newFn()
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"number": number}).ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.tableName, number)
		}
		return doc, fmt.Errorf("get by number: %w", err)
	}
	return doc, nil
}

// list runs a filtered, counted, paginated select.
func (r *baseDocumentRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	countSQL, countArgs, err := r.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

func (r *baseDocumentRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if strings.TrimSpace(orderBy) == "" {
		return "date DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("field", field)
	}
	return field + " " + direction, nil
}

// replaceLines clears and bulk-reinserts a document's line rows. Must run
// inside the caller's transaction.
func (r *baseDocumentRepo[T]) replaceLines(ctx context.Context, table, fkCol string, docID id.ID, columns []string, rows [][]any) error {
	sql, args, err := r.builder().Delete(table).Where(squirrel.Eq{fkCol: docID}).ToSql()
	if err != nil {
		return fmt.Errorf("build lines delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	if len(rows) == 0 {
		return nil
	}
	if _, err := r.inserter.CopyFromSlice(ctx, table, columns, rows); err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}
	return nil
}

// getLines loads the line rows of a document ordered by line number.
func getLines[L any](ctx context.Context, txm *postgres.TxManager, table, fkCol string, docID id.ID) ([]L, error) {
	cols := postgres.ExtractDBColumns[L]()
	sql, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select(cols...).
		From(table).
		Where(squirrel.Eq{fkCol: docID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var lines []L
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return lines, nil
}
