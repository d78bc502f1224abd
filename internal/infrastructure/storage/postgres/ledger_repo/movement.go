// Package ledger_repo provides the PostgreSQL repository for the inventory
// movement register. The table is append-only; this repo deliberately has
// no update or delete.
package ledger_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/ledger"
	"agroshop/internal/infrastructure/storage/postgres"
)

const movementsTable = "inventory_movements"

// MovementRepo is the PostgreSQL implementation of ledger.Repository.
type MovementRepo struct {
	txm        *postgres.TxManager
	inserter   *postgres.BatchInserter
	selectCols []string
}

var _ ledger.Repository = (*MovementRepo)(nil)

func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txm:        txm,
		inserter:   postgres.NewBatchInserter(txm),
		selectCols: postgres.ExtractDBColumns[ledger.Movement](),
	}
}

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CreateBatch inserts movements over the COPY protocol. Requires the
// caller's transaction in ctx: movements only ever appear together with the
// transition that produced them.
func (r *MovementRepo) CreateBatch(ctx context.Context, movements []ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.ID, m.ProductUnitID, m.WarehouseID, string(m.Type),
			m.Quantity, m.RefTable, m.RefID, m.CreatedAt,
		})
	}

	if _, err := r.inserter.CopyFromSlice(ctx, movementsTable, r.selectCols, rows); err != nil {
		return fmt.Errorf("copy movements: %w", err)
	}
	return nil
}

// GetByRef retrieves the movements a specific document produced.
func (r *MovementRepo) GetByRef(ctx context.Context, refTable string, refID id.ID) ([]ledger.Movement, error) {
	sql, args, err := r.builder().
		Select(r.selectCols...).
		From(movementsTable).
		Where(squirrel.Eq{"ref_table": refTable}).
		Where(squirrel.Eq{"ref_id": refID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("get movements by ref: %w", err)
	}
	return movements, nil
}

// List retrieves movements with filtering and pagination.
func (r *MovementRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[ledger.Movement], error) {
	result := domain.ListResult[ledger.Movement]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().Select(r.selectCols...).From(movementsTable)

	if filter.ProductUnitID != nil {
		q = q.Where(squirrel.Eq{"product_unit_id": *filter.ProductUnitID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": string(*filter.Type)})
	}
	if filter.RefTable != "" {
		q = q.Where(squirrel.Eq{"ref_table": filter.RefTable})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
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
		return result, fmt.Errorf("list movements: %w", err)
	}
	return result, nil
}

func (r *MovementRepo) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if strings.TrimSpace(orderBy) == "" {
		return "created_at DESC", nil
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
