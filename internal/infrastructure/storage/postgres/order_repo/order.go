// Package order_repo provides the PostgreSQL repository for sales orders.
package order_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
	"agroshop/internal/domain/orders"
	"agroshop/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
	orderFK         = "order_id"
)

var orderItemCols = append(
	[]string{orderFK},
	postgres.ExtractDBColumns[orders.Item]()...,
)

// OrderRepo is the PostgreSQL implementation of orders.Repository.
type OrderRepo struct {
	txm        *postgres.TxManager
	inserter   *postgres.BatchInserter
	selectCols []string
}

var _ orders.Repository = (*OrderRepo)(nil)

func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:        txm,
		inserter:   postgres.NewBatchInserter(txm),
		selectCols: postgres.ExtractDBColumns[orders.Order](),
	}
}

func (r *OrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *OrderRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(ordersTable)
}

// Create inserts a new order row.
func (r *OrderRepo) Create(ctx context.Context, order *orders.Order) error {
	data := postgres.StructToMap(order)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(ordersTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	order := &orders.Order{}
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": orderID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(ordersTable, orderID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return order, nil
}

// GetByNumber retrieves an order by its public order number.
func (r *OrderRepo) GetByNumber(ctx context.Context, orderNo string) (*orders.Order, error) {
	order := &orders.Order{}
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"order_no": orderNo}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(ordersTable, orderNo)
		}
		return nil, fmt.Errorf("get by number: %w", err)
	}
	return order, nil
}

// UpdateStatus performs the conditional lifecycle swap. Returns false when
// the row was no longer in the expected status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, from, to orders.Status, notes *string) (bool, error) {
	q := r.builder().
		Update(ordersTable).
		Set("status", to).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID}).
		Where(squirrel.Eq{"status": from})

	if notes != nil {
		q = q.Set("notes", *notes)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build status update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// CurrentStatus reads the live order status.
func (r *OrderRepo) CurrentStatus(ctx context.Context, orderID id.ID) (orders.Status, error) {
	sql, args, err := r.builder().
		Select("status").
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build status query: %w", err)
	}

	var status orders.Status
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&status); err != nil {
		if pgxscan.NotFound(err) {
			return "", apperror.NewNotFound(ordersTable, orderID.String())
		}
		return "", fmt.Errorf("current status: %w", err)
	}
	return status, nil
}

// GetItems loads the order lines ordered by line number.
func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]orders.Item, error) {
	cols := postgres.ExtractDBColumns[orders.Item]()
	sql, args, err := r.builder().
		Select(cols...).
		From(orderItemsTable).
		Where(squirrel.Eq{orderFK: orderID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var items []orders.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	return items, nil
}

// SaveItems replaces the full line collection. Must run inside the caller's
// transaction.
func (r *OrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []orders.Item) error {
	sql, args, err := r.builder().Delete(orderItemsTable).Where(squirrel.Eq{orderFK: orderID}).ToSql()
	if err != nil {
		return fmt.Errorf("build lines delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{orderID, it.ItemID, it.LineNo, it.ProductUnitID, it.Quantity, it.Price, it.DiscountAmount, it.VatRate, it.VatAmount, it.Amount})
	}
	if _, err := r.inserter.CopyFromSlice(ctx, orderItemsTable, orderItemCols, rows); err != nil {
		return fmt.Errorf("copy order items: %w", err)
	}
	return nil
}

// List returns orders matching the filter.
func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) (domain.ListResult[*orders.Order], error) {
	result := domain.ListResult[*orders.Order]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.BuyerID != nil {
		q = q.Where(squirrel.Eq{"buyer_id": *filter.BuyerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.IsOnline != nil {
		q = q.Where(squirrel.Eq{"is_online": *filter.IsOnline})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"order_no": "%" + filter.Search + "%"})
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
		return result, fmt.Errorf("list orders: %w", err)
	}
	return result, nil
}

func (r *OrderRepo) parseOrderBy(orderBy string) (string, error) {
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
