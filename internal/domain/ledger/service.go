package ledger

import (
	"context"
	"fmt"

	"agroshop/internal/core/apperror"
	"agroshop/internal/core/id"
	"agroshop/internal/domain"
)

// Service guards writes into the movement register.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append records movements produced by a document's terminal transition.
// The caller is responsible for running it inside the same transaction as
// the status change; Append itself only validates the entries.
func (s *Service) Append(ctx context.Context, movements []Movement) error {
	for i, m := range movements {
		if !m.Type.IsValid() {
			return apperror.NewValidation("unknown movement type").
				WithDetail("type", string(m.Type)).
				WithDetail("index", i)
		}
		if m.Quantity <= 0 {
			return apperror.NewValidation("movement quantity must be positive").
				WithDetail("index", i)
		}
		if id.IsNil(m.ProductUnitID) || id.IsNil(m.WarehouseID) {
			return apperror.NewValidation("movement requires product unit and warehouse").
				WithDetail("index", i)
		}
		if m.RefTable == "" || id.IsNil(m.RefID) {
			return apperror.NewValidation("movement requires a document reference").
				WithDetail("index", i)
		}
	}

	if err := s.repo.CreateBatch(ctx, movements); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}
	return nil
}

// GetByRef retrieves movements created by a specific document.
func (s *Service) GetByRef(ctx context.Context, refTable string, refID id.ID) ([]Movement, error) {
	return s.repo.GetByRef(ctx, refTable, refID)
}

// List retrieves movements with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Movement], error) {
	return s.repo.List(ctx, filter)
}
