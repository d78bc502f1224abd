package supplier_return

import (
	"context"

	"agroshop/internal/core/apperror"
	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/id"
	"agroshop/internal/core/numerator"
	"agroshop/internal/core/tx"
	"agroshop/internal/domain"
	"agroshop/internal/domain/docflow"
	"agroshop/pkg/logger"
)

// NumberPrefix for generated return numbers, e.g. SRN-2026-00003.
const NumberPrefix = "SRN"

// Service owns supplier return business logic.
type Service struct {
	repo      Repository
	engine    *docflow.Engine
	numerator numerator.Generator
	txManager tx.Manager
}

func NewService(repo Repository, engine *docflow.Engine, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		numerator: gen,
		txManager: txManager,
	}
}

// Create validates the return, assigns a sequential number and persists the
// document with its items in one transaction.
func (s *Service) Create(ctx context.Context, doc *SupplierReturn, actor *appctx.UserContext) error {
	doc.RecalculateTotal()
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if actor != nil {
		doc.CreatedByID = &actor.UserID
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), doc.Date)
		if err != nil {
			return err
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}
		return s.repo.SaveItems(ctx, doc.ID, doc.Items)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "supplier return created",
		"document_id", doc.ID,
		"number", doc.Number,
		"supplier_id", doc.SupplierID,
		"total_return", doc.TotalReturn,
	)
	return nil
}

// GetByID loads the return with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*SupplierReturn, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	return doc, nil
}

// GetByNumber loads the return by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*SupplierReturn, error) {
	doc, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items
	return doc, nil
}

// Update replaces the mutable fields and the item collection while the
// return is still PENDING. The return total is recomputed server-side.
func (s *Service) Update(ctx context.Context, doc *SupplierReturn) error {
	if err := s.engine.EnsureUpdatable(Workflow(), doc); err != nil {
		return err
	}

	doc.ReplaceItems(doc.Items)
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.repo.SaveItems(ctx, doc.ID, doc.Items)
	})
}

// Approve transitions PENDING -> APPROVED, posts return-out movements and
// records the approver.
func (s *Service) Approve(ctx context.Context, docID id.ID, actor *appctx.UserContext) (*SupplierReturn, error) {
	return s.transition(ctx, docID, docflow.ActionApprove, actor, "")
}

// Reject transitions PENDING -> REJECTED. A non-empty reason is required.
func (s *Service) Reject(ctx context.Context, docID id.ID, actor *appctx.UserContext, reason string) (*SupplierReturn, error) {
	doc, err := s.transition(ctx, docID, docflow.ActionReject, actor, reason)
	if err != nil {
		return nil, err
	}
	doc.RejectionReason = reason
	return doc, nil
}

// Cancel transitions PENDING -> CANCELLED. No movements are posted.
func (s *Service) Cancel(ctx context.Context, docID id.ID, actor *appctx.UserContext) (*SupplierReturn, error) {
	return s.transition(ctx, docID, docflow.ActionCancel, actor, "")
}

func (s *Service) transition(ctx context.Context, docID id.ID, action docflow.Action, actor *appctx.UserContext, reason string) (*SupplierReturn, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Transition(ctx, Workflow(), s.repo, doc, action, actor, reason); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete hard-deletes a return in PENDING or CANCELLED.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	wf := Workflow()
	deleted, err := s.repo.Delete(ctx, docID, wf.Deletable)
	if err != nil {
		return err
	}
	if !deleted {
		status, err := s.repo.CurrentStatus(ctx, docID)
		if err != nil {
			return err
		}
		return apperror.NewInvalidState(string(status), string(docflow.ActionDelete))
	}

	logger.Info(ctx, "supplier return deleted", "document_id", docID)
	return nil
}

// List returns supplier returns matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SupplierReturn], error) {
	return s.repo.List(ctx, filter)
}
