package goods_receipt

import (
	"context"
	"time"

	"agroshop/internal/core/apperror"
	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/id"
	"agroshop/internal/core/numerator"
	"agroshop/internal/core/tx"
	"agroshop/internal/domain"
	"agroshop/internal/domain/docflow"
	"agroshop/pkg/logger"
)

// NumberPrefix for generated receipt numbers, e.g. GR-2026-00042.
const NumberPrefix = "GR"

// Service owns goods receipt business logic.
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

// Create validates the document, assigns a sequential number and persists the
// document with its items in one transaction.
func (s *Service) Create(ctx context.Context, doc *GoodsReceipt, actor *appctx.UserContext) error {
	doc.RecalculateTotal()
	if doc.PaymentStatus == "" {
		doc.PaymentStatus = PaymentUnpaid
	}
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

	logger.Info(ctx, "goods receipt created",
		"document_id", doc.ID,
		"number", doc.Number,
		"supplier_id", doc.SupplierID,
		"total", doc.TotalAmount,
	)
	return nil
}

// GetByID loads the document with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*GoodsReceipt, error) {
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

// GetByNumber loads the document by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*GoodsReceipt, error) {
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

// Update replaces the mutable fields and the whole item collection while the
// document is still in DRAFT. The total is recomputed server-side.
func (s *Service) Update(ctx context.Context, doc *GoodsReceipt) error {
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

// Confirm transitions DRAFT -> CONFIRMED and posts purchase movements.
func (s *Service) Confirm(ctx context.Context, docID id.ID, actor *appctx.UserContext) (*GoodsReceipt, error) {
	return s.transition(ctx, docID, docflow.ActionConfirm, actor, "")
}

// Cancel transitions DRAFT -> CANCELLED. No movements are posted.
func (s *Service) Cancel(ctx context.Context, docID id.ID, actor *appctx.UserContext) (*GoodsReceipt, error) {
	return s.transition(ctx, docID, docflow.ActionCancel, actor, "")
}

func (s *Service) transition(ctx context.Context, docID id.ID, action docflow.Action, actor *appctx.UserContext, reason string) (*GoodsReceipt, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Transition(ctx, Workflow(), s.repo, doc, action, actor, reason); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete hard-deletes a receipt in DRAFT or CANCELLED. The status condition
// sits in the DELETE itself so a concurrent confirm cannot slip past it.
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

	logger.Info(ctx, "goods receipt deleted", "document_id", docID)
	return nil
}

// MarkPaid updates the supplier payment status without touching the lifecycle.
func (s *Service) MarkPaid(ctx context.Context, docID id.ID, paymentStatus string) (*GoodsReceipt, error) {
	switch paymentStatus {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
	default:
		return nil, apperror.NewValidation("unknown payment status").
			WithDetail("paymentStatus", paymentStatus)
	}

	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.PaymentStatus = paymentStatus
	doc.SetUpdatedAt(time.Now())
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns receipts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*GoodsReceipt], error) {
	return s.repo.List(ctx, filter)
}
