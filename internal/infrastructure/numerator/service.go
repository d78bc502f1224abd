// Package numerator provides the PostgreSQL implementation of document
// auto-numbering. It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "agroshop/internal/core/numerator"
	"agroshop/internal/infrastructure/storage/postgres"
)

// Querier is the minimal database surface the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service allocates sequential document numbers from sys_sequences using
// an UPSERT + RETURNING round-trip. The row-level lock taken by the UPDATE
// serializes concurrent allocations of the same sequence.
//
// When built with a TxManager the allocation joins the transaction that
// persists the document: a rolled-back document releases its number only to
// that aborted transaction, never to a committed one.
type Service struct {
	txm    *postgres.TxManager
	static Querier
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service bound to the transaction manager.
func New(txm *postgres.TxManager) *Service {
	return &Service{txm: txm}
}

// NewWithQuerier creates a numerator service with a fixed querier.
// Intended for tests.
func NewWithQuerier(querier Querier) *Service {
	return &Service{static: querier}
}

func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.txm != nil {
		return s.txm.GetQuerier(ctx)
	}
	return s.static
}

// GetNextNumber allocates the next number for the sequence identified by
// the config prefix and period. Pattern: PREFIX-YEAR-XXXXX
// (e.g., ORD-2026-00123).
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil || (s.txm == nil && s.static == nil) {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := buildKey(cfg, period)

	var num int64
	err := s.getQuerier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return formatNumber(cfg, period, num), nil
}

// SetNextNumber positions a sequence so the next allocation returns value.
// Administrative operation, e.g. after importing historical documents.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	if value < 1 {
		return fmt.Errorf("next number must be positive, got %d", value)
	}

	key := buildKey(cfg, period)

	var current int64
	err := s.getQuerier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET current_val = EXCLUDED.current_val
        RETURNING current_val
	`, key, value-1).Scan(&current)
	if err != nil {
		return fmt.Errorf("set next number for %s: %w", key, err)
	}
	return nil
}

// buildKey derives the sequence identity. A yearly reset period makes each
// year its own sequence row.
func buildKey(cfg corenumerator.Config, period time.Time) string {
	if strings.EqualFold(cfg.ResetPeriod, "year") {
		return fmt.Sprintf("%s-%d", cfg.Prefix, period.Year())
	}
	return cfg.Prefix
}

func formatNumber(cfg corenumerator.Config, period time.Time, num int64) string {
	pad := cfg.PadWidth
	if pad <= 0 {
		pad = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, period.Year(), pad, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, pad, num)
}
