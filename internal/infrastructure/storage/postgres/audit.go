package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "agroshop/internal/core/context"
	"agroshop/internal/core/entity"
	"agroshop/internal/core/id"
	"agroshop/internal/domain/docflow"
)

// CompressionAlgo specifies the payload compression algorithm.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// TransitionRecord is one row of the document transition trail: who moved
// which document, from where to where, and why.
type TransitionRecord struct {
	ID                id.ID           `db:"id"`
	Kind              string          `db:"kind"`
	DocumentID        id.ID           `db:"document_id"`
	Action            string          `db:"action"`
	FromStatus        string          `db:"from_status"`
	ToStatus          string          `db:"to_status"`
	ActorID           *id.ID          `db:"actor_id"`
	ActorEmail        string          `db:"actor_email"`
	Reason            string          `db:"reason"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService persists the transition trail to sys_audit. Large payloads
// are zstd-compressed before storage.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ docflow.AuditRecorder = (*AuditService)(nil)

// NewAuditService creates the audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// RecordTransition implements docflow.AuditRecorder.
func (s *AuditService) RecordTransition(ctx context.Context, kind string, docID id.ID, action string, from, to entity.Status, actor *appctx.UserContext, reason string) error {
	rec := TransitionRecord{
		ID:         id.New(),
		Kind:       kind,
		DocumentID: docID,
		Action:     action,
		FromStatus: string(from),
		ToStatus:   string(to),
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if actor != nil {
		actorID := actor.UserID
		rec.ActorID = &actorID
		rec.ActorEmail = actor.Email
	}

	payload, err := json.Marshal(map[string]any{
		"from":   rec.FromStatus,
		"to":     rec.ToStatus,
		"action": action,
		"reason": reason,
	})
	if err != nil {
		return fmt.Errorf("marshal transition payload: %w", err)
	}

	rec.Payload = payload
	rec.CompressionAlgo = CompressionNone
	if len(payload) > s.compressThreshold {
		rec.PayloadCompressed = s.encoder.EncodeAll(payload, nil)
		rec.Payload = nil
		rec.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, kind, document_id, action, from_status, to_status,
			actor_id, actor_email, reason,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		rec.ID, rec.Kind, rec.DocumentID, rec.Action, rec.FromStatus, rec.ToStatus,
		rec.ActorID, rec.ActorEmail, rec.Reason,
		rec.Payload, rec.PayloadCompressed, rec.CompressionAlgo, rec.CreatedAt,
	)
	return err
}

// GetHistory returns the transition trail for one document, newest first.
func (s *AuditService) GetHistory(ctx context.Context, kind string, docID id.ID, limit int) ([]TransitionRecord, error) {
	sql := `
		SELECT id, kind, document_id, action, from_status, to_status,
		       actor_id, actor_email, reason,
		       payload, payload_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE kind = $1 AND document_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, kind, docID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var records []TransitionRecord
	for rows.Next() {
		var r TransitionRecord
		err := rows.Scan(
			&r.ID, &r.Kind, &r.DocumentID, &r.Action, &r.FromStatus, &r.ToStatus,
			&r.ActorID, &r.ActorEmail, &r.Reason,
			&r.Payload, &r.PayloadCompressed, &r.CompressionAlgo, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if r.CompressionAlgo == CompressionZstd && len(r.PayloadCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(r.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit payload: %w", err)
			}
			r.Payload = decompressed
			r.PayloadCompressed = nil
		}

		records = append(records, r)
	}
	return records, rows.Err()
}
