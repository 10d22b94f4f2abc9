package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/database"
)

type auditLogRepositoryImpl struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Sink {
	return &auditLogRepositoryImpl{db: db}
}

// Record implements audit.Sink.
func (a *auditLogRepositoryImpl) Record(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to encode audit changes: %w", err)
	}

	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO audit_logs (
			id, company_id, table_name, record_id, action, actor_id, reason_code, changes, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, NOW()
		) RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query,
		entry.CompanyID, entry.TableName, entry.RecordID, string(entry.Action),
		entry.ActorID, entry.ReasonCode, changes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("failed to write audit log for %s %s: %w", entry.TableName, entry.RecordID, err)
	}

	return entry, nil
}
