package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the tables used by the DTR engine if they are missing.
func ApplySchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
