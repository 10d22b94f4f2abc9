package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveTransactionColumns = `
	id, balance_id, employee_id, leave_type_id, year,
	transaction_type, amount, running_balance,
	reference_type, reference_id, reverses_id,
	remarks, created_by, created_at`

type leaveTransactionRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTransactionRepository(db *database.DB) leave.TransactionRepository {
	return &leaveTransactionRepositoryImpl{db: db}
}

// Append implements leave.TransactionRepository.
func (r *leaveTransactionRepositoryImpl) Append(ctx context.Context, tx leave.Transaction) (leave.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balance_transactions (
			id, balance_id, employee_id, leave_type_id, year,
			transaction_type, amount, running_balance,
			reference_type, reference_id, reverses_id,
			remarks, created_by, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING` + leaveTransactionColumns

	created, err := scanLeaveTransaction(q.QueryRow(ctx, query,
		tx.ID, tx.BalanceID, tx.EmployeeID, tx.LeaveTypeID, tx.Year,
		string(tx.Type), tx.Amount, tx.RunningBalance,
		tx.ReferenceType, tx.ReferenceID, tx.ReversesID,
		tx.Remarks, tx.CreatedBy, tx.CreatedAt,
	))
	if err != nil {
		return leave.Transaction{}, fmt.Errorf("failed to append leave transaction: %w", err)
	}

	return created, nil
}

// GetByID implements leave.TransactionRepository.
func (r *leaveTransactionRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveTransactionColumns + `
		FROM leave_balance_transactions
		WHERE id = $1
	`

	tx, err := scanLeaveTransaction(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Transaction{}, leave.ErrTransactionNotFound
		}
		return leave.Transaction{}, fmt.Errorf("failed to get leave transaction with id %s: %w", id, err)
	}

	return tx, nil
}

// ListByReference implements leave.TransactionRepository.
func (r *leaveTransactionRepositoryImpl) ListByReference(ctx context.Context, referenceType, referenceID string) ([]leave.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + leaveTransactionColumns + `
		FROM leave_balance_transactions
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]leave.Transaction, 0)
	for rows.Next() {
		tx, err := scanLeaveTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

func scanLeaveTransaction(row pgx.Row) (leave.Transaction, error) {
	var tx leave.Transaction
	var transactionType string

	err := row.Scan(
		&tx.ID, &tx.BalanceID, &tx.EmployeeID, &tx.LeaveTypeID, &tx.Year,
		&transactionType, &tx.Amount, &tx.RunningBalance,
		&tx.ReferenceType, &tx.ReferenceID, &tx.ReversesID,
		&tx.Remarks, &tx.CreatedBy, &tx.CreatedAt,
	)
	if err != nil {
		return leave.Transaction{}, err
	}
	tx.Type = leave.TransactionType(transactionType)

	return tx, nil
}
