package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/leave"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reconciler keeps exactly one outstanding USAGE ledger row per DTR record.
// Every method must run inside the caller's transaction.
type Reconciler struct {
	balances     leave.LeaveBalanceRepository
	transactions leave.TransactionRepository
	now          func() time.Time
	newID        func() (string, error)
}

func NewReconciler(balances leave.LeaveBalanceRepository, transactions leave.TransactionRepository) *Reconciler {
	return &Reconciler{
		balances:     balances,
		transactions: transactions,
		now:          time.Now,
		newID:        newTransactionID,
	}
}

func newTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type ReconcileInput struct {
	EmployeeID  string
	ReferenceID string
	// Active is the outstanding usage for the record, nil when none.
	Active *leave.Transaction
	// Desired is the usage the record should carry, nil when none.
	Desired *leave.Usage
	ActorID string
	Remarks string
}

type ReconcileResult struct {
	ActiveTransactionID *string
	Appended            []leave.Transaction
}

// LoadActive fetches the usage transaction the record points at and checks it
// against the ledger rows of the record. A pointer to a missing row, a
// non-usage row or a row of another record means the books were corrupted
// earlier, as does any outstanding usage other than the pointed one.
func (r *Reconciler) LoadActive(ctx context.Context, transactionID *string, referenceID string) (*leave.Transaction, error) {
	var active *leave.Transaction
	if transactionID != nil {
		tx, err := r.transactions.GetByID(ctx, *transactionID)
		if err != nil {
			if errors.Is(err, leave.ErrTransactionNotFound) {
				return nil, &leave.LedgerInconsistencyError{
					TransactionID: *transactionID,
					Reason:        "active usage transaction does not exist",
				}
			}
			return nil, fmt.Errorf("failed to get active leave transaction: %w", err)
		}

		if tx.Type != leave.TransactionTypeUsage {
			return nil, &leave.LedgerInconsistencyError{
				TransactionID: tx.ID,
				Reason:        fmt.Sprintf("active transaction has type %s, expected USAGE", tx.Type),
			}
		}
		if tx.ReferenceType != leave.ReferenceTypeDailyTimeRecord || tx.ReferenceID != referenceID {
			return nil, &leave.LedgerInconsistencyError{
				TransactionID: tx.ID,
				Reason:        fmt.Sprintf("active transaction references %s %s", tx.ReferenceType, tx.ReferenceID),
			}
		}
		active = &tx
	}

	outstanding, err := r.outstandingUsages(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	for _, id := range outstanding {
		if active == nil || id != active.ID {
			return nil, &leave.LedgerInconsistencyError{
				TransactionID: id,
				Reason:        fmt.Sprintf("usage transaction is outstanding for record %s but not active", referenceID),
			}
		}
	}
	if active != nil && len(outstanding) == 0 {
		return nil, &leave.LedgerInconsistencyError{
			TransactionID: active.ID,
			Reason:        "active usage transaction was already reversed",
		}
	}

	return active, nil
}

// outstandingUsages returns the ids of the record's USAGE rows that no
// ADJUSTMENT reverses, in ledger order.
func (r *Reconciler) outstandingUsages(ctx context.Context, referenceID string) ([]string, error) {
	rows, err := r.transactions.ListByReference(ctx, leave.ReferenceTypeDailyTimeRecord, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave transactions: %w", err)
	}

	reversed := make(map[string]bool)
	for _, tx := range rows {
		if tx.Type == leave.TransactionTypeAdjustment && tx.ReversesID != nil {
			reversed[*tx.ReversesID] = true
		}
	}

	var ids []string
	for _, tx := range rows {
		if tx.Type == leave.TransactionTypeUsage && !reversed[tx.ID] {
			ids = append(ids, tx.ID)
		}
	}
	return ids, nil
}

// Reconcile converges the ledger from in.Active to in.Desired.
func (r *Reconciler) Reconcile(ctx context.Context, in ReconcileInput) (ReconcileResult, error) {
	var result ReconcileResult
	if in.Active != nil {
		id := in.Active.ID
		result.ActiveTransactionID = &id
	}

	if in.Active == nil && in.Desired == nil {
		return result, nil
	}

	if in.Active != nil && in.Desired != nil && in.Active.Usage().Matches(*in.Desired) {
		slog.Debug("Leave usage already up to date",
			"reference_id", in.ReferenceID,
			"transaction_id", in.Active.ID,
		)
		return result, nil
	}

	if in.Active != nil {
		adjustment, err := r.reverse(ctx, in, *in.Active)
		if err != nil {
			return ReconcileResult{}, err
		}
		result.Appended = append(result.Appended, adjustment)
		result.ActiveTransactionID = nil
	}

	if in.Desired != nil {
		usage, err := r.apply(ctx, in, *in.Desired)
		if err != nil {
			return ReconcileResult{}, err
		}
		result.Appended = append(result.Appended, usage)
		id := usage.ID
		result.ActiveTransactionID = &id
	}

	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, in ReconcileInput, usage leave.Usage) (leave.Transaction, error) {
	amount := usage.Amount.Round(2)

	balance, err := r.balances.GetForUpdate(ctx, in.EmployeeID, usage.LeaveTypeID, usage.Year)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.Transaction{}, &leave.InsufficientBalanceError{
				EmployeeID:  in.EmployeeID,
				LeaveTypeID: usage.LeaveTypeID,
				Year:        usage.Year,
				Available:   decimal.Zero,
				Requested:   amount,
			}
		}
		return leave.Transaction{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}

	if balance.Available().LessThan(amount) {
		return leave.Transaction{}, &leave.InsufficientBalanceError{
			EmployeeID:  in.EmployeeID,
			LeaveTypeID: usage.LeaveTypeID,
			Year:        usage.Year,
			Available:   balance.Available(),
			Requested:   amount,
		}
	}

	balance.CurrentBalance = balance.CurrentBalance.Sub(amount)
	balance.UsedCredits = balance.UsedCredits.Add(amount)

	if err := r.balances.UpdateAmounts(ctx, balance); err != nil {
		return leave.Transaction{}, fmt.Errorf("failed to update leave balance: %w", err)
	}

	return r.appendEntry(ctx, in, balance, leave.Transaction{
		Type:   leave.TransactionTypeUsage,
		Amount: amount.Neg(),
	})
}

func (r *Reconciler) reverse(ctx context.Context, in ReconcileInput, usage leave.Transaction) (leave.Transaction, error) {
	amount := usage.Amount.Abs()

	balance, err := r.balances.GetForUpdate(ctx, usage.EmployeeID, usage.LeaveTypeID, usage.Year)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.Transaction{}, &leave.LedgerInconsistencyError{
				TransactionID: usage.ID,
				BalanceID:     usage.BalanceID,
				Reason:        "balance row of the usage no longer exists",
			}
		}
		return leave.Transaction{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}

	if balance.UsedCredits.LessThan(amount) {
		return leave.Transaction{}, &leave.LedgerInconsistencyError{
			TransactionID: usage.ID,
			BalanceID:     balance.ID,
			Reason: fmt.Sprintf("used credits %s are lower than the reversed amount %s",
				balance.UsedCredits.StringFixed(2), amount.StringFixed(2)),
		}
	}

	balance.CurrentBalance = balance.CurrentBalance.Add(amount)
	balance.UsedCredits = balance.UsedCredits.Sub(amount)

	if balance.Available().IsNegative() {
		return leave.Transaction{}, &leave.InsufficientBalanceError{
			EmployeeID:  usage.EmployeeID,
			LeaveTypeID: usage.LeaveTypeID,
			Year:        usage.Year,
			Available:   balance.Available(),
			Requested:   decimal.Zero,
		}
	}

	if err := r.balances.UpdateAmounts(ctx, balance); err != nil {
		return leave.Transaction{}, fmt.Errorf("failed to update leave balance: %w", err)
	}

	reverses := usage.ID
	return r.appendEntry(ctx, in, balance, leave.Transaction{
		Type:       leave.TransactionTypeAdjustment,
		Amount:     amount,
		ReversesID: &reverses,
	})
}

// appendEntry fills the bookkeeping fields of tx from the updated balance and
// writes it to the ledger.
func (r *Reconciler) appendEntry(ctx context.Context, in ReconcileInput, balance leave.LeaveBalance, tx leave.Transaction) (leave.Transaction, error) {
	id, err := r.newID()
	if err != nil {
		return leave.Transaction{}, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	tx.ID = id
	tx.BalanceID = balance.ID
	tx.EmployeeID = balance.EmployeeID
	tx.LeaveTypeID = balance.LeaveTypeID
	tx.Year = balance.Year
	tx.RunningBalance = balance.CurrentBalance
	tx.ReferenceType = leave.ReferenceTypeDailyTimeRecord
	tx.ReferenceID = in.ReferenceID
	tx.Remarks = in.Remarks
	tx.CreatedBy = in.ActorID
	tx.CreatedAt = r.now()

	appended, err := r.transactions.Append(ctx, tx)
	if err != nil {
		return leave.Transaction{}, fmt.Errorf("failed to append leave transaction: %w", err)
	}

	slog.Info("Leave ledger entry appended",
		"transaction_id", appended.ID,
		"type", appended.Type,
		"amount", appended.Amount.StringFixed(2),
		"running_balance", appended.RunningBalance.StringFixed(2),
		"employee_id", appended.EmployeeID,
		"leave_type_id", appended.LeaveTypeID,
		"year", appended.Year,
		"reference_id", appended.ReferenceID,
	)

	return appended, nil
}
