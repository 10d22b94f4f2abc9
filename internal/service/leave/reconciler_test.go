package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	balances     map[string]leave.LeaveBalance
	transactions []leave.Transaction
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[string]leave.LeaveBalance)}
}

func balanceKey(employeeID, leaveTypeID string, year int) string {
	return fmt.Sprintf("%s|%s|%d", employeeID, leaveTypeID, year)
}

func (m *memLedger) seed(employeeID, leaveTypeID string, year int, current, pending, used string) {
	m.balances[balanceKey(employeeID, leaveTypeID, year)] = leave.LeaveBalance{
		ID:              "bal-" + leaveTypeID,
		EmployeeID:      employeeID,
		LeaveTypeID:     leaveTypeID,
		Year:            year,
		CurrentBalance:  decimal.RequireFromString(current),
		PendingRequests: decimal.RequireFromString(pending),
		UsedCredits:     decimal.RequireFromString(used),
	}
}

func (m *memLedger) balance(employeeID, leaveTypeID string, year int) leave.LeaveBalance {
	return m.balances[balanceKey(employeeID, leaveTypeID, year)]
}

func (m *memLedger) GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	b, ok := m.balances[balanceKey(employeeID, leaveTypeID, year)]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (m *memLedger) UpdateAmounts(ctx context.Context, b leave.LeaveBalance) error {
	m.balances[balanceKey(b.EmployeeID, b.LeaveTypeID, b.Year)] = b
	return nil
}

func (m *memLedger) Append(ctx context.Context, tx leave.Transaction) (leave.Transaction, error) {
	m.transactions = append(m.transactions, tx)
	return tx, nil
}

func (m *memLedger) GetByID(ctx context.Context, id string) (leave.Transaction, error) {
	for _, tx := range m.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return leave.Transaction{}, leave.ErrTransactionNotFound
}

func (m *memLedger) ListByReference(ctx context.Context, referenceType, referenceID string) ([]leave.Transaction, error) {
	var out []leave.Transaction
	for _, tx := range m.transactions {
		if tx.ReferenceType == referenceType && tx.ReferenceID == referenceID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func newTestReconciler(m *memLedger) *Reconciler {
	r := NewReconciler(m, m)
	seq := 0
	r.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("tx-%d", seq), nil
	}
	r.now = func() time.Time { return time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC) }
	return r
}

func usage(leaveTypeID string, amount string) *leave.Usage {
	return &leave.Usage{LeaveTypeID: leaveTypeID, Year: 2025, Amount: decimal.RequireFromString(amount)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestReconcile_NoneToNone(t *testing.T) {
	m := newMemLedger()
	r := newTestReconciler(m)

	res, err := r.Reconcile(context.Background(), ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1"})

	require.NoError(t, err)
	assert.Nil(t, res.ActiveTransactionID)
	assert.Empty(t, res.Appended)
	assert.Empty(t, m.transactions)
}

func TestReconcile_ApplyUsage(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "10", "2", "0")
	r := newTestReconciler(m)

	res, err := r.Reconcile(context.Background(), ReconcileInput{
		EmployeeID:  "emp-1",
		ReferenceID: "dtr-1",
		Desired:     usage("vl", "1"),
		ActorID:     "user-1",
	})

	require.NoError(t, err)
	require.Len(t, res.Appended, 1)
	tx := res.Appended[0]
	assert.Equal(t, leave.TransactionTypeUsage, tx.Type)
	assertDecimal(t, "-1", tx.Amount)
	assertDecimal(t, "9", tx.RunningBalance)
	assert.Equal(t, leave.ReferenceTypeDailyTimeRecord, tx.ReferenceType)
	assert.Equal(t, "dtr-1", tx.ReferenceID)
	assert.Equal(t, "user-1", tx.CreatedBy)
	require.NotNil(t, res.ActiveTransactionID)
	assert.Equal(t, tx.ID, *res.ActiveTransactionID)

	bal := m.balance("emp-1", "vl", 2025)
	assertDecimal(t, "9", bal.CurrentBalance)
	assertDecimal(t, "1", bal.UsedCredits)
	assertDecimal(t, "2", bal.PendingRequests)
}

func TestReconcile_InsufficientBalance(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "0.5", "0", "0")
	r := newTestReconciler(m)

	_, err := r.Reconcile(context.Background(), ReconcileInput{
		EmployeeID:  "emp-1",
		ReferenceID: "dtr-1",
		Desired:     usage("vl", "1"),
	})

	require.ErrorIs(t, err, leave.ErrInsufficientBalance)
	var insufficient *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assertDecimal(t, "0.5", insufficient.Available)
	assertDecimal(t, "1", insufficient.Requested)
	assert.Empty(t, m.transactions)
	assertDecimal(t, "0.5", m.balance("emp-1", "vl", 2025).CurrentBalance)
}

func TestReconcile_PendingRequestsReduceAvailable(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "3", "2.5", "0")
	r := newTestReconciler(m)

	_, err := r.Reconcile(context.Background(), ReconcileInput{
		EmployeeID:  "emp-1",
		ReferenceID: "dtr-1",
		Desired:     usage("vl", "1"),
	})

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
}

func TestReconcile_MissingBalanceRowIsInsufficient(t *testing.T) {
	m := newMemLedger()
	r := newTestReconciler(m)

	_, err := r.Reconcile(context.Background(), ReconcileInput{
		EmployeeID:  "emp-1",
		ReferenceID: "dtr-1",
		Desired:     usage("vl", "0.5"),
	})

	var insufficient *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.IsZero())
}

func TestReconcile_SameUsageIsNoop(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "10", "0", "0")
	r := newTestReconciler(m)
	ctx := context.Background()

	first, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Desired: usage("vl", "1")})
	require.NoError(t, err)
	active, err := r.LoadActive(ctx, first.ActiveTransactionID, "dtr-1")
	require.NoError(t, err)

	second, err := r.Reconcile(ctx, ReconcileInput{
		EmployeeID:  "emp-1",
		ReferenceID: "dtr-1",
		Active:      active,
		Desired:     usage("vl", "1.0004"),
	})

	require.NoError(t, err)
	assert.Empty(t, second.Appended)
	assert.Equal(t, *first.ActiveTransactionID, *second.ActiveTransactionID)
	assert.Len(t, m.transactions, 1)
	assertDecimal(t, "9", m.balance("emp-1", "vl", 2025).CurrentBalance)
}

func TestReconcile_ReverseRestoresBalanceExactly(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "7.25", "0.75", "1.5")
	r := newTestReconciler(m)
	ctx := context.Background()

	applied, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Desired: usage("vl", "0.5")})
	require.NoError(t, err)
	active, err := r.LoadActive(ctx, applied.ActiveTransactionID, "dtr-1")
	require.NoError(t, err)

	reversed, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Active: active})

	require.NoError(t, err)
	assert.Nil(t, reversed.ActiveTransactionID)
	require.Len(t, reversed.Appended, 1)
	adj := reversed.Appended[0]
	assert.Equal(t, leave.TransactionTypeAdjustment, adj.Type)
	assertDecimal(t, "0.5", adj.Amount)
	require.NotNil(t, adj.ReversesID)
	assert.Equal(t, active.ID, *adj.ReversesID)

	bal := m.balance("emp-1", "vl", 2025)
	assertDecimal(t, "7.25", bal.CurrentBalance)
	assertDecimal(t, "1.5", bal.UsedCredits)
	assertDecimal(t, "0.75", bal.PendingRequests)
}

func TestReconcile_SwitchLeaveTypeAndFraction(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "5", "0", "0")
	m.seed("emp-1", "sl", 2025, "3", "0", "0")
	r := newTestReconciler(m)
	ctx := context.Background()

	first, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Desired: usage("vl", "1")})
	require.NoError(t, err)
	active, err := r.LoadActive(ctx, first.ActiveTransactionID, "dtr-1")
	require.NoError(t, err)

	switched, err := r.Reconcile(ctx, ReconcileInput{
		EmployeeID:  "emp-1",
		ReferenceID: "dtr-1",
		Active:      active,
		Desired:     usage("sl", "0.5"),
	})

	require.NoError(t, err)
	require.Len(t, switched.Appended, 2)
	assert.Equal(t, leave.TransactionTypeAdjustment, switched.Appended[0].Type)
	assert.Equal(t, "vl", switched.Appended[0].LeaveTypeID)
	assert.Equal(t, leave.TransactionTypeUsage, switched.Appended[1].Type)
	assert.Equal(t, "sl", switched.Appended[1].LeaveTypeID)
	assertDecimal(t, "-0.5", switched.Appended[1].Amount)
	assert.Equal(t, switched.Appended[1].ID, *switched.ActiveTransactionID)

	assertDecimal(t, "5", m.balance("emp-1", "vl", 2025).CurrentBalance)
	assertDecimal(t, "0", m.balance("emp-1", "vl", 2025).UsedCredits)
	assertDecimal(t, "2.5", m.balance("emp-1", "sl", 2025).CurrentBalance)
	assertDecimal(t, "0.5", m.balance("emp-1", "sl", 2025).UsedCredits)
}

func TestReconcile_SwitchFractionOnSameType(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "1", "0", "0")
	r := newTestReconciler(m)
	ctx := context.Background()

	first, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Desired: usage("vl", "1")})
	require.NoError(t, err)
	active, err := r.LoadActive(ctx, first.ActiveTransactionID, "dtr-1")
	require.NoError(t, err)

	// the full day must be released before the half day fits
	res, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Active: active, Desired: usage("vl", "0.5")})

	require.NoError(t, err)
	assert.Len(t, res.Appended, 2)
	assertDecimal(t, "0.5", m.balance("emp-1", "vl", 2025).CurrentBalance)
}

func TestReconcile_ReverseWithLowUsedCreditsFailsLoudly(t *testing.T) {
	m := newMemLedger()
	m.seed("emp-1", "vl", 2025, "10", "0", "0")
	r := newTestReconciler(m)
	ctx := context.Background()

	first, err := r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Desired: usage("vl", "1")})
	require.NoError(t, err)
	active, err := r.LoadActive(ctx, first.ActiveTransactionID, "dtr-1")
	require.NoError(t, err)

	corrupted := m.balance("emp-1", "vl", 2025)
	corrupted.UsedCredits = decimal.RequireFromString("0.5")
	m.balances[balanceKey("emp-1", "vl", 2025)] = corrupted

	_, err = r.Reconcile(ctx, ReconcileInput{EmployeeID: "emp-1", ReferenceID: "dtr-1", Active: active})

	require.ErrorIs(t, err, leave.ErrLedgerInconsistency)
	assert.NotErrorIs(t, err, leave.ErrInsufficientBalance)
	assertDecimal(t, "0.5", m.balance("emp-1", "vl", 2025).UsedCredits)
	assert.Len(t, m.transactions, 1)
}

func TestLoadActive(t *testing.T) {
	m := newMemLedger()
	m.transactions = []leave.Transaction{
		{ID: "tx-usage", Type: leave.TransactionTypeUsage, ReferenceType: leave.ReferenceTypeDailyTimeRecord, ReferenceID: "dtr-1"},
		{ID: "tx-accrual", Type: leave.TransactionTypeAccrual},
	}
	r := newTestReconciler(m)
	ctx := context.Background()
	id := func(s string) *string { return &s }

	t.Run("nil pointer", func(t *testing.T) {
		tx, err := r.LoadActive(ctx, nil, "dtr-3")
		require.NoError(t, err)
		assert.Nil(t, tx)
	})

	t.Run("nil pointer with outstanding usage", func(t *testing.T) {
		_, err := r.LoadActive(ctx, nil, "dtr-1")

		var inconsistency *leave.LedgerInconsistencyError
		require.ErrorAs(t, err, &inconsistency)
		assert.Equal(t, "tx-usage", inconsistency.TransactionID)
	})

	t.Run("found", func(t *testing.T) {
		tx, err := r.LoadActive(ctx, id("tx-usage"), "dtr-1")
		require.NoError(t, err)
		assert.Equal(t, "tx-usage", tx.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := r.LoadActive(ctx, id("tx-gone"), "dtr-1")
		assert.ErrorIs(t, err, leave.ErrLedgerInconsistency)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := r.LoadActive(ctx, id("tx-accrual"), "dtr-1")
		assert.ErrorIs(t, err, leave.ErrLedgerInconsistency)
	})

	t.Run("other record", func(t *testing.T) {
		_, err := r.LoadActive(ctx, id("tx-usage"), "dtr-2")
		assert.ErrorIs(t, err, leave.ErrLedgerInconsistency)
	})
}

func TestLoadActive_CrossChecksOutstandingUsage(t *testing.T) {
	usageRow := func(id string) leave.Transaction {
		return leave.Transaction{ID: id, Type: leave.TransactionTypeUsage, ReferenceType: leave.ReferenceTypeDailyTimeRecord, ReferenceID: "dtr-1"}
	}
	reversal := func(id, reverses string) leave.Transaction {
		return leave.Transaction{ID: id, Type: leave.TransactionTypeAdjustment, ReferenceType: leave.ReferenceTypeDailyTimeRecord, ReferenceID: "dtr-1", ReversesID: &reverses}
	}
	active := "tx-2"

	t.Run("reversed history is ignored", func(t *testing.T) {
		m := newMemLedger()
		m.transactions = []leave.Transaction{usageRow("tx-1"), reversal("tx-adj", "tx-1"), usageRow("tx-2")}

		tx, err := newTestReconciler(m).LoadActive(context.Background(), &active, "dtr-1")

		require.NoError(t, err)
		assert.Equal(t, "tx-2", tx.ID)
	})

	t.Run("second outstanding usage", func(t *testing.T) {
		m := newMemLedger()
		m.transactions = []leave.Transaction{usageRow("tx-1"), usageRow("tx-2")}

		_, err := newTestReconciler(m).LoadActive(context.Background(), &active, "dtr-1")

		var inconsistency *leave.LedgerInconsistencyError
		require.ErrorAs(t, err, &inconsistency)
		assert.Equal(t, "tx-1", inconsistency.TransactionID)
	})

	t.Run("active usage already reversed", func(t *testing.T) {
		m := newMemLedger()
		m.transactions = []leave.Transaction{usageRow("tx-2"), reversal("tx-adj", "tx-2")}

		_, err := newTestReconciler(m).LoadActive(context.Background(), &active, "dtr-1")

		assert.ErrorIs(t, err, leave.ErrLedgerInconsistency)
	})
}
