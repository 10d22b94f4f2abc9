package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var insufficient *leave.InsufficientBalanceError

	switch {
	// User domain errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrAccessDenied):
		Forbidden(w, "You are not allowed to perform this action")
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "Company membership required")

	// Not found errors
	case errors.Is(err, dtr.ErrDTRNotFound):
		NotFound(w, "DTR record not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, schedule.ErrWorkScheduleNotFound):
		NotFound(w, "Work schedule not found")

	// Leave ledger errors
	case errors.As(err, &insufficient):
		Error(w, http.StatusConflict, "INSUFFICIENT_BALANCE", "Insufficient leave balance", map[string]string{
			"leave_type_id": insufficient.LeaveTypeID,
			"year":          strconv.Itoa(insufficient.Year),
			"available":     insufficient.Available.StringFixed(2),
			"requested":     insufficient.Requested.StringFixed(2),
		})
	case errors.Is(err, leave.ErrLedgerInconsistency):
		Error(w, http.StatusInternalServerError, "LEDGER_INCONSISTENCY",
			"Leave ledger for this record is inconsistent and needs administrator review", nil)

	// Transaction errors
	case errors.Is(err, dtr.ErrTransactionFailed):
		Error(w, http.StatusInternalServerError, "TRANSACTION_FAILED",
			"The DTR record could not be saved, please try again", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
