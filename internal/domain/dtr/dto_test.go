package dtr

import (
	"strings"
	"testing"

	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validRequest() UpsertDTRRequest {
	return UpsertDTRRequest{
		CompanyID:      "company-1",
		EmployeeID:     "0195f3a0-1c2d-7e4f-8a01-000000000e01",
		AttendanceDate: "2025-03-03",
		TimeIn:         strPtr("08:00"),
		TimeOut:        strPtr("17:00:30"),
		Status:         string(StatusPresent),
	}
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs.ToMap()
}

func TestUpsertDTRRequest_Validate_Success(t *testing.T) {
	req := validRequest()
	assert.NoError(t, req.Validate())

	absent := UpsertDTRRequest{
		CompanyID:      "company-1",
		EmployeeID:     "0195f3a0-1c2d-7e4f-8a01-000000000e01",
		AttendanceDate: "2025-03-03",
		Status:         string(StatusAbsent),
	}
	assert.NoError(t, absent.Validate())
}

func TestUpsertDTRRequest_Validate_BlankOptionalsAreNil(t *testing.T) {
	req := validRequest()
	req.Status = string(StatusRestDay)
	req.TimeIn = strPtr("  ")
	req.TimeOut = strPtr("")
	req.Remarks = strPtr(" ")

	require.NoError(t, req.Validate())
	assert.Nil(t, req.TimeIn)
	assert.Nil(t, req.TimeOut)
	assert.Nil(t, req.Remarks)
}

func TestUpsertDTRRequest_Validate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *UpsertDTRRequest)
		field  string
	}{
		{"missing company", func(r *UpsertDTRRequest) { r.CompanyID = "" }, "company_id"},
		{"missing employee", func(r *UpsertDTRRequest) { r.EmployeeID = " " }, "employee_id"},
		{"malformed employee", func(r *UpsertDTRRequest) { r.EmployeeID = "also-not-a-uuid" }, "employee_id"},
		{"malformed leave type", func(r *UpsertDTRRequest) {
			r.Status = string(StatusOnLeave)
			r.LeaveTypeID = strPtr("not-a-uuid")
		}, "leave_type_id"},
		{"missing date", func(r *UpsertDTRRequest) { r.AttendanceDate = "" }, "attendance_date"},
		{"bad date", func(r *UpsertDTRRequest) { r.AttendanceDate = "2025-02-30" }, "attendance_date"},
		{"bad time_in", func(r *UpsertDTRRequest) { r.TimeIn = strPtr("8:00pm") }, "time_in"},
		{"bad time_out", func(r *UpsertDTRRequest) { r.TimeOut = strPtr("25:00") }, "time_out"},
		{"only time_out", func(r *UpsertDTRRequest) {
			r.TimeIn = nil
			r.Status = string(StatusAbsent)
		}, "time_in"},
		{"present without times", func(r *UpsertDTRRequest) { r.TimeIn, r.TimeOut = nil, nil }, "status"},
		{"unknown status", func(r *UpsertDTRRequest) { r.Status = "present" }, "status"},
		{"unknown fraction", func(r *UpsertDTRRequest) { r.DayFraction = strPtr("QUARTER") }, "day_fraction"},
		{"long remarks", func(r *UpsertDTRRequest) { r.Remarks = strPtr(strings.Repeat("a", 501)) }, "remarks"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validRequest()
			c.mutate(&req)

			fields := validationFields(t, req.Validate())

			assert.Contains(t, fields, c.field)
		})
	}
}

func TestUpsertDTRRequest_Fraction(t *testing.T) {
	req := validRequest()
	assert.Equal(t, DayFractionFull, req.Fraction())

	req.DayFraction = strPtr("HALF")
	assert.Equal(t, DayFractionHalf, req.Fraction())
}
