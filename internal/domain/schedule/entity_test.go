package schedule

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchedule() WorkSchedule {
	return WorkSchedule{
		CompanyID:          "company-1",
		Name:               "Office",
		BaseStart:          "08:00",
		BaseEnd:            "17:00",
		BreakMinutes:       60,
		GracePeriodMinutes: 10,
	}
}

func TestWorkSchedule_Rule_ZeroValueUsesBase(t *testing.T) {
	ws := validSchedule()

	assert.Equal(t, DayKindUseBase, ws.Rule(time.Wednesday).Kind)
}

func TestWorkSchedule_Validate_Success(t *testing.T) {
	ws := validSchedule()
	ws.Days[time.Saturday] = DayRule{Kind: DayKindExplicit, Start: "09:00", End: "13:00"}
	ws.Days[time.Sunday] = DayRule{Kind: DayKindNotWorking}

	assert.NoError(t, ws.Validate())
}

func TestWorkSchedule_Validate_RejectsMalformedOverrides(t *testing.T) {
	ws := validSchedule()
	ws.Days[time.Monday] = DayRule{Kind: "HALF"}
	ws.Days[time.Tuesday] = DayRule{Kind: DayKindNotWorking, Start: "08:00"}
	ws.Days[time.Saturday] = DayRule{Kind: DayKindExplicit, Start: "09:00"}

	err := ws.Validate()

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "days.Monday")
	assert.Contains(t, fields, "days.Tuesday")
	assert.Contains(t, fields, "days.Saturday")
}

func TestWorkSchedule_Validate_RequiredFields(t *testing.T) {
	ws := WorkSchedule{BaseStart: "25:00", BreakMinutes: -1, GracePeriodMinutes: -5}

	err := ws.Validate()

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	for _, f := range []string{"company_id", "name", "base_start", "base_end", "break_minutes", "grace_period_minutes"} {
		assert.Contains(t, fields, f)
	}
}
