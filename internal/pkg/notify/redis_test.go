package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() dtr.ChangeEvent {
	return dtr.ChangeEvent{
		CompanyID:      "company-1",
		EmployeeID:     "emp-1",
		RecordID:       "dtr-1",
		AttendanceDate: "2025-03-03",
		Scopes:         dtr.ChangeScopes,
		OccurredAt:     time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisNotifier_DTRChanged(t *testing.T) {
	client, mock := redismock.NewClientMock()
	event := testEvent()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish(DTRChangedChannel, string(payload)).SetVal(1)

	err = NewRedisNotifier(client).DTRChanged(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisNotifier_DTRChanged_PublishError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	payload, err := json.Marshal(testEvent())
	require.NoError(t, err)

	mock.ExpectPublish(DTRChangedChannel, string(payload)).SetErr(errors.New("connection refused"))

	err = NewRedisNotifier(client).DTRChanged(context.Background(), testEvent())

	assert.ErrorContains(t, err, "connection refused")
}

func TestNoopNotifier(t *testing.T) {
	assert.NoError(t, NoopNotifier{}.DTRChanged(context.Background(), testEvent()))
}
