package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusChangedPayload(t *testing.T) {
	citizenID := uuid.New()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	raw, err := json.Marshal(PaymentStatusChanged(citizenID, "April-2026", false, now))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, TypePaymentStatusChanged, decoded["type"])
	assert.Equal(t, citizenID.String(), decoded["citizenId"])
	assert.Equal(t, "April-2026", decoded["month"])
	assert.Equal(t, false, decoded["paid"])
	assert.NotContains(t, decoded, "amount")
	assert.NotContains(t, decoded, "year")
}

func TestLedgerInitializedCarriesAmount(t *testing.T) {
	event := LedgerInitialized(uuid.New(), 2026, decimal.NewFromInt(150), time.Now())

	assert.Equal(t, TypeLedgerInitialized, event.Type)
	assert.Equal(t, 2026, event.Year)
	require.NotNil(t, event.Amount)
	assert.True(t, event.Amount.Equal(decimal.NewFromInt(150)))
	assert.Nil(t, event.Paid)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), DuesReminder(uuid.New(), "May-2026", decimal.NewFromInt(100), time.Now())))
	assert.NoError(t, p.Close())
}
