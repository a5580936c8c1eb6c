package payment_models

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadJSON(t *testing.T) {
	t.Run("ValidJSONPassesThrough", func(t *testing.T) {
		raw := []byte(`{"event":"charge.success","data":{"reference":"booking_1_1756700000"}}`)
		assert.Equal(t, string(raw), payloadJSON(raw))
	})

	t.Run("MalformedBodyIsWrapped", func(t *testing.T) {
		raw := []byte(`not json at all {{{`)
		out := payloadJSON(raw)
		require.True(t, json.Valid([]byte(out)), "audit payload must always be storable JSON")

		var envelope map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &envelope))
		assert.Equal(t, string(raw), envelope["raw"])
	})

	t.Run("EmptyBody", func(t *testing.T) {
		assert.True(t, json.Valid([]byte(payloadJSON(nil))))
	})
}

func TestRecordWebhookEventWithoutPool(t *testing.T) {
	id := RecordWebhookEvent(context.Background(), nil, "charge.success", []byte(`{}`))
	assert.Equal(t, uuid.Nil, id)

	assert.NotPanics(t, func() {
		MarkWebhookProcessed(context.Background(), nil, uuid.New())
	})
}
