package payment_models

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
)

// payloadJSON returns the raw payload as valid JSON for the JSONB audit
// column. Malformed deliveries are the ones the trail most needs to keep, so
// non-JSON bytes are wrapped in an envelope instead of failing the insert.
func payloadJSON(rawPayload []byte) string {
	if json.Valid(rawPayload) {
		return string(rawPayload)
	}
	wrapped, err := json.Marshal(map[string]string{"raw": string(rawPayload)})
	if err != nil {
		return `{"raw": ""}`
	}
	return string(wrapped)
}

// RecordWebhookEvent stores the raw payload of an authenticated provider
// event before it is processed. The audit row is what makes a stuck payment
// observable when processing fails after authentication: the endpoint still
// acknowledges the provider, but the unprocessed event remains on record.
// Returns uuid.Nil on failure; recording is best-effort and never blocks
// event processing.
func RecordWebhookEvent(ctx context.Context, db *pgxpool.Pool, eventType string, rawPayload []byte) uuid.UUID {
	if db == nil {
		return uuid.Nil
	}

	id := uuid.New()
	_, err := db.Exec(ctx,
		`INSERT INTO webhook_events (id, event_type, raw_payload) VALUES ($1, $2, $3)`,
		id, eventType, payloadJSON(rawPayload))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to record webhook event: %v", err)
		return uuid.Nil
	}
	return id
}

// MarkWebhookProcessed flags an audit row once its event has been applied.
func MarkWebhookProcessed(ctx context.Context, db *pgxpool.Pool, eventID uuid.UUID) {
	if db == nil || eventID == uuid.Nil {
		return
	}
	if _, err := db.Exec(ctx,
		`UPDATE webhook_events SET processed = TRUE, processed_at = NOW() WHERE id = $1`, eventID); err != nil {
		logger.ErrorLogger.Errorf("Failed to mark webhook event %s processed: %v", eventID, err)
	}
}
