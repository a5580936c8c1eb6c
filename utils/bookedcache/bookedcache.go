package bookedcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/shortlet-ng/backend/config/redis"
	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/models/booking_models"
)

// TTL keeps stale availability projections short-lived even if an
// invalidation is missed.
const TTL = 5 * time.Minute

func key(propertyID int64) string {
	return fmt.Sprintf("booked_ranges:%d", propertyID)
}

// Get returns the cached confirmed date ranges for a property, or
// (nil, false) on a miss. Redis being down is treated as a miss.
func Get(ctx context.Context, propertyID int64) ([]booking_models.DateRange, bool) {
	client, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		return nil, false
	}

	raw, err := client.Get(ctx, key(propertyID)).Bytes()
	if err != nil {
		return nil, false
	}

	var ranges []booking_models.DateRange
	if err := json.Unmarshal(raw, &ranges); err != nil {
		logger.WarnLogger.Warnf("Corrupt booked ranges cache entry for property %d: %v", propertyID, err)
		return nil, false
	}
	return ranges, true
}

// Set stores the confirmed date ranges for a property. Best effort.
func Set(ctx context.Context, propertyID int64, ranges []booking_models.DateRange) {
	client, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		return
	}

	raw, err := json.Marshal(ranges)
	if err != nil {
		return
	}

	if err := client.Set(ctx, key(propertyID), raw, TTL).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to cache booked ranges for property %d: %v", propertyID, err)
	}
}

// Invalidate drops the cached projection after any write that can change
// a property's confirmed ranges. Best effort.
func Invalidate(ctx context.Context, propertyID int64) {
	client, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		return
	}

	if err := client.Del(ctx, key(propertyID)).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to invalidate booked ranges for property %d: %v", propertyID, err)
	}
}
