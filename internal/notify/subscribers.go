package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// subscriberTTL controls how long after their last feed view a user keeps
// receiving background delta checks.
const subscriberTTL = 24 * time.Hour

// Subscribers tracks which users the background poller runs delta checks
// for. A user subscribes implicitly by viewing the feed and ages out after
// a day of inactivity.
type Subscribers struct {
	rdb *redis.Client
	key string
}

// NewSubscribers creates a registry for one feed.
func NewSubscribers(rdb *redis.Client, feed string) *Subscribers {
	return &Subscribers{rdb: rdb, key: "subscribers:" + feed}
}

// Touch records feed activity for the user.
func (s *Subscribers) Touch(ctx context.Context, userKey string) error {
	now := float64(time.Now().Unix())
	if err := s.rdb.ZAdd(ctx, s.key, redis.Z{Score: now, Member: userKey}).Err(); err != nil {
		return err
	}
	// Drop subscribers older than the TTL while we are here.
	cutoff := time.Now().Add(-subscriberTTL).Unix()
	return s.rdb.ZRemRangeByScore(ctx, s.key, "-inf", formatScore(cutoff)).Err()
}

// Active returns the user keys still inside the activity window.
func (s *Subscribers) Active(ctx context.Context) ([]string, error) {
	cutoff := time.Now().Add(-subscriberTTL).Unix()
	return s.rdb.ZRangeByScore(ctx, s.key, &redis.ZRangeBy{
		Min: formatScore(cutoff),
		Max: "+inf",
	}).Result()
}

func formatScore(unix int64) string {
	return strconv.FormatInt(unix, 10)
}
