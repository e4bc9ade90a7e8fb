package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
)

// AlertCooldownRepository suppresses repeated low-balance alerts using Redis keys with a TTL.
type AlertCooldownRepository struct {
	client *redis.Client
	exp    time.Duration // how long a delivered alert silences the next one
}

// NewAlertCooldownRepository creates a new repository instance
func NewAlertCooldownRepository(client *redis.Client, expiration time.Duration) *AlertCooldownRepository {
	return &AlertCooldownRepository{
		client: client,
		exp:    expiration,
	}
}

func alertCooldownKey(accountID int64) string {
	return fmt.Sprintf("low_balance_alert:%d", accountID)
}

// Acquire reserves the alert slot for the account. It returns false when an
// alert was already sent within the cooldown window.
func (r *AlertCooldownRepository) Acquire(ctx context.Context, accountID int64) (bool, error) {
	key := alertCooldownKey(accountID)
	ok, err := r.client.SetNX(ctx, key, time.Now().Unix(), r.exp).Result()

	logger.Log.Debugw("alert cooldown acquire",
		"key", key,
		"result", ok,
		"error", err,
	)

	return ok, err
}

// Release frees the cooldown slot for the account.
func (r *AlertCooldownRepository) Release(ctx context.Context, accountID int64) error {
	key := alertCooldownKey(accountID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Debugw("alert cooldown release",
		"key", key,
		"error", err,
	)

	return err
}
