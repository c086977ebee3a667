package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentiva/models"
	"rentiva/utils"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists the CheckoutSession aggregate across reloads for the
// lifetime of the cart.
type SessionStore interface {
	Load(ctx context.Context, userID string) (*models.CheckoutSession, error)
	Save(ctx context.Context, session *models.CheckoutSession) error
	Delete(ctx context.Context, userID string) error
}

// RedisSessionStore keeps sessions as versioned JSON blobs under a TTL.
type RedisSessionStore struct {
	Cache *redis.Client
	TTL   time.Duration
}

// NewRedisSessionStore returns a SessionStore backed by the session cache.
func NewRedisSessionStore(cache *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{Cache: cache, TTL: ttl}
}

func sessionKey(userID string) string {
	return utils.SessionCachePrefix + userID
}

// encodeSession stamps the schema version and marshals the aggregate.
func encodeSession(session *models.CheckoutSession) ([]byte, error) {
	session.SchemaVersion = models.SessionSchemaVersion
	session.UpdatedAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	return data, nil
}

// decodeSession rejects a blob written by a different schema version rather
// than decoding it into a drifted shape.
func decodeSession(data []byte) (*models.CheckoutSession, error) {
	var probe struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	if probe.SchemaVersion != models.SessionSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrSchemaVersion, probe.SchemaVersion, models.SessionSchemaVersion)
	}

	var session models.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return &session, nil
}

// Load retrieves and decodes the session.
func (st *RedisSessionStore) Load(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	data, err := st.Cache.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout session: %w", err)
	}
	return decodeSession([]byte(data))
}

// Save writes the session back under its TTL.
func (st *RedisSessionStore) Save(ctx context.Context, session *models.CheckoutSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := st.Cache.Set(ctx, sessionKey(session.UserID), data, st.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

// Delete removes the session, e.g. once payment reaches its paid state.
func (st *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	return st.Cache.Del(ctx, sessionKey(userID)).Err()
}
