package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// idempotencyPending marks a key whose booking row does not exist yet.
const idempotencyPending = "pending"

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return NewRedisCacheFromClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL,
	)
}

func NewRedisCacheFromClient(client *redis.Client, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, searchTTL: searchTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	var offers []domain.FlightOffer
	ok, err := c.getJSON(ctx, flightsKey(q), &offers)
	if err != nil || !ok {
		return nil, err
	}
	return offers, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, q domain.FlightQuery, offers []domain.FlightOffer) error {
	return c.setJSON(ctx, flightsKey(q), offers, c.searchTTL)
}

func (c *RedisCache) GetHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	var hotels []domain.Hotel
	ok, err := c.getJSON(ctx, hotelsKey(q), &hotels)
	if err != nil || !ok {
		return nil, err
	}
	return hotels, nil
}

func (c *RedisCache) SetHotels(ctx context.Context, q domain.HotelQuery, hotels []domain.Hotel) error {
	return c.setJSON(ctx, hotelsKey(q), hotels, c.searchTTL)
}

// AcquireBookingLock returns a release token, or "" when the lock is held elsewhere.
func (c *RedisCache) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, bookingLockKey(bookingID), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (c *RedisCache) ReleaseBookingLock(ctx context.Context, bookingID, token string) error {
	return releaseLockScript.Run(ctx, c.client, []string{bookingLockKey(bookingID)}, token).Err()
}

// ReserveIdempotencyKey claims key for a new booking. When the key was already
// claimed it returns reserved=false and the booking id stored for it, which is
// empty while the first request is still running.
func (c *RedisCache) ReserveIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := c.client.SetNX(ctx, idempotencyKey(key), idempotencyPending, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	existing, err := c.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return c.ReserveIdempotencyKey(ctx, key, ttl)
	}
	if err != nil {
		return "", false, err
	}
	if existing == idempotencyPending {
		return "", false, nil
	}
	return existing, false, nil
}

func (c *RedisCache) CompleteIdempotencyKey(ctx context.Context, key, bookingID string, ttl time.Duration) error {
	return c.client.Set(ctx, idempotencyKey(key), bookingID, ttl).Err()
}

func (c *RedisCache) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	return c.client.Del(ctx, idempotencyKey(key)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey(q domain.FlightQuery) string {
	q = q.Normalize()
	return "cache:flights:" + digest(q.Origin, q.Destination, q.DepartureDate, q.ReturnDate,
		fmt.Sprint(q.Adults), fmt.Sprint(q.Children))
}

func hotelsKey(q domain.HotelQuery) string {
	return "cache:hotels:" + digest(strings.ToLower(strings.TrimSpace(q.Location)), q.CheckIn, q.CheckOut,
		fmt.Sprint(q.Guests.Adults), fmt.Sprint(q.Guests.Children), fmt.Sprint(q.Guests.Rooms), fmt.Sprint(q.Offset))
}

func bookingLockKey(bookingID string) string {
	return "lock:booking:" + bookingID
}

func idempotencyKey(key string) string {
	return "idem:booking:" + key
}

func digest(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
