package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mipy/internal/constants"
)

// RedisStore keeps dialogues as JSON values with a TTL. Redis drops
// expired keys silently, so a sorted set scored by expiry time lets the
// cleanup loop find and report them.
type RedisStore struct {
	client   *redis.Client
	onExpire func(id string)
	mu       sync.RWMutex
	ctx      context.Context
	cancel   func()
	wg       sync.WaitGroup
	now      func() time.Time
}

func NewRedisStore(host, port, username, password string) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:     host + ":" + port,
		Username: username,
		Password: password,
		DB:       0,
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithCancel(context.Background())

	store := &RedisStore{
		client: client,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}

	if err := store.client.Ping(ctx).Err(); err != nil {
		cancel()
		client.Close()
		return nil, err
	}

	store.startCleanup()

	return store, nil
}

func (st *RedisStore) OnExpire(fn func(id string)) {
	st.mu.Lock()
	st.onExpire = fn
	st.mu.Unlock()
}

func (st *RedisStore) Save(d *Dialogue) {
	jsonData, err := json.Marshal(d)
	if err != nil {
		log.Printf("Failed to marshal dialogue: %v", err)
		return
	}

	ttl := d.ExpiresAt.Sub(st.now())
	if ttl <= 0 {
		return
	}

	_, err = st.client.TxPipelined(st.ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(st.ctx, constants.RedisKeyPrefix+d.ID, jsonData, ttl)
		pipe.ZAdd(st.ctx, constants.RedisExpiryIndexKey, redis.Z{
			Score:  float64(d.ExpiresAt.Unix()),
			Member: d.ID,
		})
		return nil
	})
	if err != nil {
		log.Printf("Failed to save dialogue to Redis: %v", err)
	}
}

func (st *RedisStore) Get(id string) (*Dialogue, bool) {
	data, err := st.client.Get(st.ctx, constants.RedisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("Failed to get dialogue from Redis: %v", err)
		return nil, false
	}

	var d Dialogue
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		log.Printf("Failed to unmarshal dialogue: %v", err)
		return nil, false
	}

	if !st.now().Before(d.ExpiresAt) {
		st.expire(id)
		return nil, false
	}
	return &d, true
}

func (st *RedisStore) Delete(id string) {
	_, err := st.client.TxPipelined(st.ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(st.ctx, constants.RedisKeyPrefix+id)
		pipe.ZRem(st.ctx, constants.RedisExpiryIndexKey, id)
		return nil
	})
	if err != nil {
		log.Printf("Failed to delete dialogue from Redis: %v", err)
	}
}

func (st *RedisStore) Close() error {
	st.cancel()
	st.wg.Wait()
	return st.client.Close()
}

// expire removes id from the index and reports it once; whoever wins the
// ZREM owns the notification.
func (st *RedisStore) expire(id string) {
	removed, err := st.client.ZRem(st.ctx, constants.RedisExpiryIndexKey, id).Result()
	if err != nil {
		log.Printf("Failed to update Redis expiry index: %v", err)
		return
	}
	st.client.Del(st.ctx, constants.RedisKeyPrefix+id)
	if removed == 0 {
		return
	}
	log.Printf("🗑 Expired dialogue cleaned up (Redis): %s", id)
	st.mu.RLock()
	fn := st.onExpire
	st.mu.RUnlock()
	if fn != nil {
		fn(id)
	}
}

func (st *RedisStore) startCleanup() {
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(constants.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-st.ctx.Done():
				return
			case <-ticker.C:
				st.cleanupExpired()
			}
		}
	}()
}

func (st *RedisStore) cleanupExpired() {
	ids, err := st.client.ZRangeByScore(st.ctx, constants.RedisExpiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(st.now().Unix(), 10),
	}).Result()
	if err != nil {
		if st.ctx.Err() == nil {
			log.Printf("Redis expiry scan error: %v", err)
		}
		return
	}

	for _, id := range ids {
		st.expire(id)
	}
}
