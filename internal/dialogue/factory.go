package dialogue

import (
	"log"

	"mipy/internal/utils"
)

const (
	EnvRedisHost     = "REDIS_HOST"
	EnvRedisPort     = "REDIS_PORT"
	EnvRedisUser     = "REDIS_USERNAME"
	EnvRedisPassword = "REDIS_PASSWORD"
)

// NewStore picks Redis when REDIS_HOST is set and reachable, otherwise an
// in-memory store.
func NewStore() Store {
	redisHost := utils.GetEnv(EnvRedisHost, "")

	if redisHost != "" {
		redisPort := utils.GetEnv(EnvRedisPort, "6379")
		redisUser := utils.GetEnv(EnvRedisUser, "")
		redisPassword := utils.GetEnv(EnvRedisPassword, "")

		store, err := NewRedisStore(redisHost, redisPort, redisUser, redisPassword)
		if err != nil {
			log.Printf("⚠️  Redis connection failed: %v", err)
			log.Println("💾 Falling back to in-memory dialogue store")
			return NewMemoryStore()
		}
		log.Printf("💾 Using Redis dialogue store: %s:%s", redisHost, redisPort)
		return store
	}

	log.Println("💾 Using in-memory dialogue store")
	return NewMemoryStore()
}
