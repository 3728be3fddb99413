package utils

import (
	"context"
	"log"
	"time"

	"fixerhub/config"

	"github.com/go-redis/redis/v8"
)

var (
	// AuthCacheClient holds verification and reset tokens.
	AuthCacheClient *redis.Client
	// ChatCacheClient holds chatbot session context.
	ChatCacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth Cache")
}

// GetAuthCacheClient returns the Redis client for auth tokens.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

func InitChatCache() {
	ChatCacheClient = newRedisClient(config.AppConfig.RedisChatDB, "Chat Cache")
}

// GetChatCacheClient returns the Redis client for chatbot context.
func GetChatCacheClient() *redis.Client {
	if ChatCacheClient == nil {
		InitChatCache()
	}
	return ChatCacheClient
}
