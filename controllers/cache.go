package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const listCachePrefix = "properties:"

func listCacheKey(userID string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(userID)
	sb.WriteString(":")

	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return listCachePrefix + hex.EncodeToString(sum[:])
}

// invalidateListCache drops every cached list response. Runs after each
// property mutation.
func invalidateListCache(redisClient *redis.Client) {
	if redisClient == nil {
		return
	}
	ctx := context.Background()
	const scanPattern = listCachePrefix + "*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil {
		log.Printf("Error deleting %d cached list keys: %v", len(keysToDelete), execErr)
	} else {
		log.Printf("List cache invalidated, deleted %d keys matching '%s'", len(keysToDelete), scanPattern)
	}
}
