package util

// Redis key 前缀
const (
	StreakCacheKeyPrefix = "streak:"
)
