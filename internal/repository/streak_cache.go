package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"vibeit_backend/internal/streak"
	"vibeit_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// StreakCache 按用户和参考日缓存计算结果。
//
//	streak:<userID>:<yyyy-mm-dd>  计算结果，带写入时的版本号
//	streak:<userID>:version       进度变化时递增
type StreakCache struct {
	Redis *redis.Client
}

func NewStreakCache(rdb *redis.Client) *StreakCache {
	return &StreakCache{Redis: rdb}
}

type cachedStreak struct {
	Version int64                 `json:"version"`
	Streak  streak.LearningStreak `json:"streak"`
}

func userKeyPrefix(userID uint) string {
	return util.StreakCacheKeyPrefix + strconv.FormatUint(uint64(userID), 10) + ":"
}

func streakKey(userID uint, day streak.Day) string {
	return userKeyPrefix(userID) + day.String()
}

func streakVersionKey(userID uint) string {
	return userKeyPrefix(userID) + "version"
}

// Get 返回当前版本；结果版本落后时视为未命中
func (c *StreakCache) Get(ctx context.Context, userID uint, day streak.Day) (*streak.LearningStreak, int64, bool, error) {
	vals, err := c.Redis.MGet(ctx, streakVersionKey(userID), streakKey(userID, day)).Result()
	if err != nil {
		return nil, 0, false, err
	}

	var version int64
	if raw, ok := vals[0].(string); ok {
		version, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, false, err
		}
	}

	raw, ok := vals[1].(string)
	if !ok {
		return nil, version, false, nil
	}
	var cached cachedStreak
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, version, false, err
	}
	if cached.Version != version {
		return nil, version, false, nil
	}
	return &cached.Streak, version, true, nil
}

func (c *StreakCache) Set(ctx context.Context, userID uint, day streak.Day, version int64, s *streak.LearningStreak, ttl time.Duration) error {
	data, err := json.Marshal(cachedStreak{Version: version, Streak: *s})
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, streakKey(userID, day), data, ttl).Err()
}

// Invalidate 递增版本号，之前写入的结果全部失效
func (c *StreakCache) Invalidate(ctx context.Context, userID uint) error {
	return c.Redis.Incr(ctx, streakVersionKey(userID)).Err()
}
