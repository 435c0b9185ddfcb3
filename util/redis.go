package util

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const redisPingTimeout = 3 * time.Second

// NewRedisClient creates a redis client from url, e.g. `redis://:password@127.0.0.1:6379/0`,
// and checks the connectivity.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse redis url")
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.WithMessage(err, "failed to ping redis")
	}

	return client, nil
}

func MustNewRedisClient(url string) *redis.Client {
	client, err := NewRedisClient(url)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create redis client")
	}

	return client
}

// RedisKey joins the key parts with colons, e.g. `evm:rcpt:0x1f`.
func RedisKey(keyParts ...any) string {
	parts := make([]string, 0, len(keyParts))
	for _, p := range keyParts {
		parts = append(parts, fmt.Sprint(p))
	}

	return strings.Join(parts, ":")
}
