package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "lnkz:ratelimit:"

// fixedWindowScript атомарно проверяет и учитывает запрос.
//
// KEYS[1]: ключ клиента
// ARGV[1]: длина окна в миллисекундах
// ARGV[2]: лимит запросов в окне
//
// Окно начинается с первого запроса и заканчивается вместе с TTL ключа.
// При исчерпанном лимите счетчик не увеличивается.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[1])
  return 1
end
if tonumber(current) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('INCR', KEYS[1])
return 1
`)

// Redis ограничитель с фиксированным окном, общий для нескольких экземпляров сервиса.
// Истекшие окна удаляет сам Redis по TTL, фоновая очистка не нужна.
type Redis struct {
	client redis.Scripter
	window time.Duration
	limit  int
	prefix string
}

// NewRedis создает ограничитель поверх клиента Redis.
func NewRedis(client redis.Scripter, window time.Duration, limit int) *Redis {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultMaxRequests
	}
	return &Redis{
		client: client,
		window: window,
		limit:  limit,
		prefix: defaultRedisKeyPrefix,
	}
}

// Allow учитывает запрос клиента и сообщает, разрешен ли он.
func (r *Redis) Allow(ctx context.Context, clientID string) (bool, error) {
	res, err := fixedWindowScript.Run(ctx, r.client,
		[]string{r.prefix + clientID},
		r.window.Milliseconds(), r.limit,
	).Int()
	if err != nil {
		return false, fmt.Errorf("run rate limit script: %w", err)
	}
	return res == 1, nil
}

// Window длина окна.
func (r *Redis) Window() time.Duration {
	return r.window
}
