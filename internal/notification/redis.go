package notification

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis publica o evento num canal pub/sub.
type Redis struct {
	Client  *redis.Client
	Channel string
}

func NewRedis(addr, password, channel string) *Redis {
	return &Redis{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		Channel: channel,
	}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Notify(ctx context.Context, e Event) error {
	body, err := e.payload()
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, r.Channel, body).Err()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
