package redis

import (
	"context"
	"fmt"
	"time"

	"EmotionDetection/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// IRedis publishes per-frame emotion results to subscribers.
type IRedis interface {
	PublishEmotions(ctx context.Context, source string, results []entity.EmotionResult) error
	Close() error
}

type Options struct {
	Address  string
	Password string
	DB       int
	Channel  string
}

// EmotionMessage is the payload sent on the channel.
type EmotionMessage struct {
	Source     string                 `json:"source"`
	Emotions   []entity.EmotionResult `json:"emotions"`
	ObservedAt time.Time              `json:"observed_at"`
}

type redisClient struct {
	client  *redis.Client
	channel string
	log     *logrus.Logger
}

// New returns a publisher backed by Redis, or a no-op publisher when no
// address is configured.
func New(log *logrus.Logger, opts Options) IRedis {
	if opts.Address == "" {
		log.Info("Redis address not configured, emotion publishing disabled")
		return noopPublisher{}
	}
	if opts.Channel == "" {
		opts.Channel = "emotions"
	}

	log.Info(fmt.Sprintf("Connecting to Redis at %s...", opts.Address))

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		log.Info("Successfully connected to Redis")
	}

	return &redisClient{
		client:  client,
		channel: opts.Channel,
		log:     log,
	}
}

func (r *redisClient) PublishEmotions(ctx context.Context, source string, results []entity.EmotionResult) error {
	payload, err := EncodeEmotionMessage(source, results, time.Now())
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.log.Debug(fmt.Sprintf("Error publishing emotions on %s: %v", r.channel, err))
		return fmt.Errorf("publish emotions: %w", err)
	}
	return nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}

func EncodeEmotionMessage(source string, results []entity.EmotionResult, at time.Time) ([]byte, error) {
	if results == nil {
		results = []entity.EmotionResult{}
	}
	payload, err := jsoniter.Marshal(EmotionMessage{
		Source:     source,
		Emotions:   results,
		ObservedAt: at.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode emotion message: %w", err)
	}
	return payload, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishEmotions(context.Context, string, []entity.EmotionResult) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
