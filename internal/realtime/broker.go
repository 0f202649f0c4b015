package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"aquawatch/internal/models"
)

const channelPrefix = "aquawatch:readings:"

// Broker distributes newly persisted readings over redis pub/sub, one channel
// per device. Within a channel readings are delivered in publish order, and
// only persisted rows are ever published.
type Broker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewBroker returns a reading broker.
func NewBroker(client *redis.Client, logger *zap.Logger) *Broker {
	return &Broker{client: client, logger: logger}
}

func channelFor(deviceID string) string {
	return channelPrefix + deviceID
}

// Publish announces a persisted reading to the device's channel.
func (b *Broker) Publish(ctx context.Context, reading models.SensorReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelFor(reading.DeviceID), payload).Err()
}

// Subscribe opens a stream of readings for one device. The caller owns the
// returned subscription and must Close it.
func (b *Broker) Subscribe(ctx context.Context, deviceID string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelFor(deviceID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &Subscription{
		pubsub:   pubsub,
		readings: make(chan models.SensorReading, 16),
		done:     make(chan struct{}),
		logger:   b.logger,
	}
	go sub.pump()
	return sub, nil
}

// Subscription is a cancellable stream of readings for one device.
type Subscription struct {
	pubsub   *redis.PubSub
	readings chan models.SensorReading
	done     chan struct{}
	once     sync.Once
	logger   *zap.Logger
}

// Readings yields pushed readings in delivery order. The channel is closed
// after Close or when the underlying connection drops.
func (s *Subscription) Readings() <-chan models.SensorReading {
	return s.readings
}

// Close cancels the subscription. No reading is delivered after Close returns
// and the subscription is observed closed, even for messages already queued.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.pubsub.Close()
	})
}

func (s *Subscription) pump() {
	defer close(s.readings)

	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var reading models.SensorReading
			if err := json.Unmarshal([]byte(msg.Payload), &reading); err != nil {
				s.logger.Warn("dropping malformed reading event", zap.Error(err))
				continue
			}
			select {
			case s.readings <- reading:
			case <-s.done:
				return
			}
		}
	}
}
