// Package broadcaster drains the fill outbox to Kafka. Delivery is
// at-least-once: an entry is marked SENT before the publish and ACKED
// after the broker confirms, so a crash in between re-sends on the next
// sweep and consumers must de-duplicate by sequence.
package broadcaster

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"bulkbook/infra/outbox"
)

type Broadcaster struct {
	out      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *slog.Logger
}

func New(
	out *outbox.Outbox,
	brokers []string,
	topic string,
	interval time.Duration,
	log *slog.Logger,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		out:      out,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Run sweeps the outbox until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", "topic", b.topic)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("broadcaster stopping")
			return
		case <-ticker.C:
			b.sweep()
		}
	}
}

func (b *Broadcaster) sweep() {
	err := b.out.ScanPending(func(e *outbox.Entry) error {
		if err := b.out.MarkSent(e.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(e.Seq, 10)),
			Value: sarama.ByteEncoder(e.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Entry stays SENT; next sweep retries it.
			b.log.Warn("publish failed", "seq", e.Seq, "retries", e.Retries, "err", err)
			return nil
		}

		return b.out.MarkAcked(e.Seq)
	})
	if err != nil {
		b.log.Error("outbox sweep failed", "err", err)
	}

	if n, err := b.out.PurgeAcked(); err != nil {
		b.log.Error("outbox purge failed", "err", err)
	} else if n > 0 {
		b.log.Debug("purged acked fills", "count", n)
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
