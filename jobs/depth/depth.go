// Package depth periodically publishes aggregated top-of-book snapshots
// to the market-data topic. Snapshots are derived state: losing one is
// harmless, so publishing is fire-and-forget with RequireOne acks.
package depth

import (
	"context"
	"log/slog"
	"time"

	"bulkbook/api/wire"
	"bulkbook/domain/book"
	"bulkbook/infra/feed"
	"bulkbook/service"
)

type Publisher struct {
	svc      *service.OrderService
	producer *feed.Producer
	symbol   string
	levels   int
	interval time.Duration
	log      *slog.Logger
}

func New(
	svc *service.OrderService,
	producer *feed.Producer,
	symbol string,
	levels int,
	interval time.Duration,
	log *slog.Logger,
) *Publisher {
	return &Publisher{
		svc:      svc,
		producer: producer,
		symbol:   symbol,
		levels:   levels,
		interval: interval,
		log:      log,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.log.Info("depth publisher started", "symbol", p.symbol, "levels", p.levels)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("depth publisher stopping")
			return
		case <-ticker.C:
			p.publishOnce(ctx)
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) {
	for _, side := range []book.Side{book.Bid, book.Ask} {
		ev := &wire.DepthEvent{
			Seq:    p.svc.Sequence(),
			Side:   side,
			Levels: p.svc.Depth(side, p.levels),
		}
		key := []byte(p.symbol + "/" + side.String())
		if err := p.producer.Send(ctx, key, wire.AppendDepthEvent(nil, ev)); err != nil {
			p.log.Warn("depth publish failed", "side", side.String(), "err", err)
			return
		}
	}
}
