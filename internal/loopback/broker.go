// Package loopback connects sync engines living in the same process through
// the event bus instead of a network broker.
package loopback

import (
	"context"
	"sync"

	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/protocol"
	"go.uber.org/zap"
)

const peerBuffer = 256

// Broker routes payloads by topic over a bus. Event kinds are full topics.
type Broker struct {
	bus *bus.Bus
}

// NewBroker creates a broker on b.
func NewBroker(b *bus.Bus) *Broker {
	return &Broker{bus: b}
}

// Publish implements protocol.Publisher. The payload is copied so callers may
// reuse their buffer.
func (br *Broker) Publish(topic string, payload []byte) error {
	br.bus.Publish(bus.NewEvent(topic, append([]byte(nil), payload...)))
	return nil
}

// Peer delivers the broker's traffic for one identity to its handler.
type Peer struct {
	broker  *Broker
	prefix  string
	handler protocol.Handler
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPeer creates a peer receiving everything addressed to self in namespace.
func NewPeer(br *Broker, namespace, self string, h protocol.Handler, logger *zap.Logger) *Peer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Peer{
		broker:  br,
		prefix:  protocol.TopicPrefix(namespace, self),
		handler: h,
		logger:  logger,
	}
}

// Start subscribes and begins delivering. Events published before Start are
// not seen.
func (p *Peer) Start(ctx context.Context) error {
	ch, unsub := p.broker.bus.Subscribe(p.prefix, peerBuffer)
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer unsub()
		p.loop(ctx, ch)
	}()
	p.logger.Info("loopback peer started", zap.String("prefix", p.prefix))
	return nil
}

// Stop ends delivery and waits for the in-flight event to finish.
func (p *Peer) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Peer) loop(ctx context.Context, ch <-chan bus.Event) {
	for {
		select {
		case evt := <-ch:
			payload, ok := evt.Payload.([]byte)
			if !ok {
				p.logger.Warn("ignoring non-payload event", zap.String("kind", evt.Kind))
				continue
			}
			p.handler.Handle(evt.Kind, payload)
		case <-ctx.Done():
			return
		}
	}
}
