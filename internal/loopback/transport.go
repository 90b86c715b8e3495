package loopback

import (
	"context"
	"sync"

	"github.com/matheus3301/mqchat/internal/protocol"
	"github.com/matheus3301/mqchat/internal/status"
	"go.uber.org/zap"
)

// Transport presents a broker and one peer with the same lifecycle as the
// MQTT adapter, so a daemon can run without a network broker.
type Transport struct {
	broker    *Broker
	namespace string
	self      string
	machine   *status.Machine
	logger    *zap.Logger

	mu      sync.Mutex
	handler protocol.Handler
	peer    *Peer
}

// NewTransport creates a transport for self on br. machine may be nil.
func NewTransport(br *Broker, namespace, self string, machine *status.Machine, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		broker:    br,
		namespace: namespace,
		self:      self,
		machine:   machine,
		logger:    logger,
	}
}

// RegisterHandler sets the receiver of inbound messages. Must be called before Start.
func (t *Transport) RegisterHandler(h protocol.Handler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// Start subscribes the peer. The transport is online as soon as it returns.
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensure(status.Connecting)
	t.peer = NewPeer(t.broker, t.namespace, t.self, t.handler, t.logger)
	if err := t.peer.Start(ctx); err != nil {
		t.ensure(status.Error)
		return err
	}
	t.ensure(status.Online)
	return nil
}

// Stop ends delivery.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.peer != nil {
		t.peer.Stop()
		t.peer = nil
	}
	t.ensure(status.Offline)
}

// Publish implements protocol.Publisher.
func (t *Transport) Publish(topic string, payload []byte) error {
	return t.broker.Publish(topic, payload)
}

func (t *Transport) ensure(target status.State) {
	if t.machine == nil {
		return
	}
	if err := t.machine.Ensure(target); err != nil {
		t.logger.Debug("ignoring status transition", zap.Error(err))
	}
}
