package mqtt

import (
	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/status"
	"go.uber.org/zap"
)

// Bus event kinds published on connection changes, alongside the status
// machine's own transition events.
const (
	KindConnected    = "transport.connected"
	KindDisconnected = "transport.disconnected"
)

// EventHandler turns paho connection callbacks into status transitions
// and bus events.
type EventHandler struct {
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(b *bus.Bus, machine *status.Machine, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		bus:     b,
		machine: machine,
		logger:  logger,
	}
}

// Connecting records the first connection attempt.
func (h *EventHandler) Connecting() {
	h.ensure(status.Connecting)
}

// Connected records a successful (re)connection with an active subscription.
func (h *EventHandler) Connected() {
	h.logger.Info("broker connected")
	if h.machine != nil && h.machine.Current() == status.Error {
		h.ensure(status.Connecting)
	}
	h.ensure(status.Online)
	h.publish(KindConnected, nil)
}

// ConnectionLost records an unexpected disconnect. paho reconnects on its own.
func (h *EventHandler) ConnectionLost(err error) {
	h.logger.Warn("broker connection lost", zap.Error(err))
	h.ensure(status.Reconnecting)
	h.publish(KindDisconnected, errString(err))
}

// Reconnecting records a reconnection attempt.
func (h *EventHandler) Reconnecting() {
	h.logger.Debug("reconnecting to broker")
	h.ensure(status.Reconnecting)
}

// ConnectFailed records a connection attempt that gave up.
func (h *EventHandler) ConnectFailed(err error) {
	h.logger.Error("broker connection failed", zap.Error(err))
	h.ensure(status.Error)
}

// SubscribeFailed records a connection without a usable subscription. The
// transport cannot receive anything in this state.
func (h *EventHandler) SubscribeFailed(topic string, err error) {
	h.logger.Error("subscribe failed", zap.String("topic", topic), zap.Error(err))
	h.ensure(status.Error)
}

// Disconnected records an orderly shutdown.
func (h *EventHandler) Disconnected() {
	h.ensure(status.Offline)
	h.publish(KindDisconnected, "")
}

func (h *EventHandler) ensure(target status.State) {
	if h.machine == nil {
		return
	}
	if err := h.machine.Ensure(target); err != nil {
		h.logger.Debug("ignoring status transition", zap.Error(err))
	}
}

func (h *EventHandler) publish(kind string, payload any) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(bus.NewEvent(kind, payload))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
