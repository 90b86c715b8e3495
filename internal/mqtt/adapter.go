package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/protocol"
	"github.com/matheus3301/mqchat/internal/status"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by Publish while the broker connection is down.
var ErrNotConnected = errors.New("not connected to broker")

const (
	connectTimeout    = 10 * time.Second
	subscribeTimeout  = 5 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// Options configures the broker connection.
type Options struct {
	Broker    string
	ClientID  string
	Namespace string
	Identity  string
	QoS       byte
}

// Adapter wraps the paho client. It subscribes to every topic addressed to
// the local identity and hands messages to the registered Handler.
type Adapter struct {
	client paho.Client
	opts   Options
	events *EventHandler
	logger *zap.Logger

	mu      sync.RWMutex
	handler protocol.Handler
}

// NewAdapter creates an adapter. The connection is opened by Start.
func NewAdapter(opts Options, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ClientID == "" {
		opts.ClientID = "mqchat-" + opts.Identity
	}
	a := &Adapter{
		opts:   opts,
		events: NewEventHandler(b, machine, logger),
		logger: logger,
	}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(a.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			a.events.ConnectionLost(err)
		}).
		SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
			a.events.Reconnecting()
		})
	a.client = paho.NewClient(co)
	return a
}

// RegisterHandler sets the receiver of inbound messages. Must be called before Start.
func (a *Adapter) RegisterHandler(h protocol.Handler) {
	a.mu.Lock()
	a.handler = h
	a.mu.Unlock()
}

// Start begins connecting to the broker. It does not wait for the connection:
// paho keeps retrying in the background and the status machine reports progress.
func (a *Adapter) Start(ctx context.Context) error {
	a.logger.Info("connecting to broker", zap.String("broker", a.opts.Broker), zap.String("client_id", a.opts.ClientID))
	a.events.Connecting()

	token := a.client.Connect()
	go func() {
		select {
		case <-token.Done():
			if err := token.Error(); err != nil {
				a.events.ConnectFailed(err)
			}
		case <-ctx.Done():
		}
	}()
	return nil
}

// Stop unsubscribes and closes the connection.
func (a *Adapter) Stop() {
	if a.client.IsConnectionOpen() {
		topic := protocol.SubscriptionTopic(a.opts.Namespace, a.opts.Identity)
		a.client.Unsubscribe(topic).WaitTimeout(subscribeTimeout)
	}
	a.logger.Info("disconnecting from broker")
	a.client.Disconnect(disconnectQuiesce)
	a.events.Disconnected()
}

// Connected reports whether the broker connection is currently up.
func (a *Adapter) Connected() bool {
	return a.client.IsConnectionOpen()
}

// Publish hands payload to the client without waiting for the broker.
// Failures surfacing later are logged.
func (a *Adapter) Publish(topic string, payload []byte) error {
	if !a.client.IsConnectionOpen() {
		return fmt.Errorf("publish %s: %w", topic, ErrNotConnected)
	}
	token := a.client.Publish(topic, a.opts.QoS, false, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			a.logger.Error("publish failed", zap.Error(err), zap.String("topic", topic))
		}
	}()
	return nil
}

// onConnect runs on every (re)connection. The session is clean, so the
// subscription is renewed each time.
func (a *Adapter) onConnect(c paho.Client) {
	topic := protocol.SubscriptionTopic(a.opts.Namespace, a.opts.Identity)
	token := c.Subscribe(topic, a.opts.QoS, a.onMessage)
	if !token.WaitTimeout(subscribeTimeout) {
		a.events.SubscribeFailed(topic, errors.New("subscribe timed out"))
		return
	}
	if err := token.Error(); err != nil {
		a.events.SubscribeFailed(topic, err)
		return
	}
	a.logger.Info("subscribed", zap.String("topic", topic))
	a.events.Connected()
}

func (a *Adapter) onMessage(_ paho.Client, msg paho.Message) {
	a.mu.RLock()
	h := a.handler
	a.mu.RUnlock()
	if h == nil {
		a.logger.Warn("no handler registered, discarding message", zap.String("topic", msg.Topic()))
		return
	}
	h.Handle(msg.Topic(), msg.Payload())
}
