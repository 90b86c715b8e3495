package daemon

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/matheus3301/mqchat/internal/api"
	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/chat"
	"github.com/matheus3301/mqchat/internal/config"
	"github.com/matheus3301/mqchat/internal/lock"
	"github.com/matheus3301/mqchat/internal/logging"
	"github.com/matheus3301/mqchat/internal/loopback"
	"github.com/matheus3301/mqchat/internal/mqtt"
	"github.com/matheus3301/mqchat/internal/protocol"
	"github.com/matheus3301/mqchat/internal/session"
	"github.com/matheus3301/mqchat/internal/status"
	"github.com/matheus3301/mqchat/internal/store"
	intsync "github.com/matheus3301/mqchat/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// LoopbackBroker is reported as the broker address in loopback mode.
const LoopbackBroker = "loopback"

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	Identity string
	Config   *config.Config
	Loopback bool   // route traffic in-process instead of through the broker
	Dir      string // optional override for testing; empty = session.Dir(Identity)
}

func (p Params) dir() string {
	if p.Dir != "" {
		return p.Dir
	}
	return session.Dir(p.Identity)
}

func (p Params) socketPath() string {
	return filepath.Join(p.dir(), "daemon.sock")
}

// Transport carries protocol payloads to and from the other participants.
type Transport interface {
	protocol.Publisher
	RegisterHandler(h protocol.Handler)
	Start(ctx context.Context) error
	Stop()
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			providePruner,
			provideRoster,
			provideTransport,
			provideOutbound,
			provideSyncEngine,
			provideDispatcher,
			provideChatService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDir(p.dir()); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	logPath := filepath.Join(p.dir(), session.LogDirName, "mqchatd.log")
	return logging.New(logPath, p.Identity, p.Config.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring identity lock", zap.String("dir", p.dir()))
	l, err := lock.Acquire(p.dir())
	if err != nil {
		return nil, err
	}
	logger.Info("identity lock acquired")
	return l, nil
}

// provideStore depends on the lock so the journal is never opened by two daemons.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := filepath.Join(p.dir(), "journal.db")
	db, err := store.Open(dbPath, p.Identity)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed() {
		logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("to", result.To))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.To))
	}
	logger.Info("journal initialized", zap.String("path", dbPath))
	return db, nil
}

func providePruner(p Params, db *store.DB, logger *zap.Logger) *store.Pruner {
	return store.NewPruner(db, p.Config.JournalRetention.Duration, logger)
}

func provideRoster(p Params) (*chat.Roster, error) {
	return chat.NewRoster(p.Config.Candidates, p.Identity)
}

func provideTransport(p Params, b *bus.Bus, machine *status.Machine, logger *zap.Logger) Transport {
	if p.Loopback {
		logger.Info("using loopback transport")
		return loopback.NewTransport(loopback.NewBroker(bus.New()), p.Config.Namespace, p.Identity, machine, logger)
	}
	return mqtt.NewAdapter(mqtt.Options{
		Broker:    p.Config.Broker,
		Namespace: p.Config.Namespace,
		Identity:  p.Identity,
		QoS:       byte(p.Config.QoS),
	}, b, machine, logger)
}

func provideOutbound(p Params, t Transport) *protocol.Outbound {
	return protocol.NewOutbound(p.Config.Namespace, t)
}

func provideSyncEngine(p Params, roster *chat.Roster, out *protocol.Outbound, b *bus.Bus, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(roster, out, b, logger, intsync.WithTypingWindow(p.Config.TypingWindow.Duration))
}

func provideDispatcher(p Params, engine *intsync.Engine, out *protocol.Outbound, db *store.DB, logger *zap.Logger) *protocol.Dispatcher {
	return protocol.NewDispatcher(p.Config.Namespace, engine, out, db, logger)
}

func provideChatService(p Params, engine *intsync.Engine, machine *status.Machine, db *store.DB, b *bus.Bus, logger *zap.Logger) *api.ChatService {
	broker := p.Config.Broker
	if p.Loopback {
		broker = LoopbackBroker
	}
	info := api.Info{Identity: p.Identity, Namespace: p.Config.Namespace, Broker: broker}
	return api.NewChatService(info, engine, machine, db, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, pruner *store.Pruner, transport Transport, dispatcher *protocol.Dispatcher, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			transport.RegisterHandler(dispatcher)
			pruner.Start(context.Background())

			// Start gRPC server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			// Connecting continues in the background; progress is reported
			// through the status machine.
			return transport.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			transport.Stop()
			pruner.Stop()
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing journal", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
