// Package runtime assembles the application: it builds the adapters,
// wires them into the core services and hands the composed graph to the
// driving side.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docbridge/internal/adapters/driven/auth"
	"github.com/custodia-labs/docbridge/internal/adapters/driven/clock"
	"github.com/custodia-labs/docbridge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docbridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docbridge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docbridge/internal/adapters/driven/ws"
	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/core/services"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Services is the composed application graph. Built once at startup and
// torn down with Close.
type Services struct {
	cache       *memory.Cache
	store       *sqlite.Store
	channel     *ws.Channel
	mutator     *services.OptimisticManager
	resolver    *services.ConflictResolver
	coordinator *services.SyncCoordinator
	settings    *services.SettingsService
	inspector   *auth.Inspector
	syncConfig  domain.SyncSettings
}

// channelRef breaks the construction cycle between the optimistic manager
// (which needs a sender) and the channel (which needs the event handler
// built on top of the manager).
type channelRef struct {
	mu      sync.RWMutex
	channel driven.OperationSender
}

func (r *channelRef) set(s driven.OperationSender) {
	r.mu.Lock()
	r.channel = s
	r.mu.Unlock()
}

func (r *channelRef) SendOperation(op domain.Operation) error {
	r.mu.RLock()
	ch := r.channel
	r.mu.RUnlock()
	if ch == nil {
		return domain.ErrNotConnected
	}
	return ch.SendOperation(op)
}

// Build constructs the full service graph. configDir selects where the
// config file lives; empty uses the default under the user home.
func Build(configDir string) (*Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	settings := services.NewSettingsService(configStore)
	syncConfig := settings.SyncSettings()

	store, err := sqlite.NewStore(syncConfig.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	clk := clock.NewSystem()
	cache := memory.NewCache()
	ref := &channelRef{}

	mutator := services.NewOptimisticManager(cache, ref, clk)
	resolver := services.NewConflictResolver(cache, mutator, clk, store.ResolutionHistory())
	coordinator := services.NewSyncCoordinator(cache, mutator, resolver, store.SnapshotStore())

	channel := ws.NewChannel(syncConfig, coordinator, cache, clk)
	ref.set(channel)

	return &Services{
		cache:       cache,
		store:       store,
		channel:     channel,
		mutator:     mutator,
		resolver:    resolver,
		coordinator: coordinator,
		settings:    settings,
		inspector:   auth.NewInspector(clk),
		syncConfig:  syncConfig,
	}, nil
}

// Connect validates the configured token, primes the cache from the local
// snapshot and opens the sync channel.
func (s *Services) Connect(ctx context.Context) error {
	if _, err := s.inspector.Inspect(s.syncConfig.AuthToken); err != nil {
		return fmt.Errorf("auth token: %w", err)
	}
	if err := s.coordinator.PrimeFromSnapshot(ctx); err != nil {
		return fmt.Errorf("prime snapshot: %w", err)
	}
	return s.channel.Connect(ctx)
}

// Close disconnects the channel, flushes the local snapshot and releases
// storage.
func (s *Services) Close() error {
	s.channel.Disconnect()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.coordinator.FlushSnapshot(ctx); err != nil {
		logger.Warn("flush document snapshot: %v", err)
	}
	return s.store.Close()
}

// Cache returns the document cache.
func (s *Services) Cache() *memory.Cache { return s.cache }

// Channel returns the sync channel.
func (s *Services) Channel() *ws.Channel { return s.channel }

// Mutator returns the optimistic operation manager.
func (s *Services) Mutator() *services.OptimisticManager { return s.mutator }

// Resolver returns the conflict resolver.
func (s *Services) Resolver() *services.ConflictResolver { return s.resolver }

// Settings returns the settings service.
func (s *Services) Settings() *services.SettingsService { return s.settings }

// SyncConfig returns the effective sync settings.
func (s *Services) SyncConfig() domain.SyncSettings { return s.syncConfig }
