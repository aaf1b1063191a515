package ingest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/logging"
)

// Holder publishes the current schema to readers without locking.
type Holder struct {
	current atomic.Pointer[Schema]
}

// NewHolder returns a holder publishing s.
func NewHolder(s *Schema) *Holder {
	h := &Holder{}
	h.current.Store(s)
	return h
}

// Load returns the current schema.
func (h *Holder) Load() *Schema {
	return h.current.Load()
}

// Store replaces the current schema.
func (h *Holder) Store(s *Schema) {
	h.current.Store(s)
}

// Reloader rebuilds the schema when its files change and swaps it into a
// Holder. A load with any diagnostic leaves the current schema in place.
type Reloader struct {
	cfg     config.SchemaConfig
	holder  *Holder
	logger  logging.Logger
	watcher *config.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	// mu serializes reloads triggered by the watcher and by Reload.
	mu sync.Mutex
}

// NewReloader watches cfg.Files and publishes rebuilt schemas to holder.
func NewReloader(cfg config.SchemaConfig, holder *Holder, logger logging.Logger) (*Reloader, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Reloader{cfg: cfg, holder: holder, logger: logger}
	w, err := config.NewWatcher(&config.WatcherConfig{
		Paths:        cfg.Files,
		PollInterval: cfg.Reload.PollInterval,
		Debounce:     cfg.Reload.Debounce,
		OnChange:     r.onChange,
	})
	if err != nil {
		return nil, err
	}
	r.watcher = w
	return r, nil
}

// Start begins watching. ctx bounds every reload the watcher triggers.
func (r *Reloader) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.watcher.Start()
}

// Stop stops watching and cancels an in-flight reload.
func (r *Reloader) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.watcher.Stop()
}

func (r *Reloader) onChange(changed []string) {
	r.logger.Info("schema files changed", "files", changed)
	_, _ = r.Reload(r.ctx)
}

// Reload rebuilds the schema now. It reports whether the holder was
// updated.
func (r *Reloader) Reload(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := Load(ctx, &r.cfg, r.logger)
	if err != nil {
		r.logger.Error("schema reload failed", "err", err)
		return false, err
	}
	if !s.Report.OK() {
		r.logger.Warn("schema reload rejected, keeping current schema",
			"pass_id", s.Report.PassID,
			"diagnostics", len(s.Report.Diagnostics),
		)
		return false, nil
	}

	r.holder.Store(s)
	r.logger.Info("schema reloaded",
		"pass_id", s.Report.PassID,
		"attribute_types", s.Registry.NumAttributeTypes(),
		"object_classes", s.Registry.NumObjectClasses(),
	)
	return true, nil
}
