package domain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
	"github.com/robfig/cron/v3"
)

type LifecycleConfig struct {
	SweepInterval time.Duration
	FileMaxAge    time.Duration
	PendingTTL    time.Duration
}

// LifecycleManager bounds the retention window of publicly served files: a
// sweep runs once at startup and then on a fixed schedule, renames aged
// files into the archive area and invalidates their media map entries. The
// same sweep evicts pending messages older than PendingTTL, so a client
// that never uploads cannot grow the queue without bound.
type LifecycleManager struct {
	blobs    ports.BlobStore
	relay    *RelayService
	uploads  ports.UploadRepository
	notifier ports.Notifier
	cfg      LifecycleConfig

	cron *cron.Cron
	now  func() time.Time
}

func NewLifecycleManager(
	blobs ports.BlobStore,
	relay *RelayService,
	uploads ports.UploadRepository,
	notifier ports.Notifier,
	cfg LifecycleConfig,
) *LifecycleManager {
	return &LifecycleManager{
		blobs:    blobs,
		relay:    relay,
		uploads:  uploads,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Start runs the startup sweep synchronously, then schedules the periodic
// sweep for the lifetime of the manager.
func (m *LifecycleManager) Start() error {
	m.Sweep(context.Background())

	c := cron.New()
	spec := fmt.Sprintf("@every %s", m.cfg.SweepInterval)
	if _, err := c.AddFunc(spec, func() { m.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	m.cron = c

	log.Printf("[sweep] scheduled interval=%s max_age=%s", m.cfg.SweepInterval, m.cfg.FileMaxAge)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *LifecycleManager) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

// Sweep runs one aging pass. Per-file failures are logged and skipped; a
// panic anywhere in the pass is caught so the next scheduled run proceeds.
func (m *LifecycleManager) Sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[sweep] recovered: %v", r)
		}
	}()

	now := m.now()

	files, err := m.blobs.List(ctx, models.ScopePublic)
	if err != nil {
		log.Printf("[sweep] list public files: %v", err)
		return
	}

	archived := 0
	for _, f := range files {
		age := now.Sub(f.CreatedAt)
		if age <= m.cfg.FileMaxAge {
			continue
		}

		if err := m.blobs.Archive(ctx, f.Name); err != nil {
			log.Printf("[sweep] archive %s: %v", f.Name, err)
			continue
		}
		archived++

		if m.relay.InvalidateURL(f.URL) {
			log.Printf("[sweep] invalidated url=%s", f.URL)
		}

		if m.uploads != nil {
			if err := m.uploads.MarkArchivedByURL(ctx, f.URL); err != nil {
				log.Printf("[sweep] mark archived %s: %v", f.Name, err)
			}
		}

		m.notify("file_archived", map[string]any{
			"name": f.Name,
			"age":  age.String(),
		})
	}

	if evicted := m.relay.EvictBefore(now.Add(-m.cfg.PendingTTL)); evicted > 0 {
		log.Printf("[sweep] evicted %d stale pending messages", evicted)
	}

	log.Printf("[sweep] done listed=%d archived=%d", len(files), archived)
}

func (m *LifecycleManager) notify(event string, fields map[string]any) {
	if m.notifier == nil {
		return
	}
	go func() {
		if err := m.notifier.Notify(context.Background(), event, fields); err != nil {
			log.Printf("[notify] %s: %v", event, err)
		}
	}()
}
