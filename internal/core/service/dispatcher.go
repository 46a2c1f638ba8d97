package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/port"
)

// DispatcherConfig controls the persistence worker pool.
type DispatcherConfig struct {
	Workers      int
	QueueSize    int
	WriteTimeout time.Duration
}

// Dispatcher drains the commit queue. Events are published in commit order;
// changesets are written by a worker pool since repositories ignore rows
// older than what they already hold.
type Dispatcher struct {
	cfg        DispatcherConfig
	queue      <-chan domain.Commit
	repo       port.LedgerRepository
	publishers []port.EventPublisher
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher. repo may be nil when nothing is
// persisted.
func NewDispatcher(cfg DispatcherConfig, queue <-chan domain.Commit, repo port.LedgerRepository, publishers []port.EventPublisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Dispatcher{
		cfg:        cfg,
		queue:      queue,
		repo:       repo,
		publishers: publishers,
		logger:     logger,
	}
}

// Run blocks until the commit queue is closed and every write has finished.
func (d *Dispatcher) Run() {
	writes := make(chan domain.Commit, d.cfg.QueueSize)

	var wg sync.WaitGroup
	if d.repo != nil {
		for i := 0; i < d.cfg.Workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				d.workerLoop(id, writes)
			}(i)
		}
		d.logger.Info("started commit workers", "count", d.cfg.Workers)
	}

	for commit := range d.queue {
		d.publish(commit)
		if d.repo != nil {
			writes <- commit
		}
	}

	close(writes)
	wg.Wait()
	d.logger.Info("commit dispatcher stopped")
}

func (d *Dispatcher) publish(commit domain.Commit) {
	if len(commit.Events) == 0 {
		return
	}
	for _, p := range d.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)
		if err := p.Publish(ctx, commit.Events); err != nil {
			d.logger.Error("failed to publish events", "seq", commit.Seq, "error", err)
		}
		cancel()
	}
}

func (d *Dispatcher) workerLoop(id int, writes <-chan domain.Commit) {
	for commit := range writes {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)

		if err := d.repo.ApplyCommit(ctx, commit); err != nil {
			d.logger.Error("CRITICAL failed to persist commit",
				"worker", id,
				"seq", commit.Seq,
				"error", err,
			)
		} else {
			d.logger.Debug("persisted commit", "worker", id, "seq", commit.Seq)
		}

		cancel()
	}
}
