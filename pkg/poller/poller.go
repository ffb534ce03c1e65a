// Package poller tracks submitted transactions to completion, polling
// the backend on a shared timer and pushing status notifications.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/remitflow/remitflow/infra/metrics"
	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/notification"
	"github.com/remitflow/remitflow/pkg/provider"
)

// Task is one tracked transaction.
type Task struct {
	ID         string
	ChatID     string
	StartedAt  time.Time
	LastStatus domain.TransferStatus
	Polls      int
}

// Config wires a Poller.
type Config struct {
	Backend   provider.TransferBackend
	Messenger provider.Messenger
	// Interval drives the shared production timer. Zero disables the
	// timer entirely; tests then drive Tick directly.
	Interval       time.Duration
	MaxDuration    time.Duration
	MaxPolls       int
	ErrorThreshold int
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

// Poller owns the set of in-flight transactions. One shared timer
// drives a synchronous pass over all tasks per tick; there is no
// per-task timer. The first tracked task starts the timer, removing the
// last stops it.
type Poller struct {
	backend        provider.TransferBackend
	messenger      provider.Messenger
	interval       time.Duration
	maxDuration    time.Duration
	maxPolls       int
	errorThreshold int
	logger         *slog.Logger
	metrics        *metrics.Metrics
	now            func() time.Time

	mu    sync.Mutex
	tasks map[string]*Task
	stop  chan struct{}
}

// New creates a Poller from cfg.
func New(cfg Config) *Poller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Poller{
		backend:        cfg.Backend,
		messenger:      cfg.Messenger,
		interval:       cfg.Interval,
		maxDuration:    cfg.MaxDuration,
		maxPolls:       cfg.MaxPolls,
		errorThreshold: cfg.ErrorThreshold,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		now:            cfg.Now,
		tasks:          make(map[string]*Task),
	}
}

// Track registers a transaction for polling. Tracking an id that is
// already tracked is a logged no-op.
func (p *Poller) Track(id, chatID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.tasks[id]; exists {
		p.logger.Info("transaction already tracked, ignoring", "id", id)
		return
	}
	p.tasks[id] = &Task{
		ID:         id,
		ChatID:     chatID,
		StartedAt:  p.now(),
		LastStatus: domain.StatusPending,
	}
	p.metrics.SetActiveTasks(len(p.tasks))
	p.logger.Info("tracking transaction", "id", id, "chat", chatID)

	if len(p.tasks) == 1 && p.interval > 0 && p.stop == nil {
		p.stop = make(chan struct{})
		go p.loop(p.stop)
	}
}

// Active returns the number of tracked transactions.
func (p *Poller) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// StopAll clears every task and cancels the shared timer. Used at
// process shutdown only.
func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = make(map[string]*Task)
	p.metrics.SetActiveTasks(0)
	p.stopTimerLocked()
	p.logger.Info("status poller stopped")
}

func (p *Poller) stopTimerLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

func (p *Poller) loop(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Tick(context.Background(), p.now())
		}
	}
}

// Tick runs one synchronous polling pass over all active tasks. The
// production timer calls it on the configured interval; tests call it
// directly with fabricated times.
func (p *Poller) Tick(ctx context.Context, now time.Time) {
	p.mu.Lock()
	snapshot := make([]*Task, 0, len(p.tasks))
	for _, task := range p.tasks {
		snapshot = append(snapshot, task)
	}
	p.mu.Unlock()

	for _, task := range snapshot {
		p.pollTask(ctx, task, now)
	}
}

func (p *Poller) pollTask(ctx context.Context, task *Task, now time.Time) {
	p.mu.Lock()
	if _, live := p.tasks[task.ID]; !live {
		p.mu.Unlock()
		return
	}
	task.Polls++
	polls := task.Polls
	last := task.LastStatus
	p.mu.Unlock()

	p.metrics.Poll()

	if now.Sub(task.StartedAt) > p.maxDuration || polls > p.maxPolls {
		p.logger.Info("poll budget exceeded", "id", task.ID,
			"polls", polls, "elapsed", now.Sub(task.StartedAt))
		p.remove(task.ID)
		p.notify(ctx, task.ChatID, notification.Timeout(task.ID), "timeout")
		return
	}

	status, err := p.backend.TransferStatus(ctx, task.ID)
	if err != nil {
		// Transient errors ride on the poll count; only a streak past
		// the threshold escalates.
		if polls > p.errorThreshold {
			p.logger.Error("status polling gave up", "id", task.ID, "error", err)
			p.remove(task.ID)
			p.notify(ctx, task.ChatID, notification.PollingError(task.ID), "error")
			return
		}
		p.logger.Warn("status fetch failed, will retry", "id", task.ID, "error", err)
		return
	}

	current := domain.NormalizeStatus(string(status.Status))
	if current == last {
		return
	}

	p.mu.Lock()
	task.LastStatus = current
	p.mu.Unlock()

	var details *domain.TransferDetails
	if current == domain.StatusCompleted {
		if d, err := p.backend.TransferDetails(ctx, task.ID); err != nil {
			p.logger.Warn("completion details unavailable", "id", task.ID, "error", err)
		} else {
			details = d
		}
	}

	if current.IsTerminal() {
		p.remove(task.ID)
	}
	p.notify(ctx, task.ChatID, notification.StatusChange(task.ID, current, details), "status")
	p.logger.Info("transaction status changed", "id", task.ID, "status", current)
}

func (p *Poller) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tasks, id)
	p.metrics.SetActiveTasks(len(p.tasks))
	if len(p.tasks) == 0 {
		p.stopTimerLocked()
	}
}

func (p *Poller) notify(ctx context.Context, chatID, text, kind string) {
	p.metrics.Notification(kind)
	if err := p.messenger.Send(ctx, chatID, text); err != nil {
		p.logger.Error("failed to deliver notification", "chat", chatID, "error", err)
	}
}

// PushUpdate applies an out-of-band status report (webhook) to a
// tracked transaction, emitting the usual status-change notification.
// Unknown ids are ignored.
func (p *Poller) PushUpdate(ctx context.Context, id string, status domain.TransferStatus) {
	current := domain.NormalizeStatus(string(status))

	p.mu.Lock()
	task, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		p.logger.Debug("push update for untracked transaction", "id", id)
		return
	}
	if current == task.LastStatus {
		p.mu.Unlock()
		return
	}
	task.LastStatus = current
	p.mu.Unlock()

	if current.IsTerminal() {
		p.remove(id)
	}
	p.notify(ctx, task.ChatID, notification.StatusChange(id, current, nil), "status")
}
