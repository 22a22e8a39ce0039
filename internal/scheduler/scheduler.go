package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fentz26/recur/internal/board"
	"github.com/fentz26/recur/internal/models"
)

// EventSource pushes live change notifications.
type EventSource interface {
	Subscribe() (<-chan models.ChangeEvent, func())
}

// Stats counts the work done by a scheduler.
type Stats struct {
	Ticks   int       `json:"ticks"`
	Reloads int       `json:"reloads"`
	Events  int       `json:"events"`
	LastNow time.Time `json:"last_now"`
}

// Scheduler keeps a board's view current.
type Scheduler struct {
	board  *board.Board
	clock  Clock
	events EventSource
	config *Config

	mu    sync.Mutex
	stats Stats

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new scheduler. events may be nil, in which case the board
// only changes through its own intents and periodic reloads.
func New(b *board.Board, clock Clock, events EventSource, cfg *Config) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		board:  b,
		clock:  clock,
		events: events,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Clock returns the scheduler's clock.
func (sch *Scheduler) Clock() Clock {
	return sch.clock
}

// Start loads the board, feeds it the current time and begins the loop.
func (sch *Scheduler) Start() {
	var events <-chan models.ChangeEvent
	unsubscribe := func() {}
	if sch.events != nil {
		events, unsubscribe = sch.events.Subscribe()
	}

	sch.reload()
	sch.tick()

	sch.wg.Add(1)
	go sch.loop(events, unsubscribe)
	log.Println("Scheduler started")
}

// Stop gracefully stops the scheduler.
func (sch *Scheduler) Stop() {
	sch.cancel()
	sch.wg.Wait()
	log.Println("Scheduler stopped")
}

func (sch *Scheduler) loop(events <-chan models.ChangeEvent, unsubscribe func()) {
	defer sch.wg.Done()
	defer unsubscribe()

	ticker := time.NewTicker(sch.config.TickInterval)
	defer ticker.Stop()

	var refresh <-chan time.Time
	if sch.config.RefreshInterval > 0 {
		refreshTicker := time.NewTicker(sch.config.RefreshInterval)
		defer refreshTicker.Stop()
		refresh = refreshTicker.C
	}

	for {
		select {
		case <-sch.ctx.Done():
			return
		case <-ticker.C:
			sch.tick()
		case <-refresh:
			sch.reload()
		case ev, ok := <-events:
			if !ok {
				// Source closed; rely on periodic reloads from here on.
				events = nil
				continue
			}
			sch.board.Apply(ev)
			sch.mu.Lock()
			sch.stats.Events++
			sch.mu.Unlock()
		}
	}
}

// tick feeds the current time to the board.
func (sch *Scheduler) tick() {
	now := sch.clock.Now()
	sch.board.SetNow(now)

	sch.mu.Lock()
	sch.stats.Ticks++
	sch.stats.LastNow = now
	sch.mu.Unlock()
}

// reload replaces the board's collection from storage.
func (sch *Scheduler) reload() {
	ctx, cancel := context.WithTimeout(sch.ctx, 10*time.Second)
	defer cancel()

	if err := sch.board.Load(ctx); err != nil {
		log.Printf("Error reloading tasks: %v", err)
		return
	}

	sch.mu.Lock()
	sch.stats.Reloads++
	sch.mu.Unlock()
}

// GetStats returns current scheduler statistics.
func (sch *Scheduler) GetStats() Stats {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	return sch.stats
}
