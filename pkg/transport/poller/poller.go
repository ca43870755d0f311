// Package poller drives transport poll events from a cron schedule.
//
// Event-driven stacks poll idle connections periodically so owners get a
// chance to drain buffered data even when no acknowledgments arrive. A
// single Poller can serve many transports; each registers a callback and
// every tick calls all of them.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vnykmshr/asyncwire/pkg/common/validation"
)

// DefaultSpec polls once per second.
const DefaultSpec = "@every 1s"

// Poller fires registered callbacks on a cron schedule.
type Poller struct {
	cron   *cron.Cron
	spec   string
	logger *zap.Logger

	mu      sync.Mutex
	nextID  uint64
	targets map[uint64]func()
	entry   cron.EntryID
	started bool
}

// New parses spec with a seconds-capable parser. Descriptors such as
// "@every 500ms" are accepted; cron rounds intervals up to one second.
func New(spec string, logger *zap.Logger) (*Poller, error) {
	if err := validation.ValidateNotEmpty("poller", "spec", spec); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid poll schedule '%s': %w", spec, err)
	}

	p := &Poller{
		cron:    cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		spec:    spec,
		logger:  logger.Named("poller"),
		targets: make(map[uint64]func()),
	}
	id, err := p.cron.AddFunc(spec, p.Tick)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule poll: %w", err)
	}
	p.entry = id
	return p, nil
}

// Spec returns the schedule the poller was built with.
func (p *Poller) Spec() string {
	return p.spec
}

// Register adds fn to every tick. The returned cancel function removes it
// and is safe to call more than once.
func (p *Poller) Register(fn func()) (cancel func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.targets[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.targets, id)
			p.mu.Unlock()
		})
	}
}

// Len returns the number of registered callbacks.
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.targets)
}

// Tick calls every registered callback now.
func (p *Poller) Tick() {
	p.mu.Lock()
	fns := make([]func(), 0, len(p.targets))
	for _, fn := range p.targets {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Start begins ticking on the schedule.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.cron.Start()
	p.logger.Debug("poller started", zap.String("spec", p.spec))
}

// Stop halts the schedule. The returned context is done once any running
// tick has finished.
func (p *Poller) Stop() context.Context {
	p.mu.Lock()
	p.started = false
	p.mu.Unlock()
	p.logger.Debug("poller stopped")
	return p.cron.Stop()
}

// Next returns the time of the next scheduled tick, or the zero time when
// the poller is not running.
func (p *Poller) Next() time.Time {
	return p.cron.Entry(p.entry).Next
}
