package recommender

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LoadFunc produces the recommendation table, typically via LoadTable.
type LoadFunc func(ctx context.Context) (Table, error)

// Provider hands out the current Recommender. It starts Uninitialized and
// is swapped exactly once when the startup load finishes.
type Provider struct {
	current atomic.Pointer[Recommender]
	swapped atomic.Bool
	rules   []SymptomRule
	logger  *logrus.Logger
}

func NewProvider(rules []SymptomRule, logger *logrus.Logger) *Provider {
	p := &Provider{rules: rules, logger: logger}
	p.current.Store(New(Uninitialized(), rules, logger))
	return p
}

func (p *Provider) Current() *Recommender {
	return p.current.Load()
}

// Resolve installs the final load state. Later calls are ignored and report
// false.
func (p *Provider) Resolve(state LoadState) bool {
	if !p.swapped.CompareAndSwap(false, true) {
		return false
	}
	p.current.Store(New(state, p.rules, p.logger))
	return true
}

// Load runs load and resolves the provider with its outcome. A failure is
// logged once as the degraded-mode banner.
func (p *Provider) Load(ctx context.Context, load LoadFunc) {
	table, err := load(ctx)
	if err != nil {
		p.logger.WithError(err).Warn(LoadFailureNotice)
		p.Resolve(Failed(err))
		return
	}
	p.Resolve(Loaded(table))
}

// LoadAsync runs Load in the background and returns a channel closed once
// the state is resolved.
func (p *Provider) LoadAsync(ctx context.Context, load LoadFunc) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Load(ctx, load)
	}()
	return done
}
