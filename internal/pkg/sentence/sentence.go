// Package sentence supplies the challenge sentences typed in each round.
package sentence

import (
	_ "embed"
	"math/rand"
	"strings"
	"sync"
	"time"
)

//go:embed sentences.txt
var corpus string

// Provider hands out sentences drawn without replacement from a pool,
// refilling the pool from the full corpus once it runs dry. Safe for use by
// concurrent games.
type Provider struct {
	mu   sync.Mutex
	all  []string
	pool []string
	rand *rand.Rand
}

// Cfg configures a Provider.
type Cfg func(*Provider) error

// WithCorpus replaces the embedded corpus.
func WithCorpus(sentences []string) Cfg {
	return func(p *Provider) error {
		p.all = sentences
		return nil
	}
}

// WithSeed fixes the random source, for tests.
func WithSeed(seed int64) Cfg {
	return func(p *Provider) error {
		p.rand = rand.New(rand.NewSource(seed))
		return nil
	}
}

// NewProvider creates a new Provider with the given configuration.
func NewProvider(cfgs ...Cfg) (*Provider, error) {
	p := &Provider{
		rand: rand.New(rand.NewSource(time.Now().Unix())),
	}
	for _, cfg := range cfgs {
		if err := cfg(p); err != nil {
			return nil, err
		}
	}
	if p.all == nil {
		p.all = parseCorpus(corpus)
	}
	if len(p.all) == 0 {
		return nil, ErrEmptyCorpus
	}
	return p, nil
}

// Next returns one sentence, guaranteed non-empty. Sentences do not repeat
// until the pool is exhausted; no ordering is guaranteed across refills.
func (p *Provider) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pool) == 0 {
		p.pool = append(p.pool, p.all...)
	}
	i := p.rand.Intn(len(p.pool))
	s := p.pool[i]
	p.pool[i] = p.pool[len(p.pool)-1]
	p.pool = p.pool[:len(p.pool)-1]
	return s
}

func parseCorpus(raw string) []string {
	var sentences []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
	}
	return sentences
}
