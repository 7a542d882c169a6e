// Package balancer picks an upstream address for a request key.
//
// Strategies form a closed set selected by configuration. Each one is a pure
// mapping from key to address index, except round-robin which advances a
// shared counter.
package balancer

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync/atomic"
)

// Strategy selects how a Picker maps keys to upstreams.
type Strategy int

const (
	// RoundRobin cycles through the upstreams regardless of the key.
	RoundRobin Strategy = iota
	// PathHash sends equal keys to the same upstream.
	PathHash
)

var (
	// ErrNoUpstreams is returned when a Picker is built without addresses.
	ErrNoUpstreams = errors.New("no upstream addresses")

	// ErrUnknownStrategy is returned for strategies outside the known set.
	ErrUnknownStrategy = errors.New("unknown balancing strategy")
)

// ParseStrategy converts round-robin|path-hash into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "round-robin":
		return RoundRobin, nil
	case "path-hash":
		return PathHash, nil
	default:
		return RoundRobin, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

func (s Strategy) String() string {
	switch s {
	case RoundRobin:
		return "round-robin"
	case PathHash:
		return "path-hash"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Picker chooses among a fixed list of upstream addresses. It is safe for concurrent use.
type Picker struct {
	strategy  Strategy
	upstreams []string
	counter   atomic.Uint64
}

// New returns a Picker over upstreams using strategy.
func New(strategy Strategy, upstreams []string) (*Picker, error) {
	if len(upstreams) == 0 {
		return nil, ErrNoUpstreams
	}
	if strategy != RoundRobin && strategy != PathHash {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}
	return &Picker{
		strategy:  strategy,
		upstreams: append([]string(nil), upstreams...),
	}, nil
}

// Pick returns the upstream for key.
func (p *Picker) Pick(key string) string {
	return p.upstreams[p.index(key)]
}

func (p *Picker) index(key string) int {
	n := uint64(len(p.upstreams))
	switch p.strategy {
	case PathHash:
		h := fnv.New64a()
		_, _ = h.Write([]byte(key))
		return int(h.Sum64() % n)
	default:
		return int((p.counter.Add(1) - 1) % n)
	}
}

// Strategy returns the strategy of the picker.
func (p *Picker) Strategy() Strategy { return p.strategy }
