// Package session keeps tree states in memory per session and writes them
// to durable storage after a quiet period.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"opening_tree/internal/domain/tree"
	errs "opening_tree/internal/errors"
)

// EnvelopeVersion is bumped whenever the persisted layout changes; payloads
// with another version are ignored.
const EnvelopeVersion = 1

// Durable is the key-value store the cache flushes into. Get returns
// errs.ErrNotFound for a missing key.
type Durable interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Envelope is the persisted form of a session.
type Envelope struct {
	State   tree.State `json:"state"`
	Version int        `json:"version"`
}

type Options struct {
	// Window is the quiescence period before a flush.
	Window time.Duration
	// MaxPayload bounds the size of a stored envelope in bytes; 0 means no
	// limit.
	MaxPayload   int
	FlushTimeout time.Duration
	Registerer   prometheus.Registerer
}

type entry struct {
	state    tree.State
	seq      uint64
	hasState bool
	pending  bool
	schedule func(func())
}

// Cache is the authoritative in-memory copy of every registered session.
// Each session key has one logical owner; concurrent writers to the same key
// are not supported.
type Cache struct {
	durable Durable
	log     *zap.SugaredLogger
	opts    Options

	mu       sync.Mutex
	sessions map[string]*entry
	// seq numbers every Put across all sessions.
	seq    uint64
	flight singleflight.Group
	// writeMu serialises durable writes; Close takes it to wait for the
	// last scheduled flush. written holds the seq of the last stored state
	// per key and is guarded by writeMu.
	writeMu sync.Mutex
	written map[string]uint64
	metrics *metrics
}

func NewCache(durable Durable, log *zap.SugaredLogger, opts Options) *Cache {
	if opts.Window <= 0 {
		opts.Window = time.Second
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 5 * time.Second
	}
	return &Cache{
		durable:  durable,
		log:      log,
		opts:     opts,
		sessions: make(map[string]*entry),
		written:  make(map[string]uint64),
		metrics:  newMetrics(opts.Registerer),
	}
}

// Register makes key a live session. Registering twice is an error so that
// teardown stays paired with setup.
func (c *Cache) Register(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[key]; ok {
		return fmt.Errorf("%w: %s", errs.ErrSessionExists, key)
	}
	c.sessions[key] = &entry{schedule: debounce.New(c.opts.Window)}
	c.metrics.sessions.Inc()
	return nil
}

// Registered reports whether key is live.
func (c *Cache) Registered(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[key]
	return ok
}

// Unregister writes any pending state and forgets key.
func (c *Cache) Unregister(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.sessions[key]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, key)
	}
	e.schedule(func() {})
	pending := e.pending
	snapshot, seq := e.state, e.seq
	delete(c.sessions, key)
	c.mu.Unlock()
	c.metrics.sessions.Dec()

	if pending {
		return c.write(ctx, key, snapshot, seq)
	}
	return nil
}

// Put replaces the cached state synchronously and schedules a flush. A burst
// of Puts inside one window produces a single write of the last state.
func (c *Cache) Put(key string, st tree.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[key]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, key)
	}
	c.seq++
	e.state = st.Snapshot()
	e.seq = c.seq
	e.hasState = true
	e.pending = true
	e.schedule(func() { c.flushScheduled(key) })
	return nil
}

// Get returns the cached state, loading it from durable storage on a cold
// start. Corrupt, oversized or foreign payloads count as absent.
func (c *Cache) Get(ctx context.Context, key string) (tree.State, bool, error) {
	c.mu.Lock()
	e, ok := c.sessions[key]
	if !ok {
		c.mu.Unlock()
		return tree.State{}, false, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, key)
	}
	if e.hasState {
		st := e.state.Snapshot()
		c.mu.Unlock()
		return st, true, nil
	}
	c.mu.Unlock()

	v, err, _ := c.flight.Do(key, func() (any, error) {
		return c.load(ctx, key)
	})
	if err != nil {
		return tree.State{}, false, err
	}
	env, _ := v.(*Envelope)
	if env == nil {
		return tree.State{}, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok = c.sessions[key]
	if !ok {
		return tree.State{}, false, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, key)
	}
	if !e.hasState {
		e.state = env.State
		e.hasState = true
	}
	return e.state.Snapshot(), true, nil
}

func (c *Cache) load(ctx context.Context, key string) (*Envelope, error) {
	raw, err := c.durable.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		c.log.Warnf("durable read for %s failed, starting empty: %v", key, err)
		c.metrics.loads.WithLabelValues("error").Inc()
		return nil, nil
	}
	if c.opts.MaxPayload > 0 && len(raw) > c.opts.MaxPayload {
		c.log.Warnf("durable payload for %s is %d bytes, ignoring", key, len(raw))
		c.metrics.loads.WithLabelValues("oversized").Inc()
		return nil, nil
	}
	var env Envelope
	if err = json.Unmarshal(raw, &env); err != nil || env.Version != EnvelopeVersion || env.State.Root == nil {
		c.log.Warnf("durable payload for %s is unreadable, ignoring: %v", key, err)
		c.metrics.loads.WithLabelValues("corrupt").Inc()
		return nil, nil
	}
	c.metrics.loads.WithLabelValues("ok").Inc()
	return &env, nil
}

// Flush writes key now, regardless of the debounce window.
func (c *Cache) Flush(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.sessions[key]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, key)
	}
	if !e.hasState {
		c.mu.Unlock()
		return nil
	}
	e.pending = false
	snapshot, seq := e.state, e.seq
	c.mu.Unlock()
	return c.write(ctx, key, snapshot, seq)
}

// Remove drops key from durable storage and memory.
func (c *Cache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	if e, ok := c.sessions[key]; ok {
		e.schedule(func() {})
		delete(c.sessions, key)
		c.metrics.sessions.Dec()
	}
	c.mu.Unlock()
	return c.durable.Remove(ctx, key)
}

// Close unregisters every session, writing what is pending, and waits for
// in-flight scheduled flushes.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.sessions))
	for k := range c.sessions {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	var errList []error
	for _, k := range keys {
		if err := c.Unregister(ctx, k); err != nil && !errors.Is(err, errs.ErrSessionNotFound) {
			errList = append(errList, err)
		}
	}
	c.writeMu.Lock()
	c.writeMu.Unlock()
	return errors.Join(errList...)
}

func (c *Cache) flushScheduled(key string) {
	c.mu.Lock()
	e, ok := c.sessions[key]
	if !ok || !e.pending {
		c.mu.Unlock()
		return
	}
	e.pending = false
	snapshot, seq := e.state, e.seq
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.FlushTimeout)
	defer cancel()
	_ = c.write(ctx, key, snapshot, seq)
}

// write stores st unless a newer state of key has already been stored, which
// happens when a scheduled flush loses the race against Flush.
func (c *Cache) write(ctx context.Context, key string, st tree.State, seq uint64) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if seq < c.written[key] {
		c.metrics.flushes.WithLabelValues("stale").Inc()
		return nil
	}

	raw, err := json.Marshal(Envelope{State: st, Version: EnvelopeVersion})
	if err != nil {
		c.metrics.flushes.WithLabelValues("error").Inc()
		c.log.Errorf("encode session %s: %v", key, err)
		return err
	}
	if c.opts.MaxPayload > 0 && len(raw) > c.opts.MaxPayload {
		c.metrics.flushes.WithLabelValues("oversized").Inc()
		c.log.Warnf("session %s is %d bytes, kept in memory only", key, len(raw))
		return fmt.Errorf("%w: %d bytes", errs.ErrPayloadTooLarge, len(raw))
	}
	if err = c.durable.Set(ctx, key, raw); err != nil {
		c.metrics.flushes.WithLabelValues("error").Inc()
		c.log.Warnf("durable write for %s failed, memory copy stays authoritative: %v", key, err)
		return err
	}
	c.written[key] = seq
	c.metrics.flushes.WithLabelValues("ok").Inc()
	return nil
}
