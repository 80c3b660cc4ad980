// MIT License
//
// Copyright (c) 2025-2026 The swrcache authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package swrcache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/gobwas/glob"

	"github.com/offlinekit/swrcache/internal/size"
)

// Store defines durable, capacity-bounded, TTL-aware storage with optional
// compression and schema versioning.
//
// A Store never propagates storage faults: quota errors, serialization
// failures and an unavailable backend all degrade to a false/zero return
// plus a diagnostic log line. Corrupt records are deleted on read and
// reported as misses.
//
// The methods include:
//
//   - Set: Writes a payload under a key with optional TTL, compression and
//     schema version.
//   - Get: Reads a payload into a destination value, honoring TTL and
//     version checks.
//   - Has: Reports whether a readable, unexpired, version-matching entry
//     exists.
//   - LastFetched: Returns the write time of an entry without decoding its
//     payload.
//   - Delete: Removes an entry.
//   - Clear: Removes every entry under the store's namespace.
//   - ClearPattern: Removes entries whose key matches a glob pattern.
//   - Stats: Aggregates entry counts and storage usage.
type Store interface {
	// Set writes a payload under key.
	//
	// Parameters:
	//   - ctx: The context for tracing.
	//   - key: The logical cache key, unique within the namespace.
	//   - value: Any JSON-serializable payload.
	//   - opts: Optional TTL, compression and version settings.
	//
	// Returns true when the record was durably written.
	Set(ctx context.Context, key string, value any, opts ...SetOption) bool

	// Get reads the payload stored under key into dest, which must be a
	// non-nil pointer (a nil dest skips payload decoding).
	//
	// Expired, version-mismatching and corrupt entries are deleted and
	// reported as misses. Returns true on a usable hit.
	Get(ctx context.Context, key string, dest any, opts ...ReadOption) bool

	// Has reports whether Get would succeed for key.
	Has(ctx context.Context, key string, opts ...ReadOption) bool

	// LastFetched returns the write time of the entry stored under key. It
	// performs no TTL or version checks and has no delete side effects.
	LastFetched(ctx context.Context, key string) (time.Time, bool)

	// Delete removes the entry stored under key. Idempotent.
	Delete(ctx context.Context, key string) bool

	// Clear removes every entry under this store's namespace, nothing else.
	Clear(ctx context.Context) bool

	// ClearPattern removes entries whose logical key matches the glob-style
	// pattern, where '*' matches any run of characters.
	ClearPattern(ctx context.Context, pattern string) bool

	// Stats scans the namespace and aggregates entry counts and usage.
	Stats(ctx context.Context) Stats

	// Namespace returns the key prefix scoping this store in the backend.
	Namespace() string

	// Start launches the periodic expiry sweep.
	Start(ctx context.Context) error

	// Stop terminates the periodic expiry sweep.
	Stop(ctx context.Context) error
}

type store struct {
	config       *Config
	started      *atomic.Bool
	stopSweepSig chan struct{}
	lock         *sync.Mutex
	inst         *instrumentation
}

var _ Store = (*store)(nil)

// NewStore creates a cache store from the given configuration.
//
// The store is usable immediately; Start only adds the periodic expiry
// sweep. A configuration with a nil backend yields a disabled store whose
// operations are benign no-ops.
func NewStore(config *Config) (Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &store{
		config:       config,
		started:      new(atomic.Bool),
		stopSweepSig: make(chan struct{}, 1),
		lock:         new(sync.Mutex),
		inst:         newInstrumentation(config.TraceConfig(), config.MetricConfig()),
	}, nil
}

// Start launches the periodic expiry sweep.
func (s *store) Start(ctx context.Context) error {
	if s.started.Swap(true) {
		return nil
	}

	if s.disabled() {
		s.config.Logger().Warnf("swrcache store namespace=%s has no backend: running disabled", s.config.Namespace())
		return nil
	}

	s.config.Logger().Infof("swrcache store namespace=%s starting: capacity=%s sweepInterval=%v",
		s.config.Namespace(), size.String(s.config.Capacity()), s.config.SweepInterval())

	go s.sweepLoop()
	return nil
}

// Stop terminates the periodic expiry sweep.
func (s *store) Stop(_ context.Context) error {
	if !s.started.Swap(false) {
		return nil
	}
	if !s.disabled() {
		s.stopSweepSig <- struct{}{}
	}
	s.config.Logger().Infof("swrcache store namespace=%s stopped", s.config.Namespace())
	return nil
}

// Namespace returns the key prefix scoping this store in the backend.
func (s *store) Namespace() string {
	return s.config.Namespace()
}

// Set writes a payload under key.
func (s *store) Set(ctx context.Context, key string, value any, opts ...SetOption) bool {
	if s.disabled() {
		return false
	}

	_, end := s.inst.start(ctx, "set", s.config.Namespace())
	options := newSetOptions(opts)

	payload, err := json.Marshal(value)
	if err != nil {
		s.config.Logger().Errorf("swrcache set key=%s: serialization failed: %v", key, err)
		end(err)
		return false
	}

	codecName := ""
	if options.compress {
		encoded, encodeErr := s.config.Codec().Encode(payload)
		if encodeErr != nil {
			s.config.Logger().Errorf("swrcache set key=%s: %s encode failed: %v", key, s.config.Codec().Name(), encodeErr)
			end(encodeErr)
			return false
		}
		payload = encoded
		if s.config.Codec().Name() != "passthrough" {
			codecName = s.config.Codec().Name()
		}
	}

	record, err := newEnvelope(payload, options.ttl, codecName, options.version, time.Now()).marshal()
	if err != nil {
		s.config.Logger().Errorf("swrcache set key=%s: envelope encode failed: %v", key, err)
		end(err)
		return false
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.reclaim(key, int64(len(record)))

	if err := s.config.Backend().Write(s.recordKey(key), record); err != nil {
		s.config.Logger().Errorf("swrcache set key=%s: backend write failed: %v", key, err)
		end(err)
		return false
	}

	end(nil)
	return true
}

// Get reads the payload stored under key into dest.
func (s *store) Get(ctx context.Context, key string, dest any, opts ...ReadOption) bool {
	if s.disabled() {
		return false
	}

	_, end := s.inst.start(ctx, "get", s.config.Namespace())
	defer end(nil)
	options := newReadOptions(opts)

	record, found, err := s.config.Backend().Read(s.recordKey(key))
	if err != nil {
		s.config.Logger().Errorf("swrcache get key=%s: backend read failed: %v", key, err)
		s.inst.recordMiss(ctx, s.config.Namespace())
		return false
	}
	if !found {
		s.inst.recordMiss(ctx, s.config.Namespace())
		return false
	}

	env, err := decodeEnvelope(record)
	if err != nil {
		s.dropCorrupt(key, err)
		s.inst.recordMiss(ctx, s.config.Namespace())
		return false
	}

	if env.isExpired(time.Now()) {
		s.removeRecord(key)
		s.inst.recordMiss(ctx, s.config.Namespace())
		return false
	}

	if !env.matchesVersion(options.version) {
		s.removeRecord(key)
		s.inst.recordMiss(ctx, s.config.Namespace())
		return false
	}

	data := env.Data
	if env.Codec != "" {
		if env.Codec != s.config.Codec().Name() {
			s.dropCorrupt(key, nil)
			s.inst.recordMiss(ctx, s.config.Namespace())
			return false
		}
		data, err = s.config.Codec().Decode(data)
		if err != nil {
			s.dropCorrupt(key, err)
			s.inst.recordMiss(ctx, s.config.Namespace())
			return false
		}
	}

	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			s.dropCorrupt(key, err)
			s.inst.recordMiss(ctx, s.config.Namespace())
			return false
		}
	}

	s.inst.recordHit(ctx, s.config.Namespace())
	return true
}

// Has reports whether Get would succeed for key.
func (s *store) Has(ctx context.Context, key string, opts ...ReadOption) bool {
	var raw json.RawMessage
	return s.Get(ctx, key, &raw, opts...)
}

// LastFetched returns the write time of the entry stored under key.
func (s *store) LastFetched(_ context.Context, key string) (time.Time, bool) {
	if s.disabled() {
		return time.Time{}, false
	}

	record, found, err := s.config.Backend().Read(s.recordKey(key))
	if err != nil || !found {
		return time.Time{}, false
	}

	env, err := decodeEnvelope(record)
	if err != nil {
		return time.Time{}, false
	}
	return env.storedAt(), true
}

// Delete removes the entry stored under key.
func (s *store) Delete(ctx context.Context, key string) bool {
	if s.disabled() {
		return false
	}

	_, end := s.inst.start(ctx, "delete", s.config.Namespace())
	if err := s.config.Backend().Remove(s.recordKey(key)); err != nil {
		s.config.Logger().Errorf("swrcache delete key=%s: backend remove failed: %v", key, err)
		end(err)
		return false
	}
	end(nil)
	return true
}

// Clear removes every entry under this store's namespace.
func (s *store) Clear(ctx context.Context) bool {
	if s.disabled() {
		return false
	}

	_, end := s.inst.start(ctx, "clear", s.config.Namespace())

	s.lock.Lock()
	defer s.lock.Unlock()

	keys := goset.NewSet[string]()
	if err := s.config.Backend().Scan(s.prefix(), func(key string, _ []byte) bool {
		keys.Add(key)
		return true
	}); err != nil {
		s.config.Logger().Errorf("swrcache clear: backend scan failed: %v", err)
		end(err)
		return false
	}

	ok := true
	keys.Each(func(key string) bool {
		if err := s.config.Backend().Remove(key); err != nil {
			s.config.Logger().Errorf("swrcache clear key=%s: backend remove failed: %v", key, err)
			ok = false
		}
		return false
	})

	end(nil)
	return ok
}

// ClearPattern removes entries whose logical key matches the glob pattern.
func (s *store) ClearPattern(ctx context.Context, pattern string) bool {
	if s.disabled() {
		return false
	}

	_, end := s.inst.start(ctx, "clear_pattern", s.config.Namespace())

	matcher, err := glob.Compile(pattern)
	if err != nil {
		s.config.Logger().Errorf("swrcache clearPattern pattern=%s: invalid pattern: %v", pattern, err)
		end(err)
		return false
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	matches := goset.NewSet[string]()
	if err := s.config.Backend().Scan(s.prefix(), func(key string, _ []byte) bool {
		if matcher.Match(strings.TrimPrefix(key, s.prefix())) {
			matches.Add(key)
		}
		return true
	}); err != nil {
		s.config.Logger().Errorf("swrcache clearPattern pattern=%s: backend scan failed: %v", pattern, err)
		end(err)
		return false
	}

	ok := true
	matches.Each(func(key string) bool {
		if err := s.config.Backend().Remove(key); err != nil {
			s.config.Logger().Errorf("swrcache clearPattern key=%s: backend remove failed: %v", key, err)
			ok = false
		}
		return false
	})

	end(nil)
	return ok
}

// Stats scans the namespace and aggregates entry counts and usage.
func (s *store) Stats(ctx context.Context) Stats {
	if s.disabled() {
		return Stats{}
	}

	_, end := s.inst.start(ctx, "stats", s.config.Namespace())
	defer end(nil)

	now := time.Now()
	stats := Stats{}
	if err := s.config.Backend().Scan(s.prefix(), func(_ string, record []byte) bool {
		stats.TotalItems++
		stats.TotalBytes += int64(len(record))

		env, err := decodeEnvelope(record)
		if err != nil {
			return true
		}
		if env.isExpired(now) {
			stats.ExpiredItems++
			return true
		}
		stats.ValidItems++
		return true
	}); err != nil {
		s.config.Logger().Errorf("swrcache stats: backend scan failed: %v", err)
		return Stats{}
	}

	stats.UsagePercentage = float64(stats.TotalBytes) / float64(s.config.Capacity()) * 100
	return stats
}

func (s *store) disabled() bool {
	return s.config.Backend() == nil
}

func (s *store) prefix() string {
	return s.config.Namespace() + ":"
}

func (s *store) recordKey(key string) string {
	return s.prefix() + key
}

func (s *store) removeRecord(key string) {
	if err := s.config.Backend().Remove(s.recordKey(key)); err != nil {
		s.config.Logger().Errorf("swrcache remove key=%s: backend remove failed: %v", key, err)
	}
}

func (s *store) dropCorrupt(key string, err error) {
	s.config.Logger().Warnf("swrcache key=%s: corrupt record dropped: %v", key, err)
	s.removeRecord(key)
}

// candidate describes one stored record during a reclamation scan.
type candidate struct {
	key      string
	size     int64
	storedAt int64
	expired  bool
	corrupt  bool
}

func (s *store) scanNamespace(now time.Time) ([]candidate, int64) {
	var candidates []candidate
	var total int64

	if err := s.config.Backend().Scan(s.prefix(), func(key string, record []byte) bool {
		cand := candidate{
			key:  key,
			size: int64(len(record)),
		}
		env, err := decodeEnvelope(record)
		if err != nil {
			cand.corrupt = true
		} else {
			cand.storedAt = env.StoredAt
			cand.expired = env.isExpired(now)
		}
		total += cand.size
		candidates = append(candidates, cand)
		return true
	}); err != nil {
		s.config.Logger().Errorf("swrcache reclaim: backend scan failed: %v", err)
		return nil, 0
	}

	return candidates, total
}

// reclaim makes room for a pending write of pendingSize bytes under
// pendingKey. It sweeps expired and corrupt records first, then evicts
// survivors in ascending write-time order. Write time, not last-read time,
// is the eviction signal. When nothing remains and the record still does
// not fit, the write goes ahead anyway and fails at the backend boundary.
//
// Caller holds the store lock. The scan-sweep-evict sequence is not atomic
// with respect to other processes sharing the backend.
func (s *store) reclaim(pendingKey string, pendingSize int64) {
	now := time.Now()
	candidates, total := s.scanNamespace(now)

	projected := total + pendingSize
	pendingRecordKey := s.recordKey(pendingKey)
	for _, cand := range candidates {
		if cand.key == pendingRecordKey {
			// overwrite releases the old record
			projected -= cand.size
		}
	}

	budget := int64(float64(s.config.Capacity()) * s.config.CleanupThreshold())
	if projected <= budget {
		return
	}

	doomed := goset.NewSet[string]()
	for _, cand := range candidates {
		if cand.key == pendingRecordKey {
			continue
		}
		if cand.expired || cand.corrupt {
			doomed.Add(cand.key)
			projected -= cand.size
		}
	}

	if projected > budget {
		survivors := make([]candidate, 0, len(candidates))
		for _, cand := range candidates {
			if cand.key == pendingRecordKey || doomed.Contains(cand.key) {
				continue
			}
			survivors = append(survivors, cand)
		}
		sort.Slice(survivors, func(i, j int) bool {
			return survivors[i].storedAt < survivors[j].storedAt
		})

		for _, cand := range survivors {
			if projected <= budget {
				break
			}
			doomed.Add(cand.key)
			projected -= cand.size
		}
	}

	if doomed.Cardinality() == 0 {
		return
	}

	doomed.Each(func(key string) bool {
		if err := s.config.Backend().Remove(key); err != nil {
			s.config.Logger().Errorf("swrcache reclaim key=%s: backend remove failed: %v", key, err)
		}
		return false
	})

	s.inst.recordEvictions(context.Background(), s.config.Namespace(), int64(doomed.Cardinality()))
	s.config.Logger().Debugf("swrcache reclaim namespace=%s: removed %d records for a %s write",
		s.config.Namespace(), doomed.Cardinality(), size.String(pendingSize))
}

// sweep deletes every expired or corrupt record under the namespace.
func (s *store) sweep() {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := time.Now()
	candidates, _ := s.scanNamespace(now)

	doomed := goset.NewSet[string]()
	for _, cand := range candidates {
		if cand.expired || cand.corrupt {
			doomed.Add(cand.key)
		}
	}

	if doomed.Cardinality() == 0 {
		return
	}

	doomed.Each(func(key string) bool {
		if err := s.config.Backend().Remove(key); err != nil {
			s.config.Logger().Errorf("swrcache sweep key=%s: backend remove failed: %v", key, err)
		}
		return false
	})

	s.config.Logger().Debugf("swrcache sweep namespace=%s: removed %d expired records",
		s.config.Namespace(), doomed.Cardinality())
}

func (s *store) sweepLoop() {
	ticker := time.NewTicker(s.config.SweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopSweepSig:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}
