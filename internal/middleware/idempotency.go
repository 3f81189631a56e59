package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore stores idempotency key results
type IdempotencyStore struct {
	mu       sync.RWMutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

type idempotencyEntry struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if entry.expiresAt.Before(now) && !entry.inFlight {
			delete(s.entries, key)
		}
	}
}

// generateKey creates a unique key from client, idempotency key, and request fingerprint
func generateKey(client, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(client))
	h.Write([]byte(idempotencyKey))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// replayable reports whether a response may be served again for the same key.
// Retryable failures are dropped so a client retry reaches the handler.
func replayable(status int) bool {
	return status < http.StatusInternalServerError && status != http.StatusTooManyRequests
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func writeReplay(w http.ResponseWriter, entry *idempotencyEntry) {
	for k, v := range entry.headers {
		// The replay keeps its own request ID
		if k == "X-Request-Id" {
			continue
		}
		w.Header()[k] = append([]string(nil), v...)
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency returns middleware that replays responses for repeated POSTs
// carrying the same Idempotency-Key, client and body
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Read and restore request body
			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := generateKey(ClientIP(r), idempotencyKey, r.Method, r.URL.Path, body)

			store.mu.Lock()
			entry, exists := store.entries[key]

			if exists {
				if entry.inFlight {
					// Request is still processing, wait for it
					store.mu.Unlock()
					<-entry.done

					store.mu.RLock()
					entry = store.entries[key]
					store.mu.RUnlock()

					if entry != nil && !entry.inFlight {
						writeReplay(w, entry)
						return
					}
					store.mu.Lock()
				} else if entry.expiresAt.After(time.Now()) {
					store.mu.Unlock()
					writeReplay(w, entry)
					return
				}
			}

			// Mark request as in-flight
			entry = &idempotencyEntry{
				inFlight: true,
				done:     make(chan struct{}),
			}
			store.entries[key] = entry
			store.mu.Unlock()

			irw := &idempotencyResponseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			next.ServeHTTP(irw, r)

			store.mu.Lock()
			entry.status = irw.status
			entry.headers = irw.Header().Clone()
			entry.body = irw.body.Bytes()
			entry.expiresAt = time.Now().Add(store.ttl)
			entry.inFlight = false
			if !replayable(irw.status) {
				delete(store.entries, key)
			}
			close(entry.done)
			store.mu.Unlock()
		})
	}
}
