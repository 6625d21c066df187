// Package store implements the key-value persistence boundary: the whole
// serialized form state lives under one fixed key. Missing or unreadable
// payloads mean "no prior state", never an error the caller must handle.
package store

import (
	"bytes"
	"log"
	"sync"
	"time"
)

// Blob is a single-key blob store.
type Blob interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}

// Tracked wraps a Blob and remembers the last payload written through it, so
// the watcher can tell an external replacement (another process or tab wrote
// the key) from this process's own saves.
type Tracked struct {
	mu    sync.Mutex
	inner Blob
	last  []byte
}

func NewTracked(inner Blob) *Tracked {
	return &Tracked{inner: inner}
}

func (t *Tracked) Load() ([]byte, error) {
	raw, err := t.inner.Load()
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.last = append([]byte(nil), raw...)
	t.mu.Unlock()
	return raw, nil
}

func (t *Tracked) Save(data []byte) error {
	t.mu.Lock()
	t.last = append([]byte(nil), data...)
	t.mu.Unlock()
	return t.inner.Save(data)
}

func (t *Tracked) Close() error { return t.inner.Close() }

func (t *Tracked) seen(raw []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bytes.Equal(raw, t.last) {
		return true
	}
	t.last = append([]byte(nil), raw...)
	return false
}

// Watch polls the underlying store and invokes onChange with the new payload
// whenever the key was replaced by another writer. Read failures are logged
// and skipped. The returned func stops the watcher.
func (t *Tracked) Watch(interval time.Duration, onChange func(data []byte)) (stop func()) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				raw, err := t.inner.Load()
				if err != nil {
					log.Printf("store watch: load: %v", err)
					continue
				}
				if t.seen(raw) {
					continue
				}
				onChange(raw)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
