package session

import (
	"context"
	"sync"
)

// MemoryBackend keeps sessions in process memory. It backs local
// development without Redis and the handler tests.
type MemoryBackend struct {
	mu      sync.Mutex
	fields  map[string]map[string]string
	flashes map[string][]Flash
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		fields:  make(map[string]map[string]string),
		flashes: make(map[string][]Flash),
	}
}

func (b *MemoryBackend) Put(_ context.Context, sid, field, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fields[sid] == nil {
		b.fields[sid] = make(map[string]string)
	}
	b.fields[sid][field] = value
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, sid, field string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fields[sid][field], nil
}

func (b *MemoryBackend) Delete(_ context.Context, sid string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.fields, sid)
	delete(b.flashes, sid)
	return nil
}

func (b *MemoryBackend) PushFlash(_ context.Context, sid string, f Flash) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flashes[sid] = append(b.flashes[sid], f)
	return nil
}

func (b *MemoryBackend) PopFlashes(_ context.Context, sid string) ([]Flash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]Flash{}, b.flashes[sid]...)
	delete(b.flashes, sid)
	return out, nil
}

var _ Backend = (*MemoryBackend)(nil)
