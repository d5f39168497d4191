package numbering

import (
	"context"
	"errors"
	"sync"
)

var ErrLockTimeout = errors.New("timed out waiting for numbering lock")

// Store persists numbering settings. Update must run fn as one atomic
// read-modify-write of a single category; categories are independent.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
	Update(ctx context.Context, c Category, fn func(*CategorySettings) error) error
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	locks    map[Category]*sync.Mutex
	settings *Settings
}

func NewMemoryStore(initial *Settings) *MemoryStore {
	if initial == nil {
		initial = DefaultSettings()
	}
	s := &MemoryStore{
		locks:    make(map[Category]*sync.Mutex, len(Categories)),
		settings: initial.Clone(),
	}
	for _, c := range Categories {
		s.locks[c] = &sync.Mutex{}
	}
	return s
}

func (s *MemoryStore) Load(ctx context.Context) (*Settings, error) {
	out := &Settings{}
	for _, c := range Categories {
		s.locks[c].Lock()
		src, _ := s.settings.For(c)
		dst, _ := out.For(c)
		*dst = src.Clone()
		s.locks[c].Unlock()
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, in *Settings) error {
	for _, c := range Categories {
		s.locks[c].Lock()
		defer s.locks[c].Unlock()
	}
	s.settings = in.Clone()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, c Category, fn func(*CategorySettings) error) error {
	mu, ok := s.locks[c]
	if !ok {
		return ErrUnknownCategory
	}
	mu.Lock()
	defer mu.Unlock()

	cs, err := s.settings.For(c)
	if err != nil {
		return err
	}
	work := cs.Clone()
	if err := fn(&work); err != nil {
		return err
	}
	*cs = work
	return nil
}
