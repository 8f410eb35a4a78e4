// Package catalog holds the gallery's artworks and the visitor cart.
package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Kind separates physical originals from digital editions
type Kind string

const (
	KindOriginal Kind = "original"
	KindDigital  Kind = "digital"
)

func (k Kind) Valid() bool {
	return k == KindOriginal || k == KindDigital
}

// Artwork is one catalog entry
type Artwork struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Kind     Kind    `json:"kind"`
	Medium   string  `json:"medium,omitempty"`
	Year     int     `json:"year,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Stock    int     `json:"stock"`
	Featured bool    `json:"featured"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// Unlimited reports whether any quantity can be sold
func (a Artwork) Unlimited() bool {
	return a.Kind == KindDigital
}

// Source lists artworks, all kinds when kind is empty
type Source interface {
	Artworks(ctx context.Context, kind Kind) ([]Artwork, error)
}

type fallbackSource struct {
	primary  Source
	fallback Source
	log      *zap.Logger
}

// WithFallback serves the fallback whenever the primary fails.
// A cancelled context is returned as is.
func WithFallback(primary, fallback Source, log *zap.Logger) Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &fallbackSource{primary: primary, fallback: fallback, log: log}
}

func (s *fallbackSource) Artworks(ctx context.Context, kind Kind) ([]Artwork, error) {
	items, err := s.primary.Artworks(ctx, kind)
	if err == nil {
		return items, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	s.log.Warn("artwork fetch failed, serving sample data", zap.Error(err))
	return s.fallback.Artworks(ctx, kind)
}

// Store keeps the last loaded artwork list in memory
type Store struct {
	mtx    sync.RWMutex
	source Source
	items  []Artwork
}

func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Load replaces the list; on error the previous list stays
func (s *Store) Load(ctx context.Context) error {
	items, err := s.source.Artworks(ctx, "")
	if err != nil {
		return err
	}
	s.mtx.Lock()
	s.items = items
	s.mtx.Unlock()
	return nil
}

func (s *Store) All() []Artwork {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return append([]Artwork(nil), s.items...)
}

func (s *Store) ByID(id string) (Artwork, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return Artwork{}, false
}

func (s *Store) Featured() []Artwork {
	return s.filter(func(a Artwork) bool { return a.Featured })
}

func (s *Store) ByKind(kind Kind) []Artwork {
	return s.filter(func(a Artwork) bool { return a.Kind == kind })
}

func (s *Store) filter(keep func(Artwork) bool) []Artwork {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var out []Artwork
	for _, a := range s.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
