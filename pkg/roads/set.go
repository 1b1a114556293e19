package roads

import (
	"sync"

	"lintang/racemap/pkg/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Subscriber receives the full polyline set after every change. Implementations must treat the
// slice as read only, it is shared between subscribers.
type Subscriber interface {
	SetRoads(polylines []orb.LineString)
}

// Set holds projected road polylines per tile. Every mutation publishes a newly built flat slice
// to the subscribers, the previous slice is never modified.
type Set struct {
	mu          sync.Mutex
	tiles       map[maptile.Tile][]orb.LineString
	subscribers []Subscriber
}

func NewSet(subscribers ...Subscriber) *Set {
	return &Set{
		tiles:       make(map[maptile.Tile][]orb.LineString),
		subscribers: subscribers,
	}
}

// Put replaces the roads of one tile.
func (s *Set) Put(tile maptile.Tile, lines []orb.LineString) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles[tile] = lines
	s.publish()
}

// Evict drops the roads of one tile. Returns false when the tile was not loaded.
func (s *Set) Evict(tile maptile.Tile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tiles[tile]; !ok {
		return false
	}
	delete(s.tiles, tile)
	s.publish()
	return true
}

// Replace discards every tile and loads the given ones.
func (s *Set) Replace(tiles map[maptile.Tile][]orb.LineString) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = make(map[maptile.Tile][]orb.LineString, len(tiles))
	for t, lines := range tiles {
		s.tiles[t] = lines
	}
	s.publish()
}

// Polylines returns every road ordered by tile (z, x, y), then by position inside the tile.
func (s *Set) Polylines() []orb.LineString {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flatten()
}

func (s *Set) Tiles() []maptile.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTiles()
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, lines := range s.tiles {
		n += len(lines)
	}
	return n
}

func (s *Set) sortedTiles() []maptile.Tile {
	tiles := make([]maptile.Tile, 0, len(s.tiles))
	for t := range s.tiles {
		tiles = append(tiles, t)
	}
	geo.SortTiles(tiles)
	return tiles
}

func (s *Set) flatten() []orb.LineString {
	var out []orb.LineString
	for _, t := range s.sortedTiles() {
		out = append(out, s.tiles[t]...)
	}
	return out
}

// publish runs with mu held so subscribers see updates in mutation order.
func (s *Set) publish() {
	if len(s.subscribers) == 0 {
		return
	}
	lines := s.flatten()
	for _, sub := range s.subscribers {
		sub.SetRoads(lines)
	}
}
