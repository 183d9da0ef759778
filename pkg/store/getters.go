package store

import (
	"slices"
	"sort"

	"github.com/chris/forum-miniapp-store/pkg/models"
)

// GetArticle returns the current article.
func (s *Store) GetArticle() models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Article
}

// SortedNodes sorts the stored node list by topic count, descending, and
// returns a copy of it. The stored order changes as a side effect; when it
// does, watchers receive a SetNodes event.
func (s *Store) SortedNodes() []models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.state.Nodes
	byTopics := func(i, j int) bool { return nodes[i].Topics > nodes[j].Topics }
	if !sort.SliceIsSorted(nodes, byTopics) {
		sort.SliceStable(nodes, byTopics)
		s.commitLocked(SetNodes{Nodes: nodes})
	}
	return slices.Clone(nodes)
}

// Loading reports whether any request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}
