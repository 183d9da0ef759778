package store

import (
	"slices"

	"github.com/chris/forum-miniapp-store/pkg/models"
)

// State is the full UI state held by the store.
// Each field reflects the most recent successful fetch for its domain.
type State struct {
	Article       models.Article     `json:"article"`
	Threads       []models.Thread    `json:"threads"`
	CurrentThread models.Thread      `json:"currentThread"`
	Discusses     []models.Discuss   `json:"discusses"`
	UserProfile   models.UserProfile `json:"userProfile"`
	Nodes         []models.Node      `json:"nodes"`
	NodeDetail    models.Node        `json:"nodeDetail"`
	Loading       bool               `json:"loading"`
}

func initialState() State {
	return State{
		Threads:   []models.Thread{},
		Discusses: []models.Discuss{},
		Nodes:     []models.Node{},
	}
}

// clone copies the slices and the members they point at so callers cannot
// alias stored state.
func (s State) clone() State {
	c := s
	c.Threads = slices.Clone(s.Threads)
	for i := range c.Threads {
		c.Threads[i].Member = cloneMember(c.Threads[i].Member)
	}
	c.CurrentThread.Member = cloneMember(s.CurrentThread.Member)
	c.Discusses = slices.Clone(s.Discusses)
	for i := range c.Discusses {
		c.Discusses[i].Member = cloneMember(c.Discusses[i].Member)
	}
	c.Nodes = slices.Clone(s.Nodes)
	return c
}

func cloneMember(m *models.Member) *models.Member {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}
