package store

import (
	"encoding/json"
	"fmt"

	"github.com/chris/forum-miniapp-store/pkg/models"
)

// Field names a slice of the state.
type Field string

const (
	FieldArticle       Field = "article"
	FieldThreads       Field = "threads"
	FieldCurrentThread Field = "currentThread"
	FieldDiscusses     Field = "discusses"
	FieldUserProfile   Field = "userProfile"
	FieldNodes         Field = "nodes"
	FieldNodeDetail    Field = "nodeDetail"
	FieldLoading       Field = "loading"
)

// Mutation replaces exactly one state field.
// The set of mutations is closed: only the types in this file implement it.
type Mutation interface {
	Field() Field
	mutation()
}

type SetArticle struct{ Article models.Article }
type SetThreads struct{ Threads []models.Thread }
type SetCurrentThread struct{ Thread models.Thread }
type SetDiscusses struct{ Discusses []models.Discuss }
type SetUserProfile struct{ UserProfile models.UserProfile }
type SetNodes struct{ Nodes []models.Node }
type SetNodeDetail struct{ Node models.Node }
type SetLoading struct{ Loading bool }

func (SetArticle) Field() Field       { return FieldArticle }
func (SetThreads) Field() Field       { return FieldThreads }
func (SetCurrentThread) Field() Field { return FieldCurrentThread }
func (SetDiscusses) Field() Field     { return FieldDiscusses }
func (SetUserProfile) Field() Field   { return FieldUserProfile }
func (SetNodes) Field() Field         { return FieldNodes }
func (SetNodeDetail) Field() Field    { return FieldNodeDetail }
func (SetLoading) Field() Field       { return FieldLoading }

func (SetArticle) mutation()       {}
func (SetThreads) mutation()       {}
func (SetCurrentThread) mutation() {}
func (SetDiscusses) mutation()     {}
func (SetUserProfile) mutation()   {}
func (SetNodes) mutation()         {}
func (SetNodeDetail) mutation()    {}
func (SetLoading) mutation()       {}

// apply assigns the mutation's value to its field.
func (s *State) apply(m Mutation) {
	switch m := m.(type) {
	case SetArticle:
		s.Article = m.Article
	case SetThreads:
		s.Threads = m.Threads
	case SetCurrentThread:
		s.CurrentThread = m.Thread
	case SetDiscusses:
		s.Discusses = m.Discusses
	case SetUserProfile:
		s.UserProfile = m.UserProfile
	case SetNodes:
		s.Nodes = m.Nodes
	case SetNodeDetail:
		s.NodeDetail = m.Node
	case SetLoading:
		s.Loading = m.Loading
	default:
		panic(fmt.Sprintf("store: unhandled mutation %T", m))
	}
}

// Target pairs the field a request populates with the decoder that turns
// the response body into the mutation for that field.
type Target struct {
	Field  Field
	Decode func(data []byte) (Mutation, error)
}

func decodeInto[T any](field Field, build func(T) Mutation) Target {
	return Target{
		Field: field,
		Decode: func(data []byte) (Mutation, error) {
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", field, err)
			}
			return build(v), nil
		},
	}
}

var (
	ThreadsTarget = decodeInto(FieldThreads, func(v []models.Thread) Mutation {
		return SetThreads{Threads: nonNil(v)}
	})
	DiscussesTarget = decodeInto(FieldDiscusses, func(v []models.Discuss) Mutation {
		return SetDiscusses{Discusses: nonNil(v)}
	})
	NodesTarget = decodeInto(FieldNodes, func(v []models.Node) Mutation {
		return SetNodes{Nodes: nonNil(v)}
	})
	NodeDetailTarget = decodeInto(FieldNodeDetail, func(v models.Node) Mutation {
		return SetNodeDetail{Node: v}
	})
	UserProfileTarget = decodeInto(FieldUserProfile, func(v models.UserProfile) Mutation {
		return SetUserProfile{UserProfile: v}
	})
)

// nonNil keeps a JSON null list from turning into a nil slice.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
