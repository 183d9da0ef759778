package store

import (
	"context"
	"strconv"

	"github.com/chris/forum-miniapp-store/pkg/endpoints"
	"github.com/chris/forum-miniapp-store/pkg/models"
)

// ThreadSource selects which thread list LoadThreads fetches.
type ThreadSource string

const (
	SourceLatest ThreadSource = ""
	SourceHot    ThreadSource = "hot"
	SourceNode   ThreadSource = "node"
	SourceUser   ThreadSource = "user"
)

// ThreadQuery is the payload of LoadThreads.
// NodeID is read only for SourceNode and Username only for SourceUser.
type ThreadQuery struct {
	Name     ThreadSource `json:"name,omitempty"`
	NodeID   int          `json:"nodeId,omitempty"`
	Username string       `json:"username,omitempty"`
}

// ThreadsURL resolves the thread list URL for q.
// Unknown sources fall back to the latest threads.
//
// User threads go through the node thread list endpoint keyed by username.
// Whether the API honours a username there is unverified.
func ThreadsURL(e endpoints.Endpoints, q ThreadQuery) string {
	switch q.Name {
	case SourceHot:
		return e.HotThreads()
	case SourceNode:
		return e.NodeThreadList(strconv.Itoa(q.NodeID))
	case SourceUser:
		return e.NodeThreadList(q.Username)
	default:
		return e.Latest()
	}
}

// SetArticle replaces the current article.
func (s *Store) SetArticle(article models.Article) {
	s.Commit(SetArticle{Article: article})
}

// SelectThread replaces the currently selected thread.
func (s *Store) SelectThread(thread models.Thread) {
	s.Commit(SetCurrentThread{Thread: thread})
}

// LoadThreads clears the thread list and fetches the list selected by q.
func (s *Store) LoadThreads(ctx context.Context, q ThreadQuery) *Task {
	s.Commit(SetThreads{Threads: []models.Thread{}})
	return s.CallAPI(ctx, ThreadsURL(s.endpoints, q), ThreadsTarget)
}

func (s *Store) LoadRecentThreads(ctx context.Context) *Task {
	return s.LoadThreads(ctx, ThreadQuery{})
}

func (s *Store) LoadHotThreads(ctx context.Context) *Task {
	return s.LoadThreads(ctx, ThreadQuery{Name: SourceHot})
}

func (s *Store) LoadNodeThreads(ctx context.Context, nodeID int) *Task {
	return s.LoadThreads(ctx, ThreadQuery{Name: SourceNode, NodeID: nodeID})
}

func (s *Store) LoadUserThreads(ctx context.Context, username string) *Task {
	return s.LoadThreads(ctx, ThreadQuery{Name: SourceUser, Username: username})
}

func (s *Store) LoadNodeList(ctx context.Context) *Task {
	return s.CallAPI(ctx, s.endpoints.NodeList(), NodesTarget)
}

func (s *Store) LoadNodeDetail(ctx context.Context, nodeID int) *Task {
	return s.CallAPI(ctx, s.endpoints.NodeDetail(nodeID), NodeDetailTarget)
}

func (s *Store) LoadUserProfile(ctx context.Context, userID int) *Task {
	return s.CallAPI(ctx, s.endpoints.UserProfile(userID), UserProfileTarget)
}

func (s *Store) LoadDiscuss(ctx context.Context, threadID int) *Task {
	return s.CallAPI(ctx, s.endpoints.Discuss(threadID), DiscussesTarget)
}
