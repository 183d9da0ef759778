package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Article represents the content currently shown in the reader view.
type Article struct {
	Title string `json:"title"`
	Node  string `json:"node"`
}

// Member is the author summary embedded in threads and replies.
type Member struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	AvatarNormal string `json:"avatar_normal,omitempty"`
}

// NodeRef is the node a thread belongs to.
// List payloads sometimes carry only the node key, so it decodes from either
// a full object, a bare name string or a bare integer id.
type NodeRef struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

// UnmarshalJSON accepts an object, a string or an integer. A string sets Name
// and an integer sets ID only.
func (n *NodeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch c := data[0]; {
	case c == '{':
		type plain NodeRef
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to decode node: %w", err)
		}
		*n = NodeRef(p)
	case c == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("failed to decode node name: %w", err)
		}
		*n = NodeRef{Name: name}
	case c == '-' || (c >= '0' && c <= '9'):
		id, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid node id %s: must be an integer", data)
		}
		*n = NodeRef{ID: id}
	default:
		return fmt.Errorf("invalid node %s: must be an object, a string or an integer", data)
	}
	return nil
}

// Thread represents a single topic in a thread list.
type Thread struct {
	ID           int64   `json:"id,omitempty"`
	Title        string  `json:"title"`
	URL          string  `json:"url,omitempty"`
	Content      string  `json:"content,omitempty"`
	Replies      int     `json:"replies,omitempty"`
	Member       *Member `json:"member,omitempty"`
	Node         NodeRef `json:"node"`
	Created      int64   `json:"created,omitempty"`
	LastModified int64   `json:"last_modified,omitempty"`
}

// Discuss is one reply in a thread's discussion.
type Discuss struct {
	ID           int64   `json:"id"`
	Content      string  `json:"content"`
	Member       *Member `json:"member,omitempty"`
	Created      int64   `json:"created,omitempty"`
	LastModified int64   `json:"last_modified,omitempty"`
}

// Node represents a forum category.
type Node struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	Topics int    `json:"topics"`
	Stars  int    `json:"stars,omitempty"`
	Header string `json:"header,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// UserProfile is a member's public profile.
type UserProfile struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Website      string `json:"website,omitempty"`
	Twitter      string `json:"twitter,omitempty"`
	Github       string `json:"github,omitempty"`
	Location     string `json:"location,omitempty"`
	Tagline      string `json:"tagline,omitempty"`
	Bio          string `json:"bio,omitempty"`
	AvatarNormal string `json:"avatar_normal,omitempty"`
	Created      int64  `json:"created,omitempty"`
}
