package endpoints

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public forum API root.
const DefaultBaseURL = "https://www.v2ex.com/api"

// Endpoints builds the URLs the store fetches from.
// The returned strings are opaque to callers.
type Endpoints interface {
	Latest() string
	HotThreads() string
	// NodeThreadList lists threads for a node. The key is usually a node id,
	// but user thread lists are requested through it as well.
	NodeThreadList(key string) string
	NodeList() string
	NodeDetail(id int) string
	UserProfile(id int) string
	Discuss(threadID int) string
}

// Builder builds endpoint URLs relative to a base URL.
type Builder struct {
	BaseURL string
}

// New creates a Builder. An empty base URL falls back to DefaultBaseURL.
func New(baseURL string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Make sure we conform to the interface
var _ Endpoints = (*Builder)(nil)

func (b *Builder) Latest() string {
	return b.build("/topics/latest.json", nil)
}

func (b *Builder) HotThreads() string {
	return b.build("/topics/hot.json", nil)
}

func (b *Builder) NodeThreadList(key string) string {
	return b.build("/topics/show.json", url.Values{"node_id": {key}})
}

func (b *Builder) NodeList() string {
	return b.build("/nodes/all.json", nil)
}

func (b *Builder) NodeDetail(id int) string {
	return b.build("/nodes/show.json", url.Values{"id": {strconv.Itoa(id)}})
}

func (b *Builder) UserProfile(id int) string {
	return b.build("/members/show.json", url.Values{"id": {strconv.Itoa(id)}})
}

func (b *Builder) Discuss(threadID int) string {
	return b.build("/replies/show.json", url.Values{"topic_id": {strconv.Itoa(threadID)}})
}

func (b *Builder) build(path string, query url.Values) string {
	if len(query) == 0 {
		return b.BaseURL + path
	}
	return b.BaseURL + path + "?" + query.Encode()
}
