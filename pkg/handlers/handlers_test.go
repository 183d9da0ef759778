package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/forum-miniapp-store/pkg/endpoints"
	"github.com/chris/forum-miniapp-store/pkg/models"
	"github.com/chris/forum-miniapp-store/pkg/notify"
	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/chris/forum-miniapp-store/pkg/transport"
	"github.com/chris/forum-miniapp-store/pkg/transport/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testEndpoints = endpoints.New("http://forum.test/api")

func newTestRouter(t *testing.T) (http.Handler, *store.Store, *mocks.Requester) {
	t.Helper()
	requester := mocks.NewRequester(t)
	quiet := notify.NotifierFunc(func(ctx context.Context, toast notify.Toast) error { return nil })
	s := store.New(testEndpoints, requester, store.WithNotifier(quiet))
	t.Cleanup(func() { s.Close() })

	router := chi.NewRouter()
	NewApiHandler(s).Register(router)
	return router, s, requester
}

func ok(body string) *transport.Response {
	return &transport.Response{StatusCode: http.StatusOK, Data: []byte(body)}
}

func TestGetState(t *testing.T) {
	router, s, _ := newTestRouter(t)
	s.SetArticle(models.Article{Title: "hello", Node: "go"})

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var state store.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "hello", state.Article.Title)
	assert.Contains(t, rr.Body.String(), `"threads":[]`)
}

func TestGetSortedNodes(t *testing.T) {
	router, s, _ := newTestRouter(t)
	s.Commit(store.SetNodes{Nodes: []models.Node{{Name: "a", Topics: 1}, {Name: "b", Topics: 5}, {Name: "c", Topics: 3}}})

	req := httptest.NewRequest(http.MethodGet, "/nodes/sorted", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var nodes []models.Node
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &nodes))
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{nodes[0].Name, nodes[1].Name, nodes[2].Name})
}

func TestPutArticle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, s, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPut, "/article", strings.NewReader(`{"title":"T","node":"go"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, models.Article{Title: "T", Node: "go"}, s.GetArticle())
	})

	t.Run("Bad Request - Invalid JSON", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPut, "/article", strings.NewReader("not-json"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLoadThreads(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		router, _, requester := newTestRouter(t)
		requester.On("Do", mock.Anything, transport.Request{URL: testEndpoints.HotThreads()}).
			Return(ok(`[]`), nil).Maybe()

		req := httptest.NewRequest(http.MethodPost, "/threads?name=hot", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.TaskID)
		assert.Equal(t, store.FieldThreads, resp.Field)
		assert.Equal(t, testEndpoints.HotThreads(), resp.URL)
	})

	t.Run("Wait For Node Threads", func(t *testing.T) {
		router, _, requester := newTestRouter(t)
		requester.On("Do", mock.Anything, transport.Request{URL: testEndpoints.NodeThreadList("42")}).
			Return(ok(`[{"title":"A","node":"42"}]`), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/threads?name=node&node_id=42&wait=true", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var state store.State
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
		require.Len(t, state.Threads, 1)
		assert.Equal(t, "A", state.Threads[0].Title)
		assert.False(t, state.Loading)
	})

	badQueries := []struct {
		name  string
		query string
	}{
		{"Invalid Node ID", "name=node&node_id=abc"},
		{"Missing Node ID", "name=node"},
		{"Missing Username", "name=user"},
	}
	for _, tt := range badQueries {
		t.Run(tt.name, func(t *testing.T) {
			router, s, _ := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/threads?"+tt.query, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.False(t, s.Loading())
		})
	}
}

func TestLoadByID(t *testing.T) {
	tests := []struct {
		name string
		path string
		url  string
		body string
	}{
		{"Node Detail", "/nodes/7", testEndpoints.NodeDetail(7), `{"id":7,"name":"go"}`},
		{"User Profile", "/members/9", testEndpoints.UserProfile(9), `{"id":9,"username":"alice"}`},
		{"Discuss", "/threads/100/discuss", testEndpoints.Discuss(100), `[{"id":1,"content":"hi"}]`},
		{"Node List", "/nodes", testEndpoints.NodeList(), `[{"id":1,"name":"go","topics":2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, requester := newTestRouter(t)
			requester.On("Do", mock.Anything, transport.Request{URL: tt.url}).Return(ok(tt.body), nil).Once()

			req := httptest.NewRequest(http.MethodPost, tt.path+"?wait=true", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestLoadInvalidID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/nodes/x", "/members/x", "/threads/x/discuss"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
}

func TestLoadFailure(t *testing.T) {
	router, s, requester := newTestRouter(t)
	requester.On("Do", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	req := httptest.NewRequest(http.MethodPost, "/members/9?wait=true", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")
	assert.Equal(t, models.UserProfile{}, s.Snapshot().UserProfile)
}

func TestLoadAfterClose(t *testing.T) {
	router, s, _ := newTestRouter(t)
	require.NoError(t, s.Close())

	req := httptest.NewRequest(http.MethodPost, "/nodes?wait=true", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
