package metrics_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chris/forum-miniapp-store/pkg/endpoints"
	"github.com/chris/forum-miniapp-store/pkg/metrics"
	"github.com/chris/forum-miniapp-store/pkg/notify"
	"github.com/chris/forum-miniapp-store/pkg/store"
	"github.com/chris/forum-miniapp-store/pkg/transport/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Make sure we conform to the interface
var _ store.Observer = (*metrics.Metrics)(nil)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	m.RequestStarted("threads")
	m.RequestFinished("threads", "success", 10*time.Millisecond)
	m.RequestStarted("nodes")
	m.RequestFinished("nodes", "failure", 5*time.Millisecond)
	m.ToastShown()

	count, err := testutil.GatherAndCount(reg, "forum_store_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "forum_store_request_duration_seconds")
	assert.Contains(t, names, "forum_store_requests_in_flight")
	assert.Contains(t, names, "forum_store_toasts_total")
}

func TestMetricsWithStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("test"))

	requester := mocks.NewRequester(t)
	requester.On("Do", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	quiet := notify.NotifierFunc(func(ctx context.Context, toast notify.Toast) error { return nil })

	s := store.New(endpoints.New("http://forum.test"), requester, store.WithObserver(m), store.WithNotifier(quiet))
	defer s.Close()

	err := s.LoadNodeList(context.Background()).Wait()
	require.ErrorIs(t, err, store.ErrRequestFailed)

	expected := `
# HELP test_store_toasts_total Total number of failure toasts shown
# TYPE test_store_toasts_total counter
test_store_toasts_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_store_toasts_total"))

	inflight := `
# HELP test_store_requests_in_flight Number of store requests in flight
# TYPE test_store_requests_in_flight gauge
test_store_requests_in_flight 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(inflight), "test_store_requests_in_flight"))
}
