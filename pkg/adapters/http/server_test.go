package http_test

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/testutils"
	httpadapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderServer(t *testing.T, opts ...httpadapter.ServerOption) *httpadapter.Client {
	t.Helper()
	return newServer(t, testutils.OrderWorkflow(), opts...)
}

func newServer(t *testing.T, def *domain.Definition, opts ...httpadapter.ServerOption) *httpadapter.Client {
	t.Helper()
	srv := httpadapter.NewServer(def, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return httpadapter.NewClient(ts.URL)
}

func TestServer_OrderSession(t *testing.T) {
	client := newOrderServer(t)
	ctx := context.Background()

	sess, err := client.CreateSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, testutils.Shopping, sess.Snapshot.State)

	_, err = client.Send(ctx, sess.ID, domain.NewEvent(testutils.AddToCart))
	require.NoError(t, err)
	resp, err := client.Send(ctx, sess.ID, domain.NewEvent(testutils.PlaceOrder))
	require.NoError(t, err)
	assert.Equal(t, testutils.PlacingOrder, resp.Snapshot.State)
	assert.Equal(t, testutils.SubmitOrder, resp.Pending)

	resp, err = client.Reject(ctx, sess.ID, testutils.SubmitOrder, "card declined")
	require.NoError(t, err)
	assert.Equal(t, testutils.OrderFailed, resp.Snapshot.State)
	assert.Equal(t, 1, resp.Snapshot.Context.Int("ordersFailed"))
	assert.Empty(t, resp.Pending)

	_, err = client.Send(ctx, sess.ID, domain.NewEvent(testutils.PlaceOrder))
	require.NoError(t, err)
	resp, err = client.Resolve(ctx, sess.ID, testutils.SubmitOrder, map[string]any{"orderId": 7})
	require.NoError(t, err)
	assert.Equal(t, testutils.Ordered, resp.Snapshot.State)

	got, err := client.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.Snapshot.Equal(resp.Snapshot))

	require.NoError(t, client.DeleteSession(ctx, sess.ID))
	_, err = client.Session(ctx, sess.ID)
	var apiErr *httpadapter.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestServer_ChainedInvocationSettles(t *testing.T) {
	client := newServer(t, testutils.FulfilmentWorkflow())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess, err := client.CreateSession(ctx)
	require.NoError(t, err)
	_, err = client.Send(ctx, sess.ID, domain.NewEvent("CHECKOUT"))
	require.NoError(t, err)

	resp, err := client.Resolve(ctx, sess.ID, "charge", "paid")
	require.NoError(t, err)
	assert.Equal(t, "shipping", resp.Snapshot.State)
	assert.Equal(t, "dispatch", resp.Pending)

	resp, err = client.Resolve(ctx, sess.ID, "dispatch", "tracking-1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", resp.Snapshot.State)
	assert.Empty(t, resp.Pending)
}

func TestServer_Errors(t *testing.T) {
	client := newOrderServer(t)
	ctx := context.Background()
	sess, err := client.CreateSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name   string
		call   func() error
		status int
	}{
		{
			name: "Resolve Without Pending Invocation",
			call: func() error {
				_, err := client.Resolve(ctx, sess.ID, testutils.SubmitOrder, nil)
				return err
			},
			status: http.StatusConflict,
		},
		{
			name: "Synthetic Event Through Events Endpoint",
			call: func() error {
				_, err := client.Send(ctx, sess.ID, domain.DoneEvent(testutils.SubmitOrder, nil))
				return err
			},
			status: http.StatusBadRequest,
		},
		{
			name: "Empty Event Name",
			call: func() error {
				_, err := client.Send(ctx, sess.ID, domain.Event{})
				return err
			},
			status: http.StatusBadRequest,
		},
		{
			name: "Unknown Session",
			call: func() error {
				_, err := client.Send(ctx, "ghost", domain.NewEvent(testutils.AddToCart))
				return err
			},
			status: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *httpadapter.APIError
			require.True(t, errors.As(tt.call(), &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}

	got, err := client.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, testutils.Shopping, got.Snapshot.State, "rejected requests leave the session untouched")
}

func TestServer_Definition(t *testing.T) {
	client := newOrderServer(t)
	def, err := client.Definition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "order", def.ID)
	assert.Equal(t, []string{testutils.SubmitOrder}, def.Invocations)
	assert.Len(t, def.Transitions, len(testutils.OrderWorkflow().TransitionKeys()))
}

func TestServer_StreamsSnapshotDiffs(t *testing.T) {
	srv := httpadapter.NewServer(testutils.OrderWorkflow())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Close()

	client := httpadapter.NewClient(ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess, err := client.CreateSession(ctx)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sessions/"+sess.ID+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	_, err = client.Send(ctx, sess.ID, domain.NewEvent(testutils.AddToCart))
	require.NoError(t, err)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			data = lines.Text()
			break
		}
	}
	assert.Equal(t, `data: {"state":"cart"}`, data)
}

func TestServer_MetricsAndHealth(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("waypoint_up 1\n"))
	})
	srv := httpadapter.NewServer(testutils.ElevatorWorkflow(), httpadapter.WithMetricsHandler(metrics))
	h := srv.Handler()

	for path, want := range map[string]string{"/health": `"ok"`, "/metrics": "waypoint_up 1"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}
}
