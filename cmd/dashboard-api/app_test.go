package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	dashboardapi "github.com/BearBump/StoreDash/internal/api/dashboard_api"
	"github.com/BearBump/StoreDash/internal/broker/messages"
	"github.com/BearBump/StoreDash/internal/cache/rediscache"
	"github.com/BearBump/StoreDash/internal/integrations/backend/synthetic"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/services/deliveries"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs [][]byte
}

func (c fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for _, m := range c.msgs {
		if err := handler(nil, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func writeSwagger(t *testing.T) string {
	t.Helper()
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))
	return sw
}

func TestRunDashboardAPI_ServesRoutesAndConsumesSnapshots(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := rediscache.New(mr.Addr())
	snapshots := deliveries.NewSnapshotStore(cache, time.Minute)

	svc := deliveries.New(nil, synthetic.New(5), nil, nil, deliveries.Options{Mode: deliveries.ModeSynthetic}).
		WithSnapshots(snapshots)
	api := dashboardapi.New(dashboardapi.Deps{Deliveries: svc})

	snap, err := json.Marshal(messages.DeliveriesRefreshed{
		StoreID:     "s1",
		RefreshedAt: time.Now().UTC(),
		Summary:     models.Summary{Total: 0},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := dashboardAPIOpts{
		httpAddr:      "127.0.0.1:0",
		swaggerPath:   writeSwagger(t),
		topic:         "t",
		consumerGroup: "g",
		onListen:      func(httpAddr string) { addrCh <- httpAddr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runDashboardAPI(ctx, opts, api, fakeConsumer{msgs: [][]byte{snap}}, snapshots.HandleMessage(ctx))
	}()
	base := "http://" + <-addrCh

	for _, path := range []string{"/healthz", "/swagger.json", "/metrics", "/api/stores/s1/deliveries"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err, path)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "%s: %s", path, body)
	}

	require.Eventually(t, func() bool {
		_, ok, err := snapshots.Load(context.Background(), "s1")
		return err == nil && ok
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/api/stores/s1/deliveries/active")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		FromSnapshot bool `json:"fromSnapshot"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.FromSnapshot)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestRunDashboardAPI_SwaggerRequired(t *testing.T) {
	api := dashboardapi.New(dashboardapi.Deps{})

	err := runDashboardAPI(context.Background(), dashboardAPIOpts{httpAddr: "127.0.0.1:0"}, api, nil, nil)
	require.ErrorContains(t, err, "swaggerPath")

	err = runDashboardAPI(context.Background(), dashboardAPIOpts{
		httpAddr:    "127.0.0.1:0",
		swaggerPath: filepath.Join(t.TempDir(), "nope.json"),
	}, api, nil, nil)
	require.ErrorContains(t, err, "swagger file not found")
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	setupLogger("debug")
	require.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	setupLogger("verbose")
	require.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	require.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
}
