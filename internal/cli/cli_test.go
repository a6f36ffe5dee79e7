package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/pkg/adapters/file"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/adapters/redis"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const experiment = `
name: pilot
description: Two short trials.
trials:
  - stimuli: [a.png, b.png]
    initial_direction: right
    data: {block: 1}
  - stimuli: [c.png]
    occlude_center: false
`

func writeExperiment(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		b, err := OpenStore(ctx, StoreOptions{})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, b.Store)
		assert.Nil(t, b.Locker)
		assert.NoError(t, b.Close())
	})

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		b, err := OpenStore(ctx, StoreOptions{Kind: StoreFile, Dir: dir})
		require.NoError(t, err)
		require.IsType(t, &file.Store{}, b.Store)
		assert.Equal(t, dir, b.Store.(*file.Store).BasePath)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		b, err := OpenStore(ctx, StoreOptions{Kind: StoreRedis, RedisAddr: mr.Addr()})
		require.NoError(t, err)
		defer b.Close()
		assert.IsType(t, &redis.Store{}, b.Store)
		assert.NotNil(t, b.Locker)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := OpenStore(ctx, StoreOptions{Kind: StoreRedis, RedisAddr: addr})
		assert.ErrorContains(t, err, "failed to connect to redis")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreOptions{Kind: "s3"})
		assert.ErrorContains(t, err, `unknown store "s3"`)
	})
}

func TestRun_Headless(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Run(context.Background(), RunOptions{
		ExperimentPath: writeExperiment(t, experiment),
		SessionID:      "p-1",
		Store:          StoreOptions{Kind: StoreFile, Dir: dir},
	}, logging.NewNop(), &out)
	require.NoError(t, err)

	// 0.5 + 2 + 1 seconds, then 0.5 + 1 + 1
	assert.Contains(t, out.String(), "2 trials recorded in 6s")
	assert.Contains(t, out.String(), "p-1")

	results, err := file.New(dir).List(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.EqualValues(t, 1, results[0].Data["block"])
}

func TestRun_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Run(ctx, RunOptions{ExperimentPath: writeExperiment(t, experiment), SessionID: "p-2"}, logging.NewNop(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Interrupted after 0 of 2 trials (session p-2).")
}

func TestRun_InvalidExperiment(t *testing.T) {
	path := writeExperiment(t, "trials:\n  - stimuli: []\n")
	err := Run(context.Background(), RunOptions{ExperimentPath: path, Quiet: true}, logging.NewNop(), &bytes.Buffer{})

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorContains(t, err, "trials[0]")
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Validate(writeExperiment(t, experiment), logging.NewNop(), &out))
	assert.Equal(t, ">>> pilot is valid: 2 trials, 3 images.\n", out.String())
}

func TestDescribe(t *testing.T) {
	path := writeExperiment(t, experiment)

	t.Run("summary", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Describe(DescribeOptions{ExperimentPath: path}, logging.NewNop(), &out))
		assert.Contains(t, out.String(), "# pilot")
		assert.Contains(t, out.String(), "about **6s** in total")
	})

	t.Run("graph", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Describe(DescribeOptions{ExperimentPath: path, Graph: true, Trial: 1}, logging.NewNop(), &out))
		assert.True(t, strings.HasPrefix(out.String(), "graph TD\n"))
		assert.Contains(t, out.String(), "c.png")
	})

	t.Run("graph out of range", func(t *testing.T) {
		err := Describe(DescribeOptions{ExperimentPath: path, Graph: true, Trial: 2}, logging.NewNop(), &bytes.Buffer{})
		assert.ErrorContains(t, err, "out of range")
	})
}

func TestPrintResults(t *testing.T) {
	dir := t.TempDir()
	opts := StoreOptions{Kind: StoreFile, Dir: dir}
	require.NoError(t, Run(context.Background(), RunOptions{
		ExperimentPath: writeExperiment(t, experiment),
		SessionID:      "p-3",
		Store:          opts,
		Quiet:          true,
	}, logging.NewNop(), &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, PrintResults(context.Background(), opts, "p-3", &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, domain.TrialType, first["trial_type"])

	out.Reset()
	require.NoError(t, ListSessions(context.Background(), opts, &out))
	assert.Equal(t, "p-3\n", out.String())

	err := PrintResults(context.Background(), opts, "nobody", &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServeListener_GracefulShutdown(t *testing.T) {
	b, err := OpenStore(context.Background(), StoreOptions{})
	require.NoError(t, err)
	handler, err := NewHandler(b.Sessions(logging.NewNop()), logging.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveListener(ctx, ln, handler, logging.NewNop()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOpenStore_Middleware(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := bytes.Repeat([]byte{7}, 32)

	b, err := OpenStore(ctx, StoreOptions{Kind: StoreFile, Dir: dir, Mask: []string{"^participant"}, EncryptionKey: key})
	require.NoError(t, err)

	result, err := domain.NewTrialResult(domain.TrialType, 0, []string{"a.png"}, map[string]any{"participant": "jane", "block": "A"})
	require.NoError(t, err)
	require.NoError(t, b.Store.Append(ctx, "p-4", result))

	raw, err := file.New(dir).List(ctx, "p-4")
	require.NoError(t, err)
	assert.NotContains(t, raw[0].Data, "block", "records are encrypted at rest")

	got, err := b.Store.List(ctx, "p-4")
	require.NoError(t, err)
	assert.Equal(t, "A", got[0].Data["block"])
	assert.Equal(t, "***", got[0].Data["participant"])

	_, err = OpenStore(ctx, StoreOptions{Mask: []string{"("}})
	assert.Error(t, err)
	_, err = OpenStore(ctx, StoreOptions{EncryptionKey: []byte("short")})
	assert.Error(t, err)
}

func TestServeMCP(t *testing.T) {
	logger := logging.NewNop()

	err := ServeMCP(context.Background(), MCPOptions{Transport: "carrier-pigeon", Store: StoreOptions{Kind: StoreMemory}}, logger)
	assert.ErrorContains(t, err, "unknown transport")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ServeMCP(ctx, MCPOptions{Transport: TransportSSE, Addr: "127.0.0.1:0", Store: StoreOptions{Kind: StoreMemory}}, logger)
	assert.NoError(t, err, "a cancelled context shuts the SSE server down cleanly")
}
