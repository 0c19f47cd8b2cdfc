package restyutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func withDebugLogs(t *testing.T) {
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	t.Cleanup(func() {
		slog.SetDefault(previous)
	})
}

func TestInstrumentWritesMessages(t *testing.T) {
	withDebugLogs(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<div class="PriceList"></div>`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "http")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	InstrumentClient(client, nil, output)

	res, err := client.R().Get(server.URL + "/prices")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	contents, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	message := string(contents)
	require.True(t, strings.HasPrefix(message, "---- REQUEST ----"), message)
	require.Contains(t, message, "GET "+server.URL+"/prices")
	require.Contains(t, message, "200")
	require.Contains(t, message, `<div class="PriceList"></div>`)
}

func TestInstrumentWithoutOutput(t *testing.T) {
	withDebugLogs(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resty.New()
	InstrumentClient(client, nil, nil)

	res, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode())
}

func TestFilesystemOutputClearsDirectory(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))

	output.Write("1", "message")
	contents, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	require.Equal(t, "message", string(contents))
}

func TestFormatHeadersSorted(t *testing.T) {
	var out strings.Builder
	writeHeaders(&out, http.Header{
		"X-B": {"2"},
		"X-A": {"1", "3"},
	})
	require.Equal(t, "X-A: 1\nX-A: 3\nX-B: 2\n", out.String())
}
