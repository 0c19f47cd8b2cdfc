package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := NewRecordingAPI()
	scoped := NewScopedAPI("pricelist", recorder)
	err := errors.New("no node")

	scoped.ReportBroken("extract-item", 3, err)
	scoped.ReportWarning("slow-fetch", "12s")
	scoped.ReportDebug("item-skipped", 4)
	scoped.ReportCount("fetched", 12)

	require.Equal(t, []Report{{ID: "pricelist.extract-item", Params: []any{3, err}}}, recorder.Broken)
	require.Equal(t, []Report{{ID: "pricelist.slow-fetch", Params: []any{"12s"}}}, recorder.Warnings)
	require.Equal(t, []Report{{ID: "pricelist: item-skipped", Params: []any{4}}}, recorder.Debug)
	require.Equal(t, map[string]int64{"pricelist.fetched": 12}, recorder.Counts)

	// nested scopes are joined
	NewScopedAPI("ingest", scoped).ReportCount("saved", 2)
	require.Equal(t, int64(2), recorder.Counts["pricelist.ingest.saved"])
}

func TestSlogAPIFormatParams(t *testing.T) {
	err := errors.New("boom")
	var out []any
	SlogAPI{}.formatParams(&out, []any{7, err, "text"})
	require.Equal(t, []any{"params.0", 7, "err", err, "params.2", "text"}, out)
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	recorder := NewRecordingAPI()
	client := resty.New()
	InstrumentResty(client, recorder)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.Len(t, recorder.Debug, 2)
	require.Equal(t, report_resty_request, recorder.Debug[0].ID)
	require.Equal(t, report_resty_response, recorder.Debug[1].ID)
	require.Equal(t, uint64(1), recorder.Debug[0].Params[0])
	require.Empty(t, recorder.Broken)
	require.Empty(t, recorder.Warnings)

	_, err = client.R().Get(server.URL + "/missing")
	require.NoError(t, err)
	require.Len(t, recorder.Warnings, 1)
	require.Equal(t, report_resty_status, recorder.Warnings[0].ID)
	require.Equal(t, http.StatusNotFound, recorder.Warnings[0].Params[2])

	_, err = client.R().Get("http://127.0.0.1:1")
	require.Error(t, err)
	require.Len(t, recorder.Broken, 1)
	require.Equal(t, report_resty_response, recorder.Broken[0].ID)
}
