package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/w-h-a/insight/cache"
	"github.com/w-h-a/insight/completer"
	"github.com/w-h-a/insight/internal/service/datasets"
	"github.com/w-h-a/insight/reasoner"
	"github.com/w-h-a/insight/store/memory"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestServer(llm completer.Completer) *httptest.Server {
	records := memory.NewStore()

	service := datasets.New(
		records,
		cache.New(records),
		reasoner.New(reasoner.WithCompleter(llm)),
	)

	return httptest.NewServer(RequestLogger(NewRouter(service)))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	bs, err := json.Marshal(body)
	require.NoError(t, err)

	rsp, err := http.Post(url, "application/json", bytes.NewReader(bs))
	require.NoError(t, err)

	return rsp
}

func decode[T any](t *testing.T, rsp *http.Response) T {
	t.Helper()
	defer rsp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&out))

	return out
}

func TestIngestAnalyzeQueryFlow(t *testing.T) {
	llm := &stubCompleter{
		response: `{"insights":[{"title":"Q4 sales spike","technical_summary":"orders cluster in December","business_impact":"plan inventory","confidence":0.9,"dedup_key":"q4 sales spike"}],"answer":"Orders cluster in December."}`,
	}

	srv := newTestServer(llm)
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/api/v1/ingest", map[string]string{
		"dataset_id": "sales",
		"file_hash":  "hash-a",
		"schema":     `{"columns":["order_date"]}`,
	})
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	ingested := decode[ingestResponse](t, rsp)
	require.Equal(t, "v1", ingested.Version)
	require.False(t, ingested.Cached)

	rsp = postJSON(t, srv.URL+"/api/v1/analyze", map[string]string{
		"dataset_id": "sales",
		"analysis":   `{"seasonality":"q4"}`,
	})
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	analyzed := decode[analyzeResponse](t, rsp)
	require.Equal(t, "v1", analyzed.Version)
	require.Equal(t, 1, analyzed.InsightsCreated)

	rsp = postJSON(t, srv.URL+"/api/v1/query", map[string]string{
		"dataset_id": "sales",
		"question":   "When do orders peak?",
	})
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	answered := decode[queryResponse](t, rsp)
	require.False(t, answered.Cached)
	require.Equal(t, "Orders cluster in December.", answered.Answer)

	rsp = postJSON(t, srv.URL+"/api/v1/query", map[string]string{
		"dataset_id": "sales",
		"question":   "when do ORDERS peak",
	})
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	repeated := decode[queryResponse](t, rsp)
	require.True(t, repeated.Cached)
	require.Equal(t, answered.QueryHash, repeated.QueryHash)

	versionsRsp, err := http.Get(srv.URL + "/api/v1/datasets/sales/versions")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, versionsRsp.StatusCode)
	require.Equal(t, []string{"v1"}, decode[versionsResponse](t, versionsRsp).Versions)

	insightsRsp, err := http.Get(srv.URL + "/api/v1/datasets/sales/insights?version=v1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, insightsRsp.StatusCode)

	insights := decode[insightsResponse](t, insightsRsp)
	require.Len(t, insights.Insights, 1)
	require.Equal(t, "Q4 sales spike: orders cluster in December", insights.Insights[0].Summary)
}

func TestInvalidRequestsReturn400(t *testing.T) {
	srv := newTestServer(&stubCompleter{})
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/api/v1/ingest", map[string]string{"file_hash": "hash-a"})
	require.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	require.Contains(t, decode[errorResponse](t, rsp).Detail, "dataset id")

	badBody, err := http.Post(srv.URL+"/api/v1/query", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, badBody.StatusCode)
	badBody.Body.Close()
}

func TestUnknownDatasetReturns404(t *testing.T) {
	srv := newTestServer(&stubCompleter{})
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/api/v1/query", map[string]string{
		"dataset_id": "missing",
		"question":   "anything?",
	})
	require.Equal(t, http.StatusNotFound, rsp.StatusCode)
}

func TestCompleterOutageReturns502(t *testing.T) {
	llm := &stubCompleter{err: fmt.Errorf("%w: ollama at http://localhost:11434/api/generate: connection refused", completer.ErrUnavailable)}

	srv := newTestServer(llm)
	defer srv.Close()

	rsp := postJSON(t, srv.URL+"/api/v1/ingest", map[string]string{
		"dataset_id": "sales",
		"file_hash":  "hash-a",
		"schema":     "schema",
	})
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	rsp.Body.Close()

	rsp = postJSON(t, srv.URL+"/api/v1/query", map[string]string{
		"dataset_id": "sales",
		"question":   "anything?",
	})
	require.Equal(t, http.StatusBadGateway, rsp.StatusCode)
	require.Contains(t, decode[errorResponse](t, rsp).Detail, "unavailable")
}
