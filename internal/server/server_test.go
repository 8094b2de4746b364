package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plasmap/pkg/cache"
	"github.com/matzehuels/plasmap/pkg/config"
	"github.com/matzehuels/plasmap/pkg/errors"
	pkgio "github.com/matzehuels/plasmap/pkg/io"
	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/observability"
	"github.com/matzehuels/plasmap/pkg/observability/prom"
	"github.com/matzehuels/plasmap/pkg/pipeline"
	"github.com/matzehuels/plasmap/pkg/store"
)

const pUC19Body = `{
  "name": "pUC19",
  "length": 2686,
  "features": [
    {"name": "lacZα", "start": 146, "end": 469, "type": "Gene"},
    {"name": "BamHI", "start": 417, "end": 422, "type": "Enzyme"},
    {"name": "ori", "start": 1455, "end": 867, "type": "Origin"},
    {"name": "AmpR", "start": 2486, "end": 1626, "type": "Gene"}
  ]
}`

const giraffeBody = `[2686,
  {"feature": "lacZα", "start": 146, "end": 469, "type": "Gene"},
  {"feature": "BamHI", "start": 417, "end": 422, "type": "Enzyme"}]`

func newTestServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(Options{
		Runner: pipeline.NewRunner(cache.NewMemoryCache(), nil, logger),
		Store:  store.NewMemoryStore(),
		Config: cfg,
		Logger: logger,
	})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})

	resp := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, resp.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "trace-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-42", rec.Header().Get(HeaderRequestID), "incoming request IDs are kept")
}

func TestLayoutEndpoint(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})

	resp := do(t, s, http.MethodPost, "/v1/layout", pUC19Body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header().Get(HeaderCache))
	assert.NotEmpty(t, resp.Header().Get(HeaderRunID))

	l, err := pkgio.ReadLayoutJSON(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 2686, l.Length)
	assert.Equal(t, 4, l.Stats.Features)

	again := do(t, s, http.MethodPost, "/v1/layout", pUC19Body)
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "hit", again.Header().Get(HeaderCache))
}

func TestLayoutEndpointOptions(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	body := `{"length": 1000, "features": [{"name": "a", "start": 10, "end": 200, "type": "Gene"}],
	          "layout": {"start_angle": 0, "ring_spacing": 30}}`

	resp := do(t, s, http.MethodPost, "/v1/layout", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	l, err := pkgio.ReadLayoutJSON(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 0.0, l.StartAngle, "body layout options override the defaults")
}

func TestRenderEndpoint(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})

	resp := do(t, s, http.MethodPost, "/v1/render?width=320&no_ticks", giraffeBody)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, contentTypeSVG, resp.Header().Get("Content-Type"))
	out := resp.Body.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, `width="320"`)
	assert.NotContains(t, out, `id="ticks"`)
	assert.Contains(t, out, "BamHI")
}

func TestRenderEndpointYAML(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	body := "length: 500\nfeatures:\n  - name: tet\n    start: 20\n    end: 300\n    type: Gene\n"

	req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "<title>tet</title>")
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   errors.Code
	}{
		{"empty body", http.MethodPost, "/v1/layout", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed json", http.MethodPost, "/v1/layout", `{"length": `, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/v1/layout", `{"length": 10, "colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"file path", http.MethodPost, "/v1/layout", `{"path": "/etc/passwd"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing length", http.MethodPost, "/v1/render", `{"features": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown type", http.MethodPost, "/v1/layout",
			`{"length": 100, "features": [{"name": "x", "start": 1, "end": 5, "type": "Blob"}]}`,
			http.StatusBadRequest, errors.ErrCodeUnknownFeatureType},
		{"span outside sequence", http.MethodPost, "/v1/layout",
			`{"length": 100, "features": [{"name": "x", "start": 1, "end": 500, "type": "Gene"}]}`,
			http.StatusBadRequest, errors.ErrCodeInvalidSpan},
		{"options key", http.MethodPost, "/v1/layout", `{"length": 100, "options": {"ring_spacing": 10}}`,
			http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad layout option", http.MethodPost, "/v1/layout", `{"length": 100, "layout": {"ring_spacing": -1}}`,
			http.StatusBadRequest, errors.ErrCodeInvalidOptions},
		{"bad width", http.MethodPost, "/v1/render?width=wide", `{"length": 100}`, http.StatusBadRequest, errors.ErrCodeInvalidOptions},
		{"bad flag", http.MethodPost, "/v1/render?interactive=maybe", `{"length": 100}`, http.StatusBadRequest, errors.ErrCodeInvalidOptions},
		{"bad cutters", http.MethodPost, "/v1/layout?cutters=1,x", `{"length": 100}`, http.StatusBadRequest, errors.ErrCodeInvalidOptions},
		{"unknown route", http.MethodGet, "/v2/layout", "", http.StatusNotFound, ""},
		{"wrong method", http.MethodGet, "/v1/layout", "", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, config.ServerConfig{})
			resp := do(t, s, tt.method, tt.target, tt.body)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{MaxBodyBytes: 64})
	resp := do(t, s, http.MethodPost, "/v1/layout", pUC19Body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestStoredMaps(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	hash := store.SequenceHash("GATTACA")
	base := "/v1/maps/giraffe/" + hash

	resp := do(t, s, http.MethodGet, "/v1/maps/giraffe", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"sequences":[]`)

	resp = do(t, s, http.MethodGet, base, "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, errors.ErrCodeNotFound, decodeError(t, resp).Code)

	resp = do(t, s, http.MethodPut, base, pUC19Body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = do(t, s, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var rec store.Record
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rec))
	assert.Equal(t, "pUC19", rec.Name)
	require.Len(t, rec.Features, 4)
	names := []string{rec.Features[0].Name, rec.Features[1].Name, rec.Features[2].Name, rec.Features[3].Name}
	assert.Equal(t, []string{"lacZα", "BamHI", "ori", "AmpR"}, names, "features come back ordered by start")

	resp = do(t, s, http.MethodGet, "/v1/maps/giraffe", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var list struct {
		Sequences []store.Record `json:"sequences"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Sequences, 1)
	assert.Empty(t, list.Sequences[0].Features)

	resp = do(t, s, http.MethodGet, base+"/layout", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	l, err := pkgio.ReadLayoutJSON(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Stats.Features)

	resp = do(t, s, http.MethodGet, base+"/svg?highlight=AmpR&interactive=true", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "<script")
	assert.Contains(t, resp.Body.String(), "<title>pUC19</title>")

	resp = do(t, s, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = do(t, s, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStoredMapErrors(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	hash := store.SequenceHash("GATTACA")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   errors.Code
	}{
		{"bad hash", http.MethodGet, "/v1/maps/giraffe/xyz", "", errors.ErrCodeInvalidInput},
		{"bad db", http.MethodGet, "/v1/maps/-db-/" + hash, "", errors.ErrCodeInvalidName},
		{"bad db list", http.MethodGet, "/v1/maps/-db-", "", errors.ErrCodeInvalidName},
		{"bad body", http.MethodPut, "/v1/maps/giraffe/" + hash, `{"length": 0}`, errors.ErrCodeInvalidSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, s, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)

	reg := prometheus.NewRegistry()
	collector, err := prom.New(reg)
	require.NoError(t, err)
	collector.Install()

	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(Options{
		Runner:  pipeline.NewRunner(cache.NewMemoryCache(), nil, logger),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:  logger,
	})

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/v1/render", pUC19Body).Code)

	resp := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	out := resp.Body.String()
	assert.Contains(t, out, `plasmap_http_requests_total{code="200",method="POST",route="/v1/render"} 1`)
	assert.Contains(t, out, `plasmap_renders_total{format="svg",result="ok"} 1`)
	assert.Contains(t, out, `plasmap_layouts_total{result="ok"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidSpan, "x"), http.StatusBadRequest},
		{&errors.UnknownFeatureTypeError{Type: "Blob"}, http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{&errors.LayoutDivergedError{Passes: 3, Conflicts: 1}, http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
		{errors.Wrap(errors.ErrCodeInvalidInput, &http.MaxBytesError{Limit: 1}, "read"), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestDefaultsAreCopied(t *testing.T) {
	s := newTestServer(t, config.ServerConfig{})
	resp := do(t, s, http.MethodPost, "/v1/layout", `{"length": 100, "layout": {"cutters_to_show": [2]}}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, layout.DefaultCuttersToShow, s.layout.CuttersToShow)
}
