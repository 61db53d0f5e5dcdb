package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xtding233/wishcalc/internal/api"
	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/plan"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	paths := plan.Paths{BaseDir: dir}
	require.NoError(t, os.WriteFile(paths.CatalogPath(), []byte(`banners:
  - id: 5.3-phase1
    characters: [Mavuika, Citlali]
    weapons: [A Thousand Blazing Suns, Starcaller's Watch]
account:
  wishes: 100
allocations:
  - banner: 5.3-phase1
    target: Mavuika
    wishes: 100
`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.PlanPath("main", "c0")), 0o755))
	require.NoError(t, os.WriteFile(paths.PlanPath("main", "c0"), []byte("notes: c0\n"), 0o644))

	log := zaptest.NewLogger(t)
	svc := api.NewService(api.Options{
		Simulation: gacha.RunOptions{Trials: 200, Seed: 9, Workers: 2},
		Resolver:   plan.NewLoader(dir, plan.Defaults{Rates: currency.DefaultRates()}),
		Logger:     log,
	})
	srv := httptest.NewServer((&handlers{svc: svc, log: log}).routes())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleSimulate(t *testing.T) {
	srv := newTestServer(t)
	body := `{
		"banners": [{"id": "b", "characters": ["Mavuika"], "weapons": ["x", "y"]}],
		"allocations": [{"bannerId": "b", "target": "Mavuika", "wishes": 30}],
		"trials": 100
	}`
	resp, err := http.Post(srv.URL+"/simulate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody(t, resp)
	assert.EqualValues(t, 100, out["trials"])
	assert.EqualValues(t, 9, out["seed"])
}

func TestHandleSimulate_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	for name, body := range map[string]string{
		"malformed":     `{"banners": [`,
		"unknown field": `{"bogus": 1}`,
		"invalid plan":  `{"banners": [{"id": "b", "characters": ["Mavuika"], "weapons": ["x", "y"]}], "allocations": [{"bannerId": "b", "target": "Nahida", "wishes": 1}]}`,
	} {
		resp, err := http.Post(srv.URL+"/simulate", "application/json", strings.NewReader(body))
		require.NoError(t, err, name)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		assert.NotEmpty(t, decodeBody(t, resp)["err"], name)
	}

	resp, err := http.Get(srv.URL + "/simulate")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleTopUp(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/topup", "application/json", strings.NewReader(`{"wishes": 1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 160, decodeBody(t, resp)["shortfallPrimogems"])
}

func TestHandleRun(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/run/main/c0?trials=50&seed=4")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody(t, resp)
	assert.Equal(t, "playground", out["mode"])
	sim := out["simulation"].(map[string]any)
	assert.EqualValues(t, 50, sim["trials"])
	assert.EqualValues(t, 4, sim["seed"])

	resp, err = http.Get(srv.URL + "/run/main/c0?trials=lots")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/run/main/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}
