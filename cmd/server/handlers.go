package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xtding233/wishcalc/internal/api"
	"github.com/xtding233/wishcalc/internal/plan"
)

const maxBody = 1 << 20

type errResp struct {
	Err string `json:"err"`
}

type handlers struct {
	svc *api.Service
	log *zap.Logger
}

func (h *handlers) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /simulate", h.handleSimulate)
	mux.HandleFunc("POST /optimize", h.handleOptimize)
	mux.HandleFunc("POST /topup", h.handleTopUp)
	mux.HandleFunc("GET /run/{profile}/{plan}", h.handleRun)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func parseInt(r *http.Request, key string) (*int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

func parseUint(r *http.Request, key string) (*uint64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

func parseBool(r *http.Request, key string) (*bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

// overrides reads the /run query parameters.
func overrides(r *http.Request) (plan.Overrides, error) {
	var (
		o   plan.Overrides
		err error
	)
	if m := r.URL.Query().Get("mode"); m != "" {
		mode := plan.Mode(m)
		o.Mode = &mode
	}
	if o.Trials, err = parseInt(r, "trials"); err != nil {
		return o, err
	}
	if o.Seed, err = parseUint(r, "seed"); err != nil {
		return o, err
	}
	if o.Workers, err = parseInt(r, "workers"); err != nil {
		return o, err
	}
	if o.Wishes, err = parseInt(r, "wishes"); err != nil {
		return o, err
	}
	if o.CapturingRadiance, err = parseBool(r, "radiance"); err != nil {
		return o, err
	}
	if o.FatePointThreshold, err = parseInt(r, "fate"); err != nil {
		return o, err
	}
	return o, nil
}

func (h *handlers) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req api.SimulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Simulate(r.Context(), req)
	h.reply(w, r, resp, err)
}

func (h *handlers) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req api.OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Optimize(r.Context(), req)
	h.reply(w, r, resp, err)
}

func (h *handlers) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req api.TopUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.TopUp(r.Context(), req)
	h.reply(w, r, resp, err)
}

func (h *handlers) handleRun(w http.ResponseWriter, r *http.Request) {
	o, err := overrides(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}
	resp, err := h.svc.Run(r.Context(), r.PathValue("profile"), r.PathValue("plan"), o)
	h.reply(w, r, resp, err)
}

func (h *handlers) reply(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		code := api.HTTPStatus(err)
		if code >= http.StatusInternalServerError {
			h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		writeJSON(w, code, errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
