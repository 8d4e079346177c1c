package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"gympulse/internal/errs"
	"gympulse/internal/repo"
)

const maxBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondOK writes {"ok":true} merged with fields.
func respondOK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	respondJSON(w, status, body)
}

func respondFail(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// respondError maps a domain error onto a status. Storage details are
// logged, never returned.
func respondError(w http.ResponseWriter, r *http.Request, lg *zap.SugaredLogger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrNeedsOnboarding):
		respondJSON(w, http.StatusForbidden, map[string]any{"ok": false, "error": "needs_onboarding", "redirect": "/onboarding"})
		return
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		lg.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondFail(w, status, errs.Message(err))
}

type listBody[T any] struct {
	OK bool `json:"ok"`
	repo.ListResult[T]
}

func respondList[T any](w http.ResponseWriter, res repo.ListResult[T]) {
	respondJSON(w, http.StatusOK, listBody[T]{OK: true, ListResult: res})
}

// decode reads a JSON body into dst; malformed input is a validation error.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Validation("", "invalid request body")
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func pageFrom(r *http.Request) repo.Page {
	return repo.NewPage(queryInt(r, "page"), queryInt(r, "pageSize"))
}

func sortFrom(r *http.Request) repo.Sort {
	q := r.URL.Query()
	return repo.NewSort(q.Get("sort"), q.Get("dir"))
}
