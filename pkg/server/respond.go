package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/session"
)

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// writeError maps err to a status and writes the error envelope.
func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	status := http.StatusInternalServerError

	switch {
	case stderrors.Is(err, session.ErrNotFound):
		status, body.Error.Code = http.StatusNotFound, errors.ErrCodeNotFound
	case stderrors.Is(err, session.ErrExpired):
		status, body.Error.Code = http.StatusGone, errors.ErrCodeNotFound
	default:
		body.Error.Code = errors.GetCode(err)
		if body.Error.Code == "" {
			body.Error.Code = errors.ErrCodeInternal
		}
		status = statusFor(body.Error.Code)
	}
	body.Error.Message = errors.UserMessage(err)

	if body.Error.Code == errors.ErrCodeCatalogPending {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, body)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeEmptyInput,
		errors.ErrCodeInvalidTitle, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeLayoutNotFound, errors.ErrCodeItemNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCatalogPending, errors.ErrCodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body of at most maxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func layoutID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid layout id %q", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
