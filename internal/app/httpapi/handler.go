package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/library_service/internal/app"
	"github.com/R3E-Network/library_service/internal/app/metrics"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

const (
	maxBodyBytes  = 1 << 20
	healthTimeout = 2 * time.Second
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the library REST API plus /healthz and
// /metrics. It applies no middleware; see Wrap.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	r.HandleFunc("/book", h.listBooks).Methods(http.MethodGet)
	r.HandleFunc("/book", h.createBook).Methods(http.MethodPost)
	r.HandleFunc("/book/{id}", h.getBook).Methods(http.MethodGet)
	r.HandleFunc("/book/{id}", h.updateBook).Methods(http.MethodPut)
	r.HandleFunc("/book/{id}", h.deleteBook).Methods(http.MethodDelete)

	r.HandleFunc("/member", h.listMembers).Methods(http.MethodGet)
	r.HandleFunc("/member", h.createMember).Methods(http.MethodPost)
	r.HandleFunc("/member/{id}", h.getMember).Methods(http.MethodGet)
	r.HandleFunc("/member/{id}", h.updateMember).Methods(http.MethodPut)
	r.HandleFunc("/member/{id}", h.deleteMember).Methods(http.MethodDelete)

	r.HandleFunc("/issuance", h.listIssuances).Methods(http.MethodGet)
	r.HandleFunc("/issuance", h.issue).Methods(http.MethodPost)
	r.HandleFunc("/issuance/pending", h.pendingReturns).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

// --- books ------------------------------------------------------------------

func (h *handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.app.Books.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *handler) getBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.app.Books.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handler) createBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.app.Books.Create(r.Context(), payload.toBook())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *handler) updateBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.app.Books.Update(r.Context(), mux.Vars(r)["id"], payload.toBook())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	msg, err := h.app.Books.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msg})
}

// --- members ----------------------------------------------------------------

func (h *handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.app.Members.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *handler) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.Members.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handler) createMember(w http.ResponseWriter, r *http.Request) {
	var payload memberPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.app.Members.Create(r.Context(), payload.toMember())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *handler) updateMember(w http.ResponseWriter, r *http.Request) {
	var payload memberPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.app.Members.Update(r.Context(), mux.Vars(r)["id"], payload.toMember())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	msg, err := h.app.Members.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msg})
}

// --- issuance ---------------------------------------------------------------

func (h *handler) listIssuances(w http.ResponseWriter, r *http.Request) {
	out, err := h.app.Issuance.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) pendingReturns(w http.ResponseWriter, r *http.Request) {
	out, err := h.app.Issuance.ListPending(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) issue(w http.ResponseWriter, r *http.Request) {
	var payload issuancePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.app.Issuance.Issue(r.Context(), payload.toRequest())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// --- system -----------------------------------------------------------------

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.app.Ping(ctx); err != nil {
		h.log.WithContext(r.Context()).WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found", Code: errors.CodeNotFound})
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
}

// --- helpers ----------------------------------------------------------------

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error   string                 `json:"error"`
	Code    errors.ErrorCode       `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.Validation("request body is required")
		}
		return errors.Validation("invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders err with its mapped status. Storage and unexpected
// errors are logged in full but only a generic message reaches the client.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se := errors.GetServiceError(err)
	if se == nil {
		se = errors.Storage("request", err)
	}
	if se.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).
			WithField("method", r.Method).
			Error("request failed")
	}
	writeJSON(w, se.HTTPStatus, errorBody{Error: se.Message, Code: se.Code, Details: se.Details})
}
