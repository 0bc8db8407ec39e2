package app

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jordanamos/clockify-invoice/internal/adapter/clockify"
	"github.com/jordanamos/clockify-invoice/internal/adapter/sqlite"
	"github.com/jordanamos/clockify-invoice/internal/usecase"
)

// HTTPServer returns a configured http.Server exposing the invoice
// operations. Call ListenAndServe on the returned server in a goroutine and
// Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /sync", a.handleSync)
	mux.HandleFunc("GET /invoices", a.handleListInvoices)
	mux.HandleFunc("POST /invoices", a.handleCreateInvoice)
	mux.HandleFunc("GET /invoices/{id}/document", a.handleInvoiceDocument)
	mux.HandleFunc("DELETE /invoices/{id}", a.handleDeleteInvoice)

	var handler http.Handler = mux
	if a.cfg.Serve.User != "" {
		handler = basicAuth(a.cfg.Serve.User, a.cfg.Serve.Password, handler)
	}
	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, handler)}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

func (a *App) handleSync(w http.ResponseWriter, r *http.Request) {
	err := a.Sync(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *App) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}
	records, total, err := a.Invoices(r.Context(), year)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fiscal_year": year,
		"invoices":    records,
		"total":       total,
	})
}

func (a *App) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year   int `json:"year"`
		Month  int `json:"month"`
		Number int `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		http.Error(w, "year and month (1-12) are required", http.StatusBadRequest)
		return
	}
	start, end := MonthPeriod(req.Year, time.Month(req.Month))

	inv, err := a.BuildInvoice(r.Context(), req.Number, start, end)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	id, err := a.SaveInvoice(r.Context(), inv)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	rec := inv.ToRecord()
	rec.ID = id
	writeJSON(w, http.StatusCreated, rec)
}

func (a *App) handleInvoiceDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}
	doc, err := a.InvoiceDocument(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (a *App) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invoice id", http.StatusBadRequest)
		return
	}
	if err := a.DeleteInvoice(r.Context(), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

// writeError maps the typed error taxonomy onto HTTP statuses so front ends
// can distinguish failure kinds.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	var (
		reqErr        *clockify.RequestError
		validationErr *usecase.ValidationError
		storageErr    *sqlite.StorageError
	)
	switch {
	case errors.Is(err, clockify.ErrCredentialMissing):
		status = http.StatusUnauthorized
	case errors.As(err, &reqErr):
		status = http.StatusBadGateway
	case errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, sqlite.ErrNoUser):
		status = http.StatusConflict
	case errors.Is(err, sqlite.ErrInvoiceNotFound):
		status = http.StatusNotFound
	case errors.As(err, &storageErr):
		status = http.StatusInternalServerError
	}
	log.Error("request failed", slog.String("error", err.Error()), slog.Int("status", status))
	writeJSON(w, status, map[string]any{"status": "error", "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func basicAuth(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(gotUser), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(gotPass), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Login Required"`)
			http.Error(w, "access denied", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
