package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/anishkhadka/vaultflex/internal/core/ports"
	"github.com/anishkhadka/vaultflex/internal/observability/metrics"
)

type Router struct {
	scopes    ports.ScopeManager
	ingestor  ports.DocumentIngestor
	documents ports.DocumentReader
	retriever ports.EvidenceRetriever
	opts      Options
}

type Options struct {
	ServiceName      string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
	Metrics          *metrics.HTTPServerMetrics
}

func NewRouter(
	scopes ports.ScopeManager,
	ingestor ports.DocumentIngestor,
	documents ports.DocumentReader,
	retriever ports.EvidenceRetriever,
	opts Options,
) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "api"
	}
	if opts.BackpressureWait <= 0 {
		opts.BackpressureWait = 100 * time.Millisecond
	}
	return &Router{
		scopes:    scopes,
		ingestor:  ingestor,
		documents: documents,
		retriever: retriever,
		opts:      opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/scopes", rt.createScope)
	mux.HandleFunc("GET /v1/scopes", rt.listScopes)
	mux.HandleFunc("DELETE /v1/scopes/{scope}", rt.deleteScope)
	mux.HandleFunc("POST /v1/scopes/{scope}/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/scopes/{scope}/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	mux.HandleFunc("POST /v1/scopes/{scope}/retrieve", rt.retrieve)
	mux.HandleFunc("POST /v1/scopes/{scope}/answer", rt.answer)
	if rt.opts.Metrics != nil {
		mux.Handle("GET /metrics", rt.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(rt.opts.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createScope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	scope, err := rt.scopes.CreateScope(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scope)
}

func (rt *Router) listScopes(w http.ResponseWriter, r *http.Request) {
	scopes, err := rt.scopes.ListScopes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scopes": scopes})
}

func (rt *Router) deleteScope(w http.ResponseWriter, r *http.Request) {
	report, err := rt.scopes.DeleteScope(r.Context(), r.PathValue("scope"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !report.Complete {
		writeJSON(w, http.StatusInternalServerError, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	receipt, err := rt.ingestor.Ingest(r.Context(), r.PathValue("scope"), fileHeader.Filename, file)
	if err != nil {
		rt.recordUpload("error")
		writeError(w, err)
		return
	}
	if receipt.Duplicate {
		rt.recordUpload("duplicate")
		writeJSON(w, http.StatusConflict, receipt)
		return
	}
	rt.recordUpload("accepted")
	writeJSON(w, http.StatusAccepted, receipt)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.documents.ListByScope(r.Context(), r.PathValue("scope"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type questionRequest struct {
	Question string `json:"question"`
}

func decodeQuestion(r *http.Request) (string, bool) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", false
	}
	return strings.TrimSpace(req.Question), true
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	question, ok := decodeQuestion(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	response, err := rt.retriever.Retrieve(r.Context(), r.PathValue("scope"), question)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordRetrieval("retrieve", len(response.Results), response.Degraded, response.FailedSources, time.Since(start))
	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) answer(w http.ResponseWriter, r *http.Request) {
	question, ok := decodeQuestion(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.retriever.Answer(r.Context(), r.PathValue("scope"), question)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordRetrieval("answer", len(answer.Evidence), answer.Degraded, nil, time.Since(start))
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) recordUpload(outcome string) {
	if rt.opts.Metrics == nil {
		return
	}
	rt.opts.Metrics.RecordUpload(rt.opts.ServiceName, outcome)
}

func (rt *Router) recordRetrieval(endpoint string, evidence int, degraded bool, failedSources []string, duration time.Duration) {
	if rt.opts.Metrics == nil {
		return
	}
	rt.opts.Metrics.RecordRetrieval(rt.opts.ServiceName, endpoint, evidence, degraded, failedSources, duration)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
