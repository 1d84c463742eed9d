package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/core/ports"
	"github.com/medscreen/adscreen/internal/infrastructure/report"
	"github.com/medscreen/adscreen/internal/observability/metrics"
)

type RouterConfig struct {
	Service          string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
	MaxUploadBytes   int64
}

func (c RouterConfig) normalize() RouterConfig {
	out := c
	if out.Service == "" {
		out.Service = "adscreen-api"
	}
	if out.BackpressureWait <= 0 {
		out.BackpressureWait = 200 * time.Millisecond
	}
	if out.MaxUploadBytes <= 0 {
		out.MaxUploadBytes = 64 << 20
	}
	return out
}

type Router struct {
	screener    ports.Screener
	batches     ports.BatchService
	ingestor    ports.StatuteIngestor
	statutes    ports.StatuteRepository
	httpMetrics *metrics.HTTPServerMetrics
	cfg         RouterConfig
}

func NewRouter(
	screener ports.Screener,
	batches ports.BatchService,
	ingestor ports.StatuteIngestor,
	statutes ports.StatuteRepository,
	httpMetrics *metrics.HTTPServerMetrics,
	cfg RouterConfig,
) *Router {
	return &Router{
		screener:    screener,
		batches:     batches,
		ingestor:    ingestor,
		statutes:    statutes,
		httpMetrics: httpMetrics,
		cfg:         cfg.normalize(),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/analyze", rt.analyze)
	mux.HandleFunc("/v1/keywords", rt.scoreKeywords)
	mux.HandleFunc("/v1/batches", rt.submitBatch)
	mux.HandleFunc("/v1/batches/", rt.batchSubresource)
	mux.HandleFunc("/v1/statutes", rt.statutesCollection)
	if rt.httpMetrics != nil {
		mux.Handle("/metrics", rt.httpMetrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	if rt.httpMetrics != nil {
		handler = rt.httpMetrics.Middleware(rt.cfg.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text       string `json:"text"`
		UseAI      *bool  `json:"use_ai"`
		UseContext *bool  `json:"use_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	opts := domain.JudgeOptions{UseAI: true, UseContext: true}
	if req.UseAI != nil {
		opts.UseAI = *req.UseAI
	}
	if req.UseContext != nil {
		opts.UseContext = *req.UseContext
	}

	start := time.Now()
	result := rt.screener.Judge(r.Context(), req.Text, opts)
	if rt.httpMetrics != nil {
		mode := "keyword"
		if opts.UseAI {
			mode = "ai"
		}
		rt.httpMetrics.RecordJudgment(rt.cfg.Service, result, mode, time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) scoreKeywords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	writeJSON(w, http.StatusOK, rt.screener.ScoreKeywords(req.Text))
}

func (rt *Router) submitBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(rt.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	items := make([]domain.BatchItem, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("open %s: %v", header.Filename, err)})
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("read %s: %v", header.Filename, err)})
			return
		}
		items = append(items, domain.BatchItem{Filename: header.Filename, Content: content})
	}

	engine := domain.ParseOCREngine(r.FormValue("engine"))
	opts := domain.JudgeOptions{
		UseAI:      formBool(r, "use_ai", true),
		UseContext: formBool(r, "use_context", true),
	}

	batchID, err := rt.batches.SubmitBatch(r.Context(), items, engine, opts)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id":    batchID,
		"total_files": len(items),
		"engine":      string(engine),
	})
}

func (rt *Router) batchSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id is required"})
		return
	}

	if batchID, ok := strings.CutSuffix(rest, "/report"); ok {
		rt.batchReport(w, r, batchID)
		return
	}
	rt.batchStatus(w, r, rest)
}

func (rt *Router) batchStatus(w http.ResponseWriter, r *http.Request, batchID string) {
	batch, err := rt.batches.GetBatchStatus(r.Context(), batchID)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (rt *Router) batchReport(w http.ResponseWriter, r *http.Request, batchID string) {
	batch, err := rt.batches.GetBatchStatus(r.Context(), batchID)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if !batch.Status.Terminal() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "batch is still processing"})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, batchID+".xlsx"))
	if err := report.Write(w, batch); err != nil {
		// Headers are already on the wire at this point.
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (rt *Router) statutesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadStatute(w, r)
	case http.MethodGet:
		rt.listStatutes(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadStatute(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	statute, err := rt.ingestor.Ingest(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, statute)
}

func (rt *Router) listStatutes(w http.ResponseWriter, r *http.Request) {
	statutes, err := rt.statutes.List(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if statutes == nil {
		statutes = []domain.Statute{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"statutes": statutes})
}

func formBool(r *http.Request, key string, fallback bool) bool {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
