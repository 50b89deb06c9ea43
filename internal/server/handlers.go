package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/logging"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 5000
)

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, s.metrics.instrument(name, s.withLogger(h)))
	}

	route("GET /healthz", "healthz", s.handleHealth)
	route("GET /v1/status", "status", s.handleStatus)
	route("GET /v1/events", "events", s.handleEvents)
	route("GET /v1/stream", "stream", s.handleStream)
	route("GET /v1/programs", "programs", s.handlePrograms)
	route("GET /v1/overview", "overview", s.handleOverview)
	route("GET /v1/programs/{program}/records", "records", s.handleRecords)
	route("GET /v1/programs/{program}/clusters", "clusters", s.handleClusters)
	route("GET /v1/programs/{program}/clusters/{id}/summary", "summary", s.handleSummary)
	mux.Handle("GET /metrics", s.metrics.handler())
	return mux
}

// withLogger attaches a request-scoped logger to the request context.
func (s *Service) withLogger(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := s.log.With("method", r.Method, "path", r.URL.Path)
		h(w, r.WithContext(logging.WithContext(r.Context(), l)))
	}
}

type apiError struct {
	Error   string        `json:"error"`
	Program model.Program `json:"program,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	body := apiError{Error: err.Error()}
	var pe *pipeline.ProgramError
	if errors.As(err, &pe) {
		body.Program = pe.Program
	}
	writeJSON(w, code, body)
}

// loadStatus maps a load error to an HTTP status.
func loadStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnknownProgram), errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pipelinePresent(l *pipeline.Loader) int {
	return source.CountPresent(l.Scan())
}

// yearsParam parses repeated ?year= values.
func yearsParam(r *http.Request) ([]int, error) {
	var years []int
	for _, raw := range r.URL.Query()["year"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", part)
			}
			years = append(years, y)
		}
	}
	return years, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// loadProgram resolves the {program} path value and loads its records
// filtered by ?year=.
func (s *Service) loadProgram(w http.ResponseWriter, r *http.Request) (model.Program, []model.Record, bool) {
	p, ok := model.ParseProgram(r.PathValue("program"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", pipeline.ErrUnknownProgram, r.PathValue("program")))
		return "", nil, false
	}
	years, err := yearsParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", nil, false
	}

	start := time.Now()
	ds, err := s.cfg.Loader.LoadProgram(r.Context(), p)
	s.metrics.loadDuration.WithLabelValues("program").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.loadFailures.WithLabelValues("program").Inc()
		logging.FromContext(r.Context(), s.log).Warn("load failed", "program", p, "err", err)
		writeError(w, loadStatus(err), err)
		return "", nil, false
	}
	return p, pipeline.FilterByYears(ds.Records, years...), true
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

type programInfo struct {
	Program     model.Program          `json:"program"`
	Path        string                 `json:"path"`
	Exists      bool                   `json:"exists"`
	SizeBytes   int64                  `json:"size_bytes"`
	Explanation string                 `json:"explanation"`
	Clusters    []profile.ClusterLabel `json:"clusters"`
}

func (s *Service) handlePrograms(w http.ResponseWriter, _ *http.Request) {
	files := s.cfg.Loader.Scan()
	out := make([]programInfo, 0, len(files))
	for _, f := range files {
		out = append(out, programInfo{
			Program:     f.Program,
			Path:        f.Path,
			Exists:      f.Exists,
			SizeBytes:   f.Size,
			Explanation: s.cfg.Catalog.Explanation(f.Program),
			Clusters:    s.cfg.Catalog.Clusters(f.Program),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type programTotal struct {
	Program      model.Program       `json:"program"`
	Records      int                 `json:"records"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	MeanDuration decimal.NullDecimal `json:"mean_duration_days"`
}

type yearlyTotal struct {
	Year    int             `json:"year"`
	Program model.Program   `json:"program"`
	Amount  decimal.Decimal `json:"amount"`
}

type overview struct {
	Years    []int          `json:"years"`
	Total    programTotal   `json:"total"`
	Programs []programTotal `json:"programs"`
	Trend    []yearlyTotal  `json:"trend"`
}

func toProgramTotal(st model.ProgramStats) programTotal {
	return programTotal{
		Program:      st.Program,
		Records:      st.Records,
		TotalAmount:  st.TotalAmount,
		MeanDuration: st.MeanDuration,
	}
}

func (s *Service) handleOverview(w http.ResponseWriter, r *http.Request) {
	years, err := yearsParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	ds, err := s.cfg.Loader.LoadAll(r.Context())
	s.metrics.loadDuration.WithLabelValues("all").Observe(time.Since(start).Seconds())
	if err != nil {
		// The combined view is undefined unless every program loads.
		s.metrics.loadFailures.WithLabelValues("all").Inc()
		logging.FromContext(r.Context(), s.log).Warn("load failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	records := pipeline.FilterByYears(ds.Records, years...)
	out := overview{
		Years: pipeline.Years(ds.Records),
		Total: toProgramTotal(pipeline.Summarize(records)),
	}
	for _, st := range pipeline.ProgramTotals(records) {
		out.Programs = append(out.Programs, toProgramTotal(st))
	}
	for _, yt := range pipeline.YearlyTrend(records) {
		out.Trend = append(out.Trend, yearlyTotal{Year: yt.Year, Program: yt.Program, Amount: yt.Amount})
	}
	writeJSON(w, http.StatusOK, out)
}

type recordJSON struct {
	Program       model.Program       `json:"program"`
	Recipient     string              `json:"recipient"`
	IDNumber      string              `json:"id_number"`
	City          string              `json:"city"`
	Subprogram    string              `json:"subprogram"`
	FundingSource string              `json:"funding_source"`
	Amount        decimal.NullDecimal `json:"amount"`
	Duration      decimal.NullDecimal `json:"duration_days"`
	Year          int                 `json:"year,omitempty"`
	Cluster       *int                `json:"cluster,omitempty"`
}

type recordPage struct {
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
	Records []recordJSON `json:"records"`
}

func toRecordJSON(r model.Record) recordJSON {
	out := recordJSON{
		Program:       r.Program,
		Recipient:     r.Recipient,
		IDNumber:      r.IDNumber,
		City:          r.City,
		Subprogram:    r.Subprogram,
		FundingSource: r.FundingSource,
		Amount:        r.Amount,
		Duration:      r.Duration,
		Year:          r.Year,
	}
	if r.HasCluster {
		c := r.Cluster
		out.Cluster = &c
	}
	return out
}

// valueFilters maps record query parameters to exact-match fields.
var valueFilters = map[string]model.Field{
	"city":       model.FieldCity,
	"subprogram": model.FieldSubprogram,
	"funding":    model.FieldFundingSource,
}

func (s *Service) handleRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultRecordLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit = min(limit, maxRecordLimit)

	_, records, ok := s.loadProgram(w, r)
	if !ok {
		return
	}
	records = pipeline.Search(records, r.URL.Query().Get("q"))
	if raw := r.URL.Query().Get("cluster"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid cluster %q", raw))
			return
		}
		records = pipeline.FilterByCluster(records, id)
	}
	for param, field := range valueFilters {
		if v := r.URL.Query().Get(param); v != "" {
			records = pipeline.FilterByValue(records, field, v)
		}
	}

	page := recordPage{Total: len(records), Offset: offset, Limit: limit, Records: []recordJSON{}}
	if offset < len(records) {
		end := min(offset+limit, len(records))
		for _, rec := range records[offset:end] {
			page.Records = append(page.Records, toRecordJSON(rec))
		}
	}
	writeJSON(w, http.StatusOK, page)
}

type clusterInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Records int    `json:"records"`
}

type clusterList struct {
	Program     model.Program `json:"program"`
	Explanation string        `json:"explanation"`
	Clusters    []clusterInfo `json:"clusters"`
}

func (s *Service) handleClusters(w http.ResponseWriter, r *http.Request) {
	p, records, ok := s.loadProgram(w, r)
	if !ok {
		return
	}

	out := clusterList{Program: p, Explanation: s.cfg.Catalog.Explanation(p), Clusters: []clusterInfo{}}
	for _, l := range s.cfg.Catalog.Labels(p, pipeline.ClusterIDs(records)) {
		out.Clusters = append(out.Clusters, clusterInfo{
			ID:      l.ID,
			Name:    l.Name,
			Records: len(pipeline.FilterByCluster(records, l.ID)),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type clusterSummary struct {
	Program     model.Program  `json:"program"`
	Cluster     int            `json:"cluster"`
	Name        string         `json:"name"`
	Explanation string         `json:"explanation"`
	Summary     profile.Table  `json:"summary"`
	Detail      profile.Detail `json:"detail"`
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid cluster id %q", r.PathValue("id")))
		return
	}
	p, records, ok := s.loadProgram(w, r)
	if !ok {
		return
	}

	subset := pipeline.FilterByCluster(records, id)
	writeJSON(w, http.StatusOK, clusterSummary{
		Program:     p,
		Cluster:     id,
		Name:        s.cfg.Catalog.DisplayName(p, id),
		Explanation: s.cfg.Catalog.Explanation(p),
		Summary:     profile.SummarizeCluster(subset),
		Detail:      profile.Describe(subset),
	})
}
