// Package server provides the read-only HTTP API over the program extracts.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr    string
	Loader  *pipeline.Loader
	Catalog *profile.Catalog
	// Memory is the in-process cache dropped entry by entry when extracts change.
	Memory       *pipeline.MemoryCache
	Logger       *log.Logger
	Watch        bool
	EventsBuffer int
}

// Event is emitted whenever a watched extract changes.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Program   model.Program `json:"program,omitempty"`
	Path      string        `json:"path"`
	Op        string        `json:"op"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	DataDir          string    `json:"data_dir"`
	ProgramsPresent  int       `json:"programs_present"`
	Watching         bool      `json:"watching"`
	Invalidations    int64     `json:"invalidations"`
	LastInvalidation time.Time `json:"last_invalidation,omitzero"`
	CacheEntries     int       `json:"cache_entries"`
	LastError        string    `json:"last_error,omitempty"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
}

// Service provides the HTTP API.
type Service struct {
	cfg     Config
	log     *log.Logger
	metrics *metrics

	mu               sync.RWMutex
	startedAt        time.Time
	watching         bool
	invalidations    int64
	lastInvalidation time.Time
	lastError        string
	nextEventID      int64
	events           []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8642"
	}
	if cfg.Loader == nil {
		cfg.Loader = pipeline.NewLoader(".")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = profile.DefaultCatalog()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Service{
		cfg:       cfg,
		log:       logger.WithPrefix("server"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.metrics = newMetrics(prometheus.NewRegistry(), s.cacheEntries)
	return s
}

// Run serves HTTP and, when enabled, watches the data directory until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.cfg.Watch {
		w, err := s.startWatcher()
		if err != nil {
			s.log.Warn("file watching disabled", "err", err)
			s.setError(err)
		} else {
			defer func() { _ = w.Close() }()
			go func() {
				if err := s.watch(ctx, w); err != nil {
					errCh <- err
				}
			}()
		}
	}

	s.log.Info("listening", "addr", s.cfg.Addr, "data_dir", s.cfg.Loader.DataDir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) cacheEntries() int {
	if s.cfg.Memory == nil {
		return 0
	}
	return s.cfg.Memory.Len()
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	present := pipelinePresent(s.cfg.Loader)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:        s.startedAt,
		DataDir:          s.cfg.Loader.DataDir,
		ProgramsPresent:  present,
		Watching:         s.watching,
		Invalidations:    s.invalidations,
		LastInvalidation: s.lastInvalidation,
		CacheEntries:     s.cacheEntries(),
		LastError:        s.lastError,
		EventCount:       len(s.events),
		SubscriberCount:  len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
