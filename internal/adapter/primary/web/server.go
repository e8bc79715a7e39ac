package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fxapply/internal/adapter/secondary/numfmt"
	"fxapply/internal/adapter/secondary/report"
	"fxapply/internal/adapter/secondary/repository"
	"fxapply/internal/domain"
	"fxapply/internal/logging"
	"fxapply/internal/usecase"
)

// EffectLister lists the registered effects.
type EffectLister interface {
	List() []domain.EffectMeta
}

// Workspace is the project selection the API reads and edits.
type Workspace interface {
	domain.SelectionController
	domain.SpectralSelection
	domain.ProjectInfo
	SelectTime(w domain.TimeWindow, tracks []domain.TrackID)
	SelectClips(keys []domain.ClipKey) error
	SetFrequencySelection(b domain.FrequencyBounds)
}

// HistoryReader lists recorded history entries, newest first.
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]repository.HistoryEntry, error)
}

// Dependencies wires the server to the use case and the project.
type Dependencies struct {
	UseCase   usecase.EffectExecutionUseCase
	Effects   EffectLister
	Selection Workspace
	History   HistoryReader
	// Reports collects the errors the use case shows during a request.
	Reports *report.Recorder
	Formats numfmt.Provider
	// Save persists the project after a successful change. Optional.
	Save func() error
}

// Server is a primary adapter that exposes HTTP API + UI.
// It depends on the use case (primary port).
type Server struct {
	deps Dependencies
	// mu serializes requests that touch the project.
	mu     sync.Mutex
	server *http.Server
}

// NewServer creates the HTTP server bound to addr.
func NewServer(deps Dependencies, addr string) *Server {
	if deps.Reports == nil {
		deps.Reports = &report.Recorder{}
	}
	srv := &Server{deps: deps}
	srv.server = &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(srv.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// Handler returns the routed handler without the listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/effects", s.handleEffects)
	mux.HandleFunc("/api/apply", s.handleApply)
	mux.HandleFunc("/api/repeat", s.handleRepeat)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/selection", s.handleSelection)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	metas := s.deps.Effects.List()
	views := make([]effectView, 0, len(metas))
	for _, m := range metas {
		views = append(views, effectView{
			ID:              string(m.ID),
			Title:           m.Title,
			Type:            m.Type.String(),
			Interactive:     m.Interactive,
			MultiClip:       m.SupportsMultiClip,
			DefaultDuration: m.DefaultDuration,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"effects": views})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req applyPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Effect == "" {
		http.Error(w, "effect is required", http.StatusBadRequest)
		return
	}
	request := domain.EffectRequest{EffectID: domain.EffectID(req.Effect), Flags: req.flags()}
	s.invoke(w, r, request.EffectID, func(ctx context.Context) error {
		return s.deps.UseCase.PerformRequest(ctx, request)
	})
}

func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id, ok := s.deps.UseCase.LastProcessor()
		view := repeatView{Available: ok, Effect: string(id)}
		if at, ok := s.deps.UseCase.LastProcessorSetAt(); ok {
			view.SetAt = &at
		}
		respondJSON(w, http.StatusOK, view)
	case http.MethodPost:
		id, ok := s.deps.UseCase.LastProcessor()
		if !ok {
			respondJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": "no effect has been applied yet"})
			return
		}
		s.invoke(w, r, id, s.deps.UseCase.RepeatLastProcessor)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// invoke runs one effect invocation with the project locked and answers with
// the outcome and any errors the use case reported. The invocation stops when
// the client goes away.
func (s *Server) invoke(w http.ResponseWriter, r *http.Request, id domain.EffectID, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Reports.Drain()

	err := run(r.Context())
	result := applyResult{
		OK:      err == nil,
		Effect:  string(id),
		Reports: s.deps.Reports.Drain(),
	}
	if err != nil {
		result.Cancelled = domain.IsCancel(err)
		result.Error = err.Error()
		respondJSON(w, statusFor(err), result)
		return
	}

	if win, ok := s.deps.UseCase.LastWindow(id); ok {
		result.Window = s.window(win)
	}
	if s.deps.Save != nil {
		if err := s.deps.Save(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.deps.History.History(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]historyView, 0, len(entries))
	for _, e := range entries {
		views = append(views, historyView{
			ID:          e.ID,
			Description: e.LongDescription,
			Short:       e.ShortDescription,
			CreatedAt:   e.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": views})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		view := s.selectionView()
		s.mu.Unlock()
		respondJSON(w, http.StatusOK, view)
	case http.MethodPut:
		var req selectionPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.applySelection(req); err != nil {
			status := http.StatusBadRequest
			if domain.CodeOf(err) == domain.CodeNotFound {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		if s.deps.Save != nil {
			if err := s.deps.Save(); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		respondJSON(w, http.StatusOK, s.selectionView())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) applySelection(req selectionPayload) error {
	sel := s.deps.Selection
	if len(req.Clips) > 0 {
		keys := make([]domain.ClipKey, 0, len(req.Clips))
		for _, c := range req.Clips {
			key, err := domain.ParseClipKey(c)
			if err != nil {
				return domain.NewError(domain.CodeUnknown, "%v", err)
			}
			keys = append(keys, key)
		}
		return sel.SelectClips(keys)
	}
	if req.End < req.Start {
		return domain.NewError(domain.CodeUnknown, "end (%g) is before start (%g)", req.End, req.Start)
	}
	tracks := make([]domain.TrackID, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		tracks = append(tracks, domain.TrackID(t))
	}
	sel.SelectTime(domain.TimeWindow{Start: req.Start, End: req.End}, tracks)

	bounds := domain.NoFrequencyBounds()
	if req.F0 != nil {
		bounds.F0 = *req.F0
	}
	if req.F1 != nil {
		bounds.F1 = *req.F1
	}
	sel.SetFrequencySelection(bounds)
	return nil
}

func (s *Server) selectionView() selectionView {
	sel := s.deps.Selection
	view := selectionView{Clips: []string{}, Tracks: []string{}}
	for _, k := range sel.SelectedClips() {
		view.Clips = append(view.Clips, k.String())
	}
	for _, t := range sel.SelectedTracks() {
		view.Tracks = append(view.Tracks, string(t))
	}
	if sel.HasSelectedClips() {
		view.Window = s.window(domain.TimeWindow{Start: sel.SelectedClipStartTime(), End: sel.SelectedClipEndTime()})
	} else {
		view.Window = s.window(domain.TimeWindow{Start: sel.DataSelectedStartTime(), End: sel.DataSelectedEndTime()})
	}
	if f := sel.FrequencySelection(); len(f.Controls()) > 0 {
		view.Frequency = &frequencyView{F0: f.F0, F1: f.F1}
	}
	return view
}

func (s *Server) window(w domain.TimeWindow) *windowView {
	format := s.deps.Formats.DefaultSelectionFormat()
	rate := s.deps.Selection.SampleRate()
	return &windowView{
		Start:     w.Start,
		End:       w.End,
		StartText: numfmt.Render(format, w.Start, rate),
		EndText:   numfmt.Render(format, w.End, rate),
	}
}

func statusFor(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeCancel:
		return http.StatusOK
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeEffectBusy:
		return http.StatusConflict
	case domain.CodeNoAudioSelected, domain.CodeMultipleClipSelectionNotSupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warnf("encode JSON: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	log := logging.For("web")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
