// Package devserver is a local stand-in for the course platform API. It serves
// YAML fixtures and keeps each viewer's progress in SQLite.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	hclog "github.com/hashicorp/go-hclog"

	"courseplay/internal/platform/apiclient"
	"courseplay/internal/platform/clock"
)

type Options struct {
	Courses []apiclient.CourseDoc
	Store   *Store
	// Token, when set, must arrive as a bearer token.
	Token  string
	Clock  clock.Clock
	Logger hclog.Logger
}

type Server struct {
	courses  map[string]apiclient.CourseDoc
	videos   map[string]struct{}
	sections map[string]struct{}
	store    *Store
	token    string
	clock    clock.Clock
	logger   hclog.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("devserver: store is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	s := &Server{
		courses:  map[string]apiclient.CourseDoc{},
		videos:   map[string]struct{}{},
		sections: map[string]struct{}{},
		store:    opts.Store,
		token:    opts.Token,
		clock:    opts.Clock,
		logger:   opts.Logger.Named("devserver"),
	}
	for _, course := range opts.Courses {
		if _, dup := s.courses[course.ID]; dup {
			return nil, fmt.Errorf("devserver: duplicate course id %q", course.ID)
		}
		s.courses[course.ID] = course
		for _, section := range course.Sections {
			s.sections[section.ID] = struct{}{}
			for _, video := range section.Videos {
				s.videos[video.ID] = struct{}{}
			}
		}
	}
	return s, nil
}

// Handler returns the API under /api wrapped with access logging and
// panic recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/courses/{courseId}", s.courseHandler).Methods(http.MethodGet)
	api.HandleFunc("/progress/{videoId}", s.progressHandler).Methods(http.MethodPut)
	api.HandleFunc("/sections/{sectionId}/seen", s.sectionSeenHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	access := s.logger.StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Info})
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(
		handlers.CombinedLoggingHandler(access, handlers.CompressHandler(r)),
	)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr, "courses", len(s.courses))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type viewerKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		viewer := strings.TrimSpace(r.Header.Get(apiclient.HeaderViewer))
		if viewer == "" {
			writeError(w, http.StatusUnauthorized, "missing "+apiclient.HeaderViewer)
			return
		}
		if id := r.Header.Get(apiclient.HeaderRequestID); id != "" {
			w.Header().Set(apiclient.HeaderRequestID, id)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewerKey{}, viewer)))
	})
}

func viewerFrom(r *http.Request) string {
	viewer, _ := r.Context().Value(viewerKey{}).(string)
	return viewer
}

func (s *Server) courseHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	course, ok := s.courses[vars["courseId"]]
	if !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	viewer := viewerFrom(r)
	progress, err := s.store.Progress(r.Context(), viewer)
	if err != nil {
		s.serverError(w, "load progress", err)
		return
	}
	seen, err := s.store.SeenSections(r.Context(), viewer)
	if err != nil {
		s.serverError(w, "load seen sections", err)
		return
	}
	writeJSON(w, http.StatusOK, personalize(course, progress, seen))
}

func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]
	if _, ok := s.videos[videoID]; !ok {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	var update apiclient.ProgressUpdateDoc
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if update.LastPosition < 0 || math.IsNaN(update.LastPosition) ||
		update.Percentage < 0 || update.Percentage > 100 || math.IsNaN(update.Percentage) {
		writeError(w, http.StatusUnprocessableEntity, "position or percentage out of range")
		return
	}
	saved, err := s.store.SaveProgress(r.Context(), viewerFrom(r), videoID, update, s.clock.Now())
	if err != nil {
		s.serverError(w, "save progress", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) sectionSeenHandler(w http.ResponseWriter, r *http.Request) {
	sectionID := mux.Vars(r)["sectionId"]
	if _, ok := s.sections[sectionID]; !ok {
		writeError(w, http.StatusNotFound, "section not found")
		return
	}
	if err := s.store.MarkSeen(r.Context(), viewerFrom(r), sectionID, s.clock.Now()); err != nil {
		s.serverError(w, "mark section seen", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// personalize overlays one viewer's state on a course. Sections stay new
// until the viewer has acknowledged them.
func personalize(course apiclient.CourseDoc, progress map[string]apiclient.ProgressDoc, seen map[string]bool) apiclient.CourseDoc {
	out := course
	out.Sections = make([]apiclient.SectionDoc, len(course.Sections))
	for i, section := range course.Sections {
		section.IsNew = section.IsNew && !seen[section.ID]
		videos := make([]apiclient.VideoDoc, len(section.Videos))
		for j, video := range section.Videos {
			if p, ok := progress[video.ID]; ok {
				video.Progress = &p
			}
			videos[j] = video
		}
		section.Videos = videos
		out.Sections[i] = section
	}
	return out
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiclient.ErrorBody{Error: msg})
}
