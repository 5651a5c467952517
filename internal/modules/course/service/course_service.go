package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"courseplay/internal/modules/course/domain"
	courseout "courseplay/internal/modules/course/port/out"
	"courseplay/internal/platform/clock"
	apperrors "courseplay/internal/platform/errors"
)

type entry struct {
	snapshot domain.Snapshot
	invalid  bool
	// seq counts invalidations; applied is the seq of the fetch on display.
	seq     uint64
	applied uint64
}

// fetched is a flight's result tagged with the invalidation seq read when the
// fetch started. Every caller sharing the flight sees the same seq.
type fetched struct {
	course domain.Course
	seq    uint64
}

// CourseService is a stale-while-revalidate cache of course trees keyed by id.
type CourseService struct {
	clock    clock.Clock
	fetcher  courseout.CourseFetcher
	store    courseout.SnapshotStore
	logger   hclog.Logger
	viewerID string

	group singleflight.Group
	bg    sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]map[int]func(domain.Snapshot)
	nextSub int
}

func NewCourseService(
	clk clock.Clock,
	fetcher courseout.CourseFetcher,
	store courseout.SnapshotStore,
	logger hclog.Logger,
	viewerID string,
) *CourseService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CourseService{
		clock:    clk,
		fetcher:  fetcher,
		store:    store,
		logger:   logger.Named("course"),
		viewerID: viewerID,
		entries:  map[string]*entry{},
		subs:     map[string]map[int]func(domain.Snapshot){},
	}
}

// Load returns cached data when present and fetches otherwise. An absent id
// never reaches the network.
func (s *CourseService) Load(ctx context.Context, courseID string) (domain.Snapshot, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return domain.Snapshot{State: domain.StateNoData}, nil
	}

	s.mu.Lock()
	current, ok := s.entries[courseID]
	if ok && current.snapshot.HasData() {
		snap := current.snapshot
		revalidate := current.invalid && !snap.Refreshing
		s.mu.Unlock()
		if revalidate {
			s.refreshInBackground(courseID)
		}
		return snap, nil
	}
	s.mu.Unlock()

	return s.Refresh(ctx, courseID)
}

// Refresh refetches a course. Data already on display stays visible while the
// request is in flight; a failure over existing data keeps the stale view.
func (s *CourseService) Refresh(ctx context.Context, courseID string) (domain.Snapshot, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return domain.Snapshot{State: domain.StateNoData}, nil
	}

	s.update(courseID, func(snap *domain.Snapshot) {
		if snap.HasData() {
			snap.Stale = true
			snap.Refreshing = true
			return
		}
		snap.State = domain.StateLoading
		snap.Err = nil
	})

	result, err, _ := s.group.Do(courseID, func() (any, error) {
		seq := s.currentSeq(courseID)
		course, err := s.fetch(ctx, courseID)
		return fetched{course: course, seq: seq}, err
	})
	res, _ := result.(fetched)
	if err == nil {
		now := s.clock.Now()
		snap, ok := s.apply(courseID, res, now)
		if ok {
			s.persist(res.course, now)
		}
		return snap, nil
	}

	var (
		snap    domain.Snapshot
		swallow bool
	)
	s.mu.Lock()
	if current, ok := s.entries[courseID]; ok && current.snapshot.HasData() {
		swallow = true
	}
	s.mu.Unlock()

	if swallow {
		s.logger.Warn("course refresh failed, keeping stale data", "course_id", courseID, "error", err)
		snap = s.update(courseID, func(snap *domain.Snapshot) {
			snap.Stale = true
			snap.Refreshing = false
		}, settled(res.seq))
		return snap, nil
	}

	if course, fetchedAt, ok := s.offline(ctx, courseID); ok {
		s.logger.Warn("course fetch failed, using offline copy", "course_id", courseID, "error", err)
		snap = s.update(courseID, func(snap *domain.Snapshot) {
			*snap = domain.Snapshot{CourseID: courseID, State: domain.StateReady, Course: course, Stale: true, FetchedAt: fetchedAt}
		})
		return snap, nil
	}

	snap = s.update(courseID, func(snap *domain.Snapshot) {
		*snap = domain.Snapshot{CourseID: courseID, State: domain.StateError, Err: err}
	})
	return snap, err
}

// Invalidate marks the cached course stale and revalidates it in the background.
func (s *CourseService) Invalidate(courseID string) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return
	}
	s.mu.Lock()
	if current, ok := s.entries[courseID]; ok {
		current.invalid = true
		current.seq++
	}
	// A flight that started before this call may have read pre-mutation data;
	// later callers must not join it.
	s.group.Forget(courseID)
	s.mu.Unlock()
	s.refreshInBackground(courseID)
}

// Peek returns the current snapshot without fetching.
func (s *CourseService) Peek(courseID string) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.entries[courseID]; ok {
		return current.snapshot
	}
	if strings.TrimSpace(courseID) == "" {
		return domain.Snapshot{State: domain.StateNoData}
	}
	return domain.Snapshot{CourseID: courseID, State: domain.StateNoData}
}

// Subscribe registers fn for every snapshot change of courseID.
func (s *CourseService) Subscribe(courseID string, fn func(domain.Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	key := s.nextSub
	if s.subs[courseID] == nil {
		s.subs[courseID] = map[int]func(domain.Snapshot){}
	}
	s.subs[courseID][key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[courseID], key)
	}
}

// Wait blocks until background refreshes have finished.
func (s *CourseService) Wait() {
	s.bg.Wait()
}

func (s *CourseService) refreshInBackground(courseID string) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		_, _ = s.Refresh(context.Background(), courseID)
	}()
}

func (s *CourseService) fetch(ctx context.Context, courseID string) (domain.Course, error) {
	if s.fetcher == nil {
		return domain.Course{}, fmt.Errorf("course fetcher is not configured")
	}
	course, err := s.fetcher.FetchCourse(ctx, courseID, s.viewerID)
	if err != nil {
		return domain.Course{}, fmt.Errorf("fetch course %s: %w", courseID, err)
	}
	if course.ID == "" {
		course.ID = courseID
	}
	course = course.Normalize()
	if err := course.Validate(); err != nil {
		return domain.Course{}, fmt.Errorf("%w: course %s: %v", apperrors.ErrInvalidInput, courseID, err)
	}
	return course, nil
}

func (s *CourseService) persist(course domain.Course, fetchedAt time.Time) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.Background(), course, fetchedAt); err != nil {
		s.logger.Warn("persist course snapshot failed", "course_id", course.ID, "error", err)
	}
}

func (s *CourseService) offline(ctx context.Context, courseID string) (domain.Course, time.Time, bool) {
	if s.store == nil {
		return domain.Course{}, time.Time{}, false
	}
	course, fetchedAt, err := s.store.Load(ctx, courseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("load offline course failed", "course_id", courseID, "error", err)
		}
		return domain.Course{}, time.Time{}, false
	}
	return course, fetchedAt, true
}

type entryOption func(*entry)

// settled clears the invalid flag unless another invalidation arrived while
// the fetch tagged seq was in flight.
func settled(seq uint64) entryOption {
	return func(e *entry) {
		if e.seq == seq {
			e.invalid = false
		}
	}
}

func (s *CourseService) currentSeq(courseID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.entries[courseID]; ok {
		return current.seq
	}
	return 0
}

// apply installs a fetched course unless a fetch that started later has
// already been applied. ok is false when res was dropped as outdated.
func (s *CourseService) apply(courseID string, res fetched, now time.Time) (domain.Snapshot, bool) {
	snap, ok := s.mutate(courseID, func(e *entry) bool {
		if res.seq < e.applied {
			return false
		}
		e.snapshot = domain.Snapshot{CourseID: courseID, State: domain.StateReady, Course: res.course, FetchedAt: now}
		e.applied = res.seq
		settled(res.seq)(e)
		// A newer fetch is still on its way.
		e.snapshot.Stale = e.invalid
		e.snapshot.Refreshing = e.invalid
		return true
	})
	if !ok {
		s.logger.Debug("dropping outdated course fetch", "course_id", courseID, "seq", res.seq)
	}
	return snap, ok
}

// update applies fn to the entry under lock and notifies subscribers after
// releasing it.
func (s *CourseService) update(courseID string, fn func(*domain.Snapshot), opts ...entryOption) domain.Snapshot {
	snap, _ := s.mutate(courseID, func(e *entry) bool {
		fn(&e.snapshot)
		e.snapshot.CourseID = courseID
		for _, opt := range opts {
			opt(e)
		}
		return true
	})
	return snap
}

// mutate runs fn on the entry under lock. Subscribers hear about the result
// only when fn reports a change.
func (s *CourseService) mutate(courseID string, fn func(*entry) bool) (domain.Snapshot, bool) {
	s.mu.Lock()
	current, ok := s.entries[courseID]
	if !ok {
		current = &entry{snapshot: domain.Snapshot{CourseID: courseID, State: domain.StateNoData}}
		s.entries[courseID] = current
	}
	changed := fn(current)
	snap := current.snapshot
	if !changed {
		s.mu.Unlock()
		return snap, false
	}
	listeners := make([]func(domain.Snapshot), 0, len(s.subs[courseID]))
	for _, fn := range s.subs[courseID] {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snap)
	}
	return snap, true
}
