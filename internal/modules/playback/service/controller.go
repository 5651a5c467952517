package service

import (
	"context"
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"courseplay/internal/modules/playback/domain"
	playbackout "courseplay/internal/modules/playback/port/out"
	apperrors "courseplay/internal/platform/errors"
)

// anyGeneration disables the surface generation check for direct callers.
const anyGeneration = -1

// Controller drives one playback session at a time. Transitions are
// serialized under mu; their effects run after the lock is released.
// Progress and completion writes leave in the order they were requested.
type Controller struct {
	courses   playbackout.CourseSource
	progress  playbackout.ProgressReporter
	sections  playbackout.SectionAcknowledger
	navigator playbackout.Navigator
	notifier  playbackout.Notifier
	surface   playbackout.Surface
	logger    hclog.Logger

	inflight sync.WaitGroup

	mu          sync.Mutex
	session     *domain.Session
	courseID    string
	location    domain.Location
	unsubscribe func()
	writeTail   chan struct{}
	playback    playbackout.Playback
	generation  int
	autoplay    bool
	position    float64
	percent     float64
}

func NewController(
	courses playbackout.CourseSource,
	progress playbackout.ProgressReporter,
	sections playbackout.SectionAcknowledger,
	navigator playbackout.Navigator,
	notifier playbackout.Notifier,
	surface playbackout.Surface,
	logger hclog.Logger,
) *Controller {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Controller{
		courses:   courses,
		progress:  progress,
		sections:  sections,
		navigator: navigator,
		notifier:  notifier,
		surface:   surface,
		logger:    logger.Named("playback"),
	}
}

// Open starts a session for courseID. An empty id leaves the session in
// Resolving without touching the network.
func (c *Controller) Open(ctx context.Context, courseID, requestedVideoID string, autoplay bool) (domain.View, error) {
	c.detach()

	course, ok, err := c.courses.Load(ctx, courseID)
	if err != nil {
		return domain.View{State: domain.StateResolving}, fmt.Errorf("load course %s: %w", courseID, err)
	}

	session := domain.NewSession()
	var effects []domain.Effect
	if ok {
		if effects, err = session.Resolve(course, requestedVideoID); err != nil {
			return domain.View{State: domain.StateResolving}, err
		}
	}

	c.mu.Lock()
	c.session = session
	c.courseID = courseID
	c.location = domain.NewLocation(courseID, requestedVideoID)
	c.autoplay = autoplay
	c.position, c.percent = session.ResumePosition(), 0
	loc := c.location
	c.mu.Unlock()

	if courseID != "" {
		if err := c.navigator.Push(ctx, loc); err != nil {
			c.logger.Warn("push location failed", "location", loc.String(), "error", err)
		}
		unsubscribe := c.courses.Subscribe(courseID, c.applyCourse)
		c.mu.Lock()
		c.unsubscribe = unsubscribe
		c.mu.Unlock()
	}

	c.dispatch(ctx, effects)
	c.restartSurface()
	return c.View()
}

// Navigate follows a location. A location for the course already open only
// re-derives the active video; any other course is opened afresh.
func (c *Controller) Navigate(ctx context.Context, raw string, autoplay bool) (domain.View, error) {
	loc, err := domain.ParseLocation(raw)
	if err != nil {
		return domain.View{}, err
	}
	c.mu.Lock()
	sameCourse := c.session != nil && c.courseID == loc.CourseID()
	c.mu.Unlock()
	if sameCourse {
		return c.RequestVideo(ctx, loc.VideoID())
	}
	return c.Open(ctx, loc.CourseID(), loc.VideoID(), autoplay)
}

// Resume reopens the last location recorded by the navigator.
func (c *Controller) Resume(ctx context.Context, autoplay bool) (domain.View, error) {
	loc, err := c.navigator.Current(ctx)
	if err != nil {
		return domain.View{}, err
	}
	return c.Open(ctx, loc.CourseID(), loc.VideoID(), autoplay)
}

// RequestVideo applies an externally changed requested video id.
func (c *Controller) RequestVideo(_ context.Context, videoID string) (domain.View, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoSession
	}
	changed := c.session.Rederive(videoID)
	if changed {
		c.location = c.location.WithVideo(videoID)
	}
	c.mu.Unlock()

	if changed {
		c.restartSurface()
	}
	return c.View()
}

func (c *Controller) SelectVideo(ctx context.Context, videoID string) (domain.View, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoSession
	}
	effects, err := c.session.SelectVideo(videoID)
	c.mu.Unlock()
	if err != nil {
		return domain.View{}, err
	}
	if len(effects) == 0 {
		return c.View()
	}
	c.dispatch(ctx, effects)
	c.restartSurface()
	return c.View()
}

// ReportProgress records a surface sample for the active video.
func (c *Controller) ReportProgress(ctx context.Context, seconds, percent float64) (domain.View, error) {
	if err := c.reportProgress(ctx, anyGeneration, seconds, percent); err != nil {
		return domain.View{}, err
	}
	return c.View()
}

// ReportEnded completes the active video and moves on to the next one.
func (c *Controller) ReportEnded(ctx context.Context) (domain.View, error) {
	if err := c.reportEnded(ctx, anyGeneration); err != nil {
		return domain.View{}, err
	}
	return c.View()
}

func (c *Controller) ToggleSection(ctx context.Context, sectionID string) (domain.View, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoSession
	}
	effects, err := c.session.ToggleSection(sectionID)
	c.mu.Unlock()
	if err != nil {
		return domain.View{}, err
	}
	c.dispatch(ctx, effects)
	return c.View()
}

func (c *Controller) ToggleDescription() (domain.View, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoSession
	}
	c.session.ToggleDescription()
	c.mu.Unlock()
	return c.View()
}

func (c *Controller) View() (domain.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.View{}, apperrors.ErrNoSession
	}
	view := c.session.View()
	view.Location = c.location.String()
	view.Position = c.position
	view.Percent = c.percent
	view.Playing = c.playback != nil
	return view, nil
}

// Back leaves the course page and returns the previous location, if any.
func (c *Controller) Back(ctx context.Context) (domain.Location, error) {
	c.detach()
	return c.navigator.Back(ctx)
}

// Close ends the session and waits for outstanding writes.
func (c *Controller) Close() {
	c.detach()
	c.Wait()
}

// Wait blocks until dispatched writes and surface pumps have finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// ─── surface events ──────────────────────────────────────────────────────────

func (c *Controller) reportProgress(ctx context.Context, gen int, seconds, percent float64) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return apperrors.ErrNoSession
	}
	if gen != anyGeneration && gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	effects, err := c.session.ReportProgress(seconds, percent)
	if err == nil {
		c.position, c.percent = seconds, percent
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.dispatch(ctx, effects)
	return nil
}

func (c *Controller) reportEnded(ctx context.Context, gen int) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return apperrors.ErrNoSession
	}
	if gen != anyGeneration && gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	before := c.session.ActiveIndex()
	effects, err := c.session.ReportEnded()
	advanced := err == nil && c.session.ActiveIndex() != before
	if err == nil && !advanced {
		c.percent = 100
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.dispatch(ctx, effects)
	if advanced {
		c.restartSurface()
	} else {
		c.stopSurface()
	}
	return nil
}

func (c *Controller) restartSurface() {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	old := c.playback
	c.playback = nil
	var activeID string
	var req *domain.MediaRequest
	if c.session != nil {
		if active, ok := c.session.Active(); ok {
			activeID = active.ID
			if c.autoplay && c.surface != nil {
				req = &domain.MediaRequest{
					VideoID:       active.ID,
					MediaRef:      active.MediaRef,
					StartPosition: c.session.ResumePosition(),
					Duration:      active.Duration,
				}
				c.position, c.percent = req.StartPosition, 0
			}
		}
	}
	c.mu.Unlock()

	// Lift the completion latch before any sample of this playthrough is queued.
	if activeID != "" {
		c.reopen(activeID)
	}
	if old != nil {
		_ = old.Stop()
	}
	if req == nil {
		return
	}
	pb, err := c.surface.Start(context.Background(), *req)
	if err != nil {
		c.logger.Warn("start video surface failed", "video_id", req.VideoID, "error", err)
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		_ = pb.Stop()
		return
	}
	c.playback = pb
	c.inflight.Add(1)
	c.mu.Unlock()
	go c.pump(gen, pb)
}

func (c *Controller) stopSurface() {
	c.mu.Lock()
	c.generation++
	old := c.playback
	c.playback = nil
	c.mu.Unlock()
	if old != nil {
		_ = old.Stop()
	}
}

func (c *Controller) pump(gen int, pb playbackout.Playback) {
	defer c.inflight.Done()
	ctx := context.Background()
	for ev := range pb.Events() {
		switch ev.Kind {
		case domain.SurfaceProgress:
			if err := c.reportProgress(ctx, gen, ev.Seconds, ev.Percent); err != nil {
				c.logger.Debug("surface sample ignored", "error", err)
			}
		case domain.SurfaceEnded:
			if err := c.reportEnded(ctx, gen); err != nil {
				c.logger.Debug("surface end ignored", "error", err)
			}
			return
		}
	}
}

// ─── effects ─────────────────────────────────────────────────────────────────

func (c *Controller) dispatch(ctx context.Context, effects []domain.Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case domain.EffectNavigate:
			c.mu.Lock()
			c.location = c.location.WithVideo(effect.VideoID)
			loc := c.location
			c.mu.Unlock()
			if err := c.navigator.Replace(ctx, loc); err != nil {
				c.logger.Warn("replace location failed", "location", loc.String(), "error", err)
			}

		case domain.EffectReportProgress:
			c.enqueueWrite(func() {
				if err := c.progress.Report(context.Background(), effect.VideoID, effect.Seconds, effect.Percent); err != nil {
					c.logger.Warn("progress report failed", "video_id", effect.VideoID, "percentage", effect.Percent, "error", err)
				}
				if effect.RefreshCourse {
					c.courses.Invalidate(effect.CourseID)
				}
			})

		case domain.EffectComplete:
			c.enqueueWrite(func() {
				if err := c.progress.Complete(context.Background(), effect.VideoID); err != nil {
					c.logger.Warn("completion report failed", "video_id", effect.VideoID, "error", err)
				}
				if effect.RefreshCourse {
					c.courses.Invalidate(effect.CourseID)
				}
			})

		case domain.EffectMarkSectionSeen:
			c.inflight.Add(1)
			go func() {
				defer c.inflight.Done()
				if err := c.sections.MarkSeen(context.Background(), effect.SectionID); err != nil {
					c.logger.Warn("mark section seen failed", "section_id", effect.SectionID, "error", err)
				}
			}()

		case domain.EffectNotify:
			c.logger.Info("notice", "kind", string(effect.Notice.Kind), "video_id", effect.Notice.VideoID, "next_video_id", effect.Notice.NextVideoID)
			if c.notifier != nil {
				c.notifier.Notify(ctx, effect.Notice)
			}
		}
	}
}

func (c *Controller) reopen(videoID string) {
	c.enqueueWrite(func() { c.progress.Reopen(videoID) })
}

// enqueueWrite runs fn after every previously enqueued write, without
// blocking the caller.
func (c *Controller) enqueueWrite(fn func()) {
	done := make(chan struct{})
	c.mu.Lock()
	prev := c.writeTail
	c.writeTail = done
	c.inflight.Add(1)
	c.mu.Unlock()
	go func() {
		defer c.inflight.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		fn()
	}()
}

func (c *Controller) applyCourse(course domain.Course) {
	c.mu.Lock()
	if c.session == nil || (course.ID != "" && course.ID != c.courseID) {
		c.mu.Unlock()
		return
	}
	before, _ := c.session.Active()
	effects := c.session.Sync(course)
	after, _ := c.session.Active()
	c.mu.Unlock()

	c.dispatch(context.Background(), effects)
	if before.ID != after.ID {
		c.restartSurface()
	}
}

func (c *Controller) detach() {
	c.stopSurface()
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.session = nil
	c.courseID = ""
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
