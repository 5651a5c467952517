package domain_test

import (
	"errors"
	"testing"

	"courseplay/internal/modules/playback/domain"
	apperrors "courseplay/internal/platform/errors"
)

// S1: {v1 done, v2 not}, S2: {v3}
func sampleCourse() domain.Course {
	return domain.Course{
		ID:    "c-1",
		Title: "Go in practice",
		Sections: []domain.Section{
			{ID: "s1", Title: "Basics", Videos: []domain.Video{
				{ID: "v1", Title: "Intro", Duration: 60, Progress: &domain.Progress{Completed: true, LastPosition: 60, Percentage: 100}},
				{ID: "v2", Title: "Types", Duration: 120, Progress: &domain.Progress{LastPosition: 42, Percentage: 35}},
			}},
			{ID: "s2", Title: "Concurrency", IsNew: true, Videos: []domain.Video{
				{ID: "v3", Title: "Channels", Duration: 90},
			}},
		},
	}
}

func resolved(t *testing.T, requested string) (*domain.Session, []domain.Effect) {
	t.Helper()
	session := domain.NewSession()
	effects, err := session.Resolve(sampleCourse(), requested)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return session, effects
}

func activeID(t *testing.T, session *domain.Session) string {
	t.Helper()
	video, ok := session.Active()
	if !ok {
		t.Fatalf("session has no active video (state %s)", session.State())
	}
	return video.ID
}

func kinds(effects []domain.Effect) []domain.EffectKind {
	out := make([]domain.EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func TestResolveStartsAtFirstUnfinishedVideo(t *testing.T) {
	t.Parallel()
	session, effects := resolved(t, "")
	if got := activeID(t, session); got != "v2" {
		t.Fatalf("active = %s, want v2", got)
	}
	if session.ResumePosition() != 42 {
		t.Fatalf("resume = %v, want 42", session.ResumePosition())
	}
	if len(effects) != 1 || effects[0].Kind != domain.EffectNavigate || effects[0].VideoID != "v2" {
		t.Fatalf("expected a navigate to v2, got %+v", effects)
	}
	if !session.IsExpanded("s1") || !session.IsExpanded("s2") {
		t.Fatalf("all sections should start expanded")
	}
}

func TestResolveHonoursDeepLink(t *testing.T) {
	t.Parallel()
	session, effects := resolved(t, "v3")
	if got := activeID(t, session); got != "v3" {
		t.Fatalf("active = %s, want v3", got)
	}
	if len(effects) != 0 {
		t.Fatalf("deep link already names the video, got %+v", effects)
	}
	if session.ResumePosition() != 0 {
		t.Fatalf("video without progress must resume at 0")
	}
}

func TestResolveIgnoresUnknownDeepLink(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "nope")
	if got := activeID(t, session); got != "v2" {
		t.Fatalf("active = %s, want v2", got)
	}
}

func TestResolveFallsBackToFirstVideoWhenAllDone(t *testing.T) {
	t.Parallel()
	course := sampleCourse()
	for si := range course.Sections {
		for vi := range course.Sections[si].Videos {
			course.Sections[si].Videos[vi].Progress = &domain.Progress{Completed: true, LastPosition: 10, Percentage: 100}
		}
	}
	session := domain.NewSession()
	if _, err := session.Resolve(course, ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := activeID(t, session); got != "v1" {
		t.Fatalf("active = %s, want v1", got)
	}
	if session.ResumePosition() != 0 {
		t.Fatalf("completed video must resume at 0, got %v", session.ResumePosition())
	}
}

func TestResolveEmptyCourse(t *testing.T) {
	t.Parallel()
	session := domain.NewSession()
	effects, err := session.Resolve(domain.Course{ID: "c-1", Sections: []domain.Section{{ID: "s1"}}}, "v1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if session.State() != domain.StateEmpty || len(effects) != 0 {
		t.Fatalf("expected empty session without effects, got %s %+v", session.State(), effects)
	}
	if _, err := session.SelectVideo("v1"); !errors.Is(err, apperrors.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestOperationsBeforeResolveAreRejected(t *testing.T) {
	t.Parallel()
	session := domain.NewSession()
	if _, err := session.ReportProgress(1, 1); !errors.Is(err, apperrors.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, err := session.ReportEnded(); !errors.Is(err, apperrors.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestSelectActiveVideoIsIdempotent(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	effects, err := session.SelectVideo("v2")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(effects) != 0 {
		t.Fatalf("selecting the active video must not navigate, got %+v", effects)
	}
}

func TestSelectVideoExpandsItsSection(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	if _, err := session.ToggleSection("s2"); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if session.IsExpanded("s2") {
		t.Fatalf("s2 should be collapsed")
	}
	effects, err := session.SelectVideo("v3")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !session.IsExpanded("s2") {
		t.Fatalf("selecting v3 must expand s2")
	}
	if len(effects) != 1 || effects[0].Kind != domain.EffectNavigate || effects[0].VideoID != "v3" {
		t.Fatalf("expected navigate to v3, got %+v", effects)
	}
}

func TestSelectUnknownVideo(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	if _, err := session.SelectVideo("v9"); !errors.Is(err, apperrors.ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if got := activeID(t, session); got != "v2" {
		t.Fatalf("active changed to %s", got)
	}
}

func TestReportProgressCapturesActiveVideo(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	effects, err := session.ReportProgress(50, 41.6)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(effects) != 1 || effects[0].VideoID != "v2" || effects[0].RefreshCourse {
		t.Fatalf("unexpected effects: %+v", effects)
	}
	effects, _ = session.ReportProgress(120, 100)
	if !effects[0].RefreshCourse {
		t.Fatalf("a sample at 100 percent must refresh the course")
	}
}

func TestReportEndedAdvancesToNextSection(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	_, _ = session.ToggleSection("s2")

	effects, err := session.ReportEnded()
	if err != nil {
		t.Fatalf("ended: %v", err)
	}
	want := []domain.EffectKind{domain.EffectComplete, domain.EffectNavigate, domain.EffectNotify}
	got := kinds(effects)
	if len(got) != len(want) {
		t.Fatalf("effects = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("effects = %v, want %v", got, want)
		}
	}
	if effects[0].VideoID != "v2" || !effects[0].RefreshCourse {
		t.Fatalf("completion should target v2 and refresh: %+v", effects[0])
	}
	if effects[2].Notice.Kind != domain.NoticeLessonFinished || effects[2].Notice.NextVideoID != "v3" {
		t.Fatalf("unexpected notice: %+v", effects[2].Notice)
	}
	if got := activeID(t, session); got != "v3" {
		t.Fatalf("active = %s, want v3", got)
	}
	if !session.IsExpanded("s2") {
		t.Fatalf("advancing into s2 must expand it")
	}
}

func TestReportEndedOnLastVideoStays(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "v3")
	effects, err := session.ReportEnded()
	if err != nil {
		t.Fatalf("ended: %v", err)
	}
	if len(effects) != 2 || effects[0].Kind != domain.EffectComplete || effects[0].VideoID != "v3" {
		t.Fatalf("unexpected effects: %+v", effects)
	}
	if effects[1].Notice.Kind != domain.NoticeCourseFinished {
		t.Fatalf("expected course finished, got %+v", effects[1].Notice)
	}
	if got := activeID(t, session); got != "v3" {
		t.Fatalf("active = %s, want v3", got)
	}
}

func TestToggleSectionMarksNewSectionSeenOnce(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")

	collapse, err := session.ToggleSection("s2")
	if err != nil || len(collapse) != 0 {
		t.Fatalf("collapse: %v %+v", err, collapse)
	}
	expand, err := session.ToggleSection("s2")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(expand) != 1 || expand[0].Kind != domain.EffectMarkSectionSeen || expand[0].SectionID != "s2" {
		t.Fatalf("expected mark-seen for s2, got %+v", expand)
	}
	_, _ = session.ToggleSection("s2")
	again, _ := session.ToggleSection("s2")
	if len(again) != 0 {
		t.Fatalf("mark-seen must fire once per session, got %+v", again)
	}

	_, _ = session.ToggleSection("s1")
	plain, _ := session.ToggleSection("s1")
	if len(plain) != 0 {
		t.Fatalf("s1 is not new, got %+v", plain)
	}
	if _, err := session.ToggleSection("s9"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleDescription(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	if session.DescriptionExpanded() {
		t.Fatalf("description starts collapsed")
	}
	if !session.ToggleDescription() || !session.DescriptionExpanded() {
		t.Fatalf("toggle should expand the description")
	}
}

func TestRederive(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	if session.Rederive("") {
		t.Fatalf("unchanged requested id must not re-derive")
	}
	if !session.Rederive("v3") {
		t.Fatalf("changed requested id should re-derive")
	}
	if got := activeID(t, session); got != "v3" {
		t.Fatalf("active = %s, want v3", got)
	}
	if session.Rederive("v3") {
		t.Fatalf("same id twice must be a no-op")
	}
	if session.Rederive("missing") {
		t.Fatalf("unknown id must be ignored")
	}
	if got := activeID(t, session); got != "v3" {
		t.Fatalf("active = %s after unknown id", got)
	}
}

func TestSyncKeepsActiveVideoAndPicksUpProgress(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	refreshed := sampleCourse()
	refreshed.Sections[0].Videos[1].Progress = &domain.Progress{Completed: true, LastPosition: 120, Percentage: 100}
	refreshed.Sections = append(refreshed.Sections, domain.Section{ID: "s3", Videos: []domain.Video{{ID: "v4"}}})

	effects := session.Sync(refreshed)
	if len(effects) != 0 {
		t.Fatalf("active video survived, expected no effects, got %+v", effects)
	}
	if got := activeID(t, session); got != "v2" {
		t.Fatalf("active = %s, want v2", got)
	}
	video, _ := session.Active()
	if !video.Done() {
		t.Fatalf("refreshed progress should be visible")
	}
	if !session.IsExpanded("s3") {
		t.Fatalf("new sections start expanded")
	}
}

func TestSyncKeepsCollapsedActiveSection(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	if _, err := session.ToggleSection("s1"); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if session.IsExpanded("s1") {
		t.Fatalf("s1 should be collapsed")
	}

	if effects := session.Sync(sampleCourse()); len(effects) != 0 {
		t.Fatalf("unchanged course, expected no effects, got %+v", effects)
	}
	if session.IsExpanded("s1") {
		t.Fatalf("a refresh must not reopen a section the viewer collapsed")
	}
	if got := activeID(t, session); got != "v2" {
		t.Fatalf("active = %s, want v2", got)
	}
}

func TestSyncRederivesWhenActiveVideoDisappears(t *testing.T) {
	t.Parallel()
	session, _ := resolved(t, "")
	refreshed := sampleCourse()
	refreshed.Sections[0].Videos = refreshed.Sections[0].Videos[:1]

	effects := session.Sync(refreshed)
	if got := activeID(t, session); got != "v3" {
		t.Fatalf("active = %s, want v3", got)
	}
	if len(effects) != 1 || effects[0].Kind != domain.EffectNavigate || effects[0].VideoID != "v3" {
		t.Fatalf("expected navigate to v3, got %+v", effects)
	}

	session.Sync(domain.Course{ID: "c-1"})
	if session.State() != domain.StateEmpty {
		t.Fatalf("course without videos should empty the session, got %s", session.State())
	}
}
