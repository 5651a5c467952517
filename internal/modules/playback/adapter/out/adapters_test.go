package out_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	playbackout "courseplay/internal/modules/playback/adapter/out"
	"courseplay/internal/modules/playback/domain"
	apperrors "courseplay/internal/platform/errors"
)

func TestFileLocationNavigatorHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	nav := playbackout.NewFileLocationNavigator(dir)

	_, err := nav.Current(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoLocation)

	require.NoError(t, nav.Push(ctx, domain.NewLocation("c-1", "")))
	require.NoError(t, nav.Push(ctx, domain.NewLocation("c-2", "")))
	require.NoError(t, nav.Replace(ctx, domain.NewLocation("c-2", "v5")))
	require.NoError(t, nav.Replace(ctx, domain.NewLocation("c-2", "v6")))

	reopened := playbackout.NewFileLocationNavigator(dir)
	current, err := reopened.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c-2", current.CourseID())
	assert.Equal(t, "v6", current.VideoID())

	previous, err := reopened.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, "courseplay://course/c-1", previous.String())

	_, err = reopened.Back(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoLocation)
}

func TestFileLocationNavigatorSkipsDuplicatePush(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	nav := playbackout.NewFileLocationNavigator(t.TempDir())
	loc := domain.NewLocation("c-1", "v1")
	require.NoError(t, nav.Push(ctx, loc))
	require.NoError(t, nav.Push(ctx, loc))

	_, err := nav.Back(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoLocation)
}

func TestChannelNotifierDropsWhenFull(t *testing.T) {
	t.Parallel()
	notifier := playbackout.NewChannelNotifier(1)
	notifier.Notify(context.Background(), domain.Notice{Kind: domain.NoticeLessonFinished, VideoID: "v1", NextVideoID: "v2"})
	notifier.Notify(context.Background(), domain.Notice{Kind: domain.NoticeCourseFinished, VideoID: "v2"})

	notice := <-notifier.Notices()
	assert.Equal(t, "lesson_finished", notice.Kind)
	assert.Equal(t, "v2", notice.NextVideoID)
	select {
	case extra := <-notifier.Notices():
		t.Fatalf("second notice should have been dropped: %+v", extra)
	default:
	}
}

func TestMultiNotifierFansOut(t *testing.T) {
	t.Parallel()
	first := playbackout.NewChannelNotifier(1)
	second := playbackout.NewChannelNotifier(1)
	multi := playbackout.MultiNotifier{first, second}

	multi.Notify(context.Background(), domain.Notice{Kind: domain.NoticeCourseFinished, CourseID: "c1", VideoID: "v3"})

	for _, n := range []*playbackout.ChannelNotifier{first, second} {
		select {
		case got := <-n.Notices():
			assert.Equal(t, "course_finished", got.Kind)
			assert.Equal(t, "v3", got.VideoID)
		default:
			t.Fatalf("notice not delivered")
		}
	}
}
