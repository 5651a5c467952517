package out

import (
	"context"

	hclog "github.com/hashicorp/go-hclog"

	"courseplay/internal/modules/playback/domain"
	"courseplay/internal/modules/playback/dto"
	playbackout "courseplay/internal/modules/playback/port/out"
)

// LogNotifier writes notices to the log. Headless playback uses it.
type LogNotifier struct {
	logger hclog.Logger
}

func NewLogNotifier(logger hclog.Logger) playbackout.Notifier {
	return &LogNotifier{logger: logger.Named("notice")}
}

func (n *LogNotifier) Notify(_ context.Context, notice domain.Notice) {
	switch notice.Kind {
	case domain.NoticeLessonFinished:
		n.logger.Info("lesson finished", "video_id", notice.VideoID, "next_video_id", notice.NextVideoID)
	case domain.NoticeCourseFinished:
		n.logger.Info("course finished", "course_id", notice.CourseID, "video_id", notice.VideoID)
	}
}

// ChannelNotifier hands notices to the terminal UI. Notices are dropped when
// nobody drains the channel.
type ChannelNotifier struct {
	ch chan dto.NoticeOutput
}

func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 8
	}
	return &ChannelNotifier{ch: make(chan dto.NoticeOutput, buffer)}
}

func (n *ChannelNotifier) Notify(_ context.Context, notice domain.Notice) {
	select {
	case n.ch <- dto.NoticeOutput{
		Kind:        string(notice.Kind),
		CourseID:    notice.CourseID,
		VideoID:     notice.VideoID,
		NextVideoID: notice.NextVideoID,
	}:
	default:
	}
}

func (n *ChannelNotifier) Notices() <-chan dto.NoticeOutput {
	return n.ch
}

// MultiNotifier fans a notice out to every notifier in order.
type MultiNotifier []playbackout.Notifier

func (m MultiNotifier) Notify(ctx context.Context, notice domain.Notice) {
	for _, n := range m {
		n.Notify(ctx, notice)
	}
}
