package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"courseplay/internal/modules/progress/domain"
	progressout "courseplay/internal/modules/progress/port/out"
	"courseplay/internal/platform/clock"
	apperrors "courseplay/internal/platform/errors"
	"courseplay/internal/platform/id"
)

type ProgressService struct {
	clock   clock.Clock
	ids     id.Generator
	store   progressout.Store
	journal progressout.Journal
	logger  hclog.Logger

	mu    sync.Mutex
	latch *domain.Latch
}

func NewProgressService(
	clk clock.Clock,
	ids id.Generator,
	store progressout.Store,
	journal progressout.Journal,
	logger hclog.Logger,
) *ProgressService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ProgressService{
		clock:   clk,
		ids:     ids,
		store:   store,
		journal: journal,
		logger:  logger.Named("progress"),
		latch:   domain.NewLatch(),
	}
}

// Report sends a periodic sample. It returns false without error when the
// video's completion was already issued in this session.
func (s *ProgressService) Report(ctx context.Context, videoID string, position, percent float64) (bool, error) {
	update := domain.Sample(strings.TrimSpace(videoID), position, percent)
	if err := update.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.mu.Lock()
	admitted := s.latch.Admit(update)
	s.mu.Unlock()
	if !admitted {
		s.logger.Debug("dropping sample after completion", "video_id", update.VideoID, "percentage", update.Percentage)
		s.record(ctx, domain.KindProgress, update.VideoID, update, domain.OutcomeDropped, nil)
		return false, nil
	}
	return true, s.send(ctx, update)
}

// Complete sends the completion write; it is the last write for the video
// until Reopen.
func (s *ProgressService) Complete(ctx context.Context, videoID string) error {
	update := domain.Completion(strings.TrimSpace(videoID))
	if err := update.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	s.mu.Lock()
	s.latch.Admit(update)
	s.mu.Unlock()
	return s.send(ctx, update)
}

func (s *ProgressService) Reopen(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latch.Reopen(videoID)
}

func (s *ProgressService) MarkSectionSeen(ctx context.Context, sectionID string) error {
	sectionID = strings.TrimSpace(sectionID)
	if sectionID == "" {
		return fmt.Errorf("%w: section id is required", apperrors.ErrInvalidInput)
	}
	if s.store == nil {
		return fmt.Errorf("progress store is not configured")
	}
	err := s.store.MarkSectionSeen(ctx, sectionID)
	outcome := domain.OutcomeSent
	if err != nil {
		outcome = domain.OutcomeFailed
		err = fmt.Errorf("mark section %s seen: %w", sectionID, err)
	}
	s.record(ctx, domain.KindSectionSeen, sectionID, domain.Update{}, outcome, err)
	return err
}

func (s *ProgressService) Journal(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if s.journal == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.journal.Recent(ctx, limit)
}

func (s *ProgressService) send(ctx context.Context, update domain.Update) error {
	if s.store == nil {
		return fmt.Errorf("progress store is not configured")
	}
	err := s.store.UpdateProgress(ctx, update)
	outcome := domain.OutcomeSent
	if err != nil {
		outcome = domain.OutcomeFailed
		err = fmt.Errorf("update progress for %s: %w", update.VideoID, err)
	}
	s.record(ctx, domain.KindProgress, update.VideoID, update, outcome, err)
	return err
}

func (s *ProgressService) record(ctx context.Context, kind, targetID string, update domain.Update, outcome domain.Outcome, cause error) {
	if s.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		ID:        s.ids.New(),
		Kind:      kind,
		TargetID:  targetID,
		Update:    update,
		Outcome:   outcome,
		CreatedAt: s.clock.Now(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := s.journal.Append(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("journal append failed", "target_id", targetID, "error", err)
	}
}
