package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/moderation-safety/review-panel/domain/entities"
	domainerrors "agora/contexts/moderation-safety/review-panel/domain/errors"
	"agora/contexts/moderation-safety/review-panel/ports"
	"agora/internal/shared/events"
)

const sourceService = "moderation-safety/review-panel"

type SubmitReviewCommand struct {
	Target      entities.EntityRef
	ModeratorID string
	Vote        entities.ReviewVote
	Comment     string
}

type Service struct {
	Reviews ports.ReviewRepository
	Roster  ports.RosterRepository
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// SubmitReview records a moderator's verdict. A later submission by the same
// moderator on the same proposal supersedes the earlier one: the old row is
// marked stale and stops counting, but stays in the table.
func (s Service) SubmitReview(ctx context.Context, cmd SubmitReviewCommand) (entities.Review, error) {
	logger := resolveLogger(s.Logger)
	cmd.ModeratorID = strings.TrimSpace(cmd.ModeratorID)
	cmd.Comment = strings.TrimSpace(cmd.Comment)
	if cmd.ModeratorID == "" || !cmd.Target.Kind.Valid() || strings.TrimSpace(cmd.Target.ID) == "" || !cmd.Vote.Valid() {
		return entities.Review{}, domainerrors.ErrInvalidInput
	}
	if cmd.Vote == entities.VoteReject && cmd.Comment == "" {
		return entities.Review{}, domainerrors.ErrInvalidInput
	}

	active, err := s.Roster.IsActiveModerator(ctx, cmd.ModeratorID)
	if err != nil {
		return entities.Review{}, err
	}
	if !active {
		return entities.Review{}, domainerrors.ErrNotActiveModerator
	}

	if err := s.Reviews.MarkStale(ctx, cmd.Target, cmd.ModeratorID); err != nil {
		return entities.Review{}, err
	}

	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Review{}, err
	}
	now := s.now()
	review := entities.Review{
		ID:          id,
		Target:      cmd.Target,
		ModeratorID: cmd.ModeratorID,
		Vote:        cmd.Vote,
		Comment:     cmd.Comment,
		CreatedAt:   now,
	}
	if err := s.Reviews.InsertReview(ctx, review); err != nil {
		return entities.Review{}, err
	}

	if err := s.appendEvent(ctx, "review.submitted", cmd.Target, now, map[string]any{
		"moderator_id": cmd.ModeratorID,
		"vote":         string(cmd.Vote),
	}); err != nil {
		return entities.Review{}, err
	}

	logger.Info("review submitted",
		"event", "review_panel_review_submitted",
		"module", "moderation-safety/review-panel",
		"layer", "application",
		"entity_kind", string(cmd.Target.Kind),
		"entity_id", cmd.Target.ID,
		"vote", string(cmd.Vote),
	)
	return review, nil
}

func (s Service) ListCurrentReviews(ctx context.Context, target entities.EntityRef) ([]entities.Review, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Reviews.ListCurrentReviews(ctx, target)
}

func (s Service) ReviewCounts(ctx context.Context, target entities.EntityRef) (entities.ReviewCounts, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return entities.ReviewCounts{}, domainerrors.ErrInvalidInput
	}
	return s.Reviews.CountReviews(ctx, target)
}

// SetRosterMembership adds a moderator or flips their active flag. New
// entries keep their join timestamp across deactivations.
func (s Service) SetRosterMembership(ctx context.Context, userID string, active bool) (entities.RosterEntry, error) {
	logger := resolveLogger(s.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.RosterEntry{}, domainerrors.ErrInvalidInput
	}
	now := s.now()
	entry := entities.RosterEntry{
		UserID:    userID,
		Active:    active,
		Since:     now,
		ChangedAt: now,
	}
	if err := s.Roster.UpsertRosterEntry(ctx, entry); err != nil {
		return entities.RosterEntry{}, err
	}
	logger.Info("roster membership updated",
		"event", "review_panel_roster_updated",
		"module", "moderation-safety/review-panel",
		"layer", "application",
		"user_id", userID,
		"active", active,
	)
	return entry, nil
}

func (s Service) ActiveModerators(ctx context.Context) ([]entities.RosterEntry, error) {
	return s.Roster.ListActiveModerators(ctx)
}

func (s Service) appendEvent(
	ctx context.Context,
	eventType string,
	target entities.EntityRef,
	occurredAt time.Time,
	payload map[string]any,
) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		OccurredAtUTC:  occurredAt.UTC(),
		EntityKind:     string(target.Kind),
		EntityID:       strings.TrimSpace(target.ID),
		PayloadVersion: 1,
		Payload:        payload,
	})
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
