package postgresadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/moderation-safety/review-panel/domain/entities"
	domainerrors "agora/contexts/moderation-safety/review-panel/domain/errors"
	"agora/contexts/moderation-safety/review-panel/ports"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InsertReview(ctx context.Context, review entities.Review) error {
	row := reviewModelFromEntity(review)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("review_repo_insert_review_failed", err,
			"entity_kind", row.EntityKind,
			"entity_id", row.EntityID,
			"moderator_id", row.ModeratorID,
		)
	}
	return nil
}

func (r *Repository) MarkStale(ctx context.Context, target entities.EntityRef, moderatorID string) error {
	result := r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Where("moderator_id = ?", strings.TrimSpace(moderatorID)).
		Where("stale = ?", false).
		Update("stale", true)
	if result.Error != nil {
		return r.logError("review_repo_mark_stale_failed", result.Error,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
			"moderator_id", strings.TrimSpace(moderatorID),
		)
	}
	return nil
}

func (r *Repository) ListCurrentReviews(ctx context.Context, target entities.EntityRef) ([]entities.Review, error) {
	var rows []reviewModel
	if err := r.db.WithContext(ctx).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Where("stale = ?", false).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_current_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	items := make([]entities.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountReviews(ctx context.Context, target entities.EntityRef) (entities.ReviewCounts, error) {
	type bucket struct {
		Vote  string
		Count int
	}
	var buckets []bucket
	if err := r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Select("vote, COUNT(*) AS count").
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Where("stale = ?", false).
		Group("vote").
		Find(&buckets).Error; err != nil {
		return entities.ReviewCounts{}, r.logError("review_repo_count_reviews_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	counts := entities.ReviewCounts{}
	for _, b := range buckets {
		counts.Total += b.Count
		switch entities.ReviewVote(b.Vote) {
		case entities.VoteApprove:
			counts.Approvals += b.Count
		case entities.VoteReject:
			counts.Rejections += b.Count
		case entities.VoteRequestInfo:
			counts.RequestInfo += b.Count
		}
	}
	return counts, nil
}

func (r *Repository) UpsertRosterEntry(ctx context.Context, entry entities.RosterEntry) error {
	row := rosterModel{
		UserID:    strings.TrimSpace(entry.UserID),
		Active:    entry.Active,
		Since:     entry.Since.UTC(),
		ChangedAt: entry.ChangedAt.UTC(),
	}
	// Keep the original join timestamp when the entry already exists.
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"active":     row.Active,
			"changed_at": row.ChangedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("review_repo_upsert_roster_failed", create.Error, "user_id", row.UserID)
	}
	return nil
}

func (r *Repository) IsActiveModerator(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rosterModel{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("active = ?", true).
		Count(&count).Error; err != nil {
		return false, r.logError("review_repo_is_active_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return count > 0, nil
}

func (r *Repository) ListActiveModerators(ctx context.Context) ([]entities.RosterEntry, error) {
	var rows []rosterModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_active_failed", err)
	}
	items := make([]entities.RosterEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.RosterEntry{
			UserID:    row.UserID,
			Active:    row.Active,
			Since:     row.Since.UTC(),
			ChangedAt: row.ChangedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("review_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.EntityID),
		Payload:      payload,
		Status:       sharedoutbox.StatusPending,
		CreatedAt:    envelope.OccurredAtUTC.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("review_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]sharedoutbox.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", sharedoutbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("review_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]sharedoutbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, sharedoutbox.Message{
			ID:           row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       sharedoutbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("review_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "moderation-safety/review-panel",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("review panel repository operation failed", fields...)
	return err
}

type reviewModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	EntityKind  string    `gorm:"column:entity_kind"`
	EntityID    string    `gorm:"column:entity_id"`
	ModeratorID string    `gorm:"column:moderator_id"`
	Vote        string    `gorm:"column:vote"`
	Comment     string    `gorm:"column:comment"`
	Stale       bool      `gorm:"column:stale"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (reviewModel) TableName() string {
	return "moderation_reviews"
}

func reviewModelFromEntity(review entities.Review) reviewModel {
	return reviewModel{
		ID:          strings.TrimSpace(review.ID),
		EntityKind:  string(review.Target.Kind),
		EntityID:    strings.TrimSpace(review.Target.ID),
		ModeratorID: strings.TrimSpace(review.ModeratorID),
		Vote:        string(review.Vote),
		Comment:     review.Comment,
		Stale:       review.Stale,
		CreatedAt:   review.CreatedAt.UTC(),
	}
}

func (m reviewModel) toEntity() entities.Review {
	return entities.Review{
		ID: m.ID,
		Target: entities.EntityRef{
			Kind: entities.EntityKind(m.EntityKind),
			ID:   m.EntityID,
		},
		ModeratorID: m.ModeratorID,
		Vote:        entities.ReviewVote(m.Vote),
		Comment:     m.Comment,
		Stale:       m.Stale,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type rosterModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Active    bool      `gorm:"column:active"`
	Since     time.Time `gorm:"column:since"`
	ChangedAt time.Time `gorm:"column:changed_at"`
}

func (rosterModel) TableName() string {
	return "moderation_roster"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "review_panel_outbox"
}

var (
	_ ports.ReviewRepository = (*Repository)(nil)
	_ ports.RosterRepository = (*Repository)(nil)
	_ ports.OutboxWriter     = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
)
