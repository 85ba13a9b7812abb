package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/participation/debate-service/domain/entities"
	domainerrors "agora/contexts/participation/debate-service/domain/errors"
	"agora/contexts/participation/debate-service/ports"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) CreateArgument(ctx context.Context, arg entities.Argument) error {
	row := argumentModelFromEntity(arg)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("debate_repo_create_argument_failed", err, "argument_id", row.ID)
	}
	return nil
}

func (r *Repository) GetArgument(ctx context.Context, id string) (entities.Argument, error) {
	var row argumentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(id)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Argument{}, domainerrors.ErrArgumentNotFound
		}
		return entities.Argument{}, r.logError("debate_repo_get_argument_failed", err, "argument_id", strings.TrimSpace(id))
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateArgumentText(ctx context.Context, arg entities.Argument) error {
	result := r.db.WithContext(ctx).
		Model(&argumentModel{}).
		Where("id = ?", strings.TrimSpace(arg.ID)).
		Updates(map[string]any{
			"title":      arg.Title,
			"text":       arg.Text,
			"changed_at": arg.ChangedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("debate_repo_update_argument_failed", result.Error, "argument_id", strings.TrimSpace(arg.ID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrArgumentNotFound
	}
	return nil
}

func (r *Repository) ListArguments(ctx context.Context, target entities.EntityRef, kind entities.ArgumentKind) ([]entities.Argument, error) {
	tx := r.db.WithContext(ctx).
		Model(&argumentModel{}).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID))
	if kind != "" {
		tx = tx.Where("kind = ?", string(kind))
	}
	var rows []argumentModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("debate_repo_list_arguments_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	items := make([]entities.Argument, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// CreateComment inserts the comment and bumps the parent argument's cached
// counter in one transaction so the aggregate never drifts from the rows.
func (r *Repository) CreateComment(ctx context.Context, comment entities.Comment) error {
	row := commentModelFromEntity(comment)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		bump := tx.Model(&argumentModel{}).
			Where("id = ?", row.ArgumentID).
			Update("comments_count", gorm.Expr("comments_count + 1"))
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return domainerrors.ErrArgumentNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrArgumentNotFound) {
			return err
		}
		return r.logError("debate_repo_create_comment_failed", err, "comment_id", row.ID)
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id string) (entities.Comment, error) {
	var row commentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(id)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Comment{}, domainerrors.ErrCommentNotFound
		}
		return entities.Comment{}, r.logError("debate_repo_get_comment_failed", err, "comment_id", strings.TrimSpace(id))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListComments(ctx context.Context, argumentID string) ([]entities.Comment, error) {
	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("argument_id = ?", strings.TrimSpace(argumentID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("debate_repo_list_comments_failed", err, "argument_id", strings.TrimSpace(argumentID))
	}
	items := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AddLike(ctx context.Context, like entities.Like) error {
	row := likeModelFromEntity(like)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return bumpLikeCount(tx, like.Target, 1)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateLike
		}
		if errors.Is(err, domainerrors.ErrArgumentNotFound) || errors.Is(err, domainerrors.ErrCommentNotFound) {
			return err
		}
		return r.logError("debate_repo_add_like_failed", err,
			"target_kind", string(like.Target.Kind),
			"target_id", like.Target.ID,
			"user_id", like.UserID,
		)
	}
	return nil
}

func (r *Repository) RemoveLike(ctx context.Context, target entities.LikeRef, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("target_kind = ?", string(target.Kind)).
			Where("target_id = ?", strings.TrimSpace(target.ID)).
			Where("user_id = ?", strings.TrimSpace(userID)).
			Delete(&likeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrLikeNotFound
		}
		return bumpLikeCount(tx, target, -1)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrLikeNotFound) {
			return err
		}
		return r.logError("debate_repo_remove_like_failed", err,
			"target_kind", string(target.Kind),
			"target_id", strings.TrimSpace(target.ID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return nil
}

func (r *Repository) HasLiked(ctx context.Context, target entities.LikeRef, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&likeModel{}).
		Where("target_kind = ?", string(target.Kind)).
		Where("target_id = ?", strings.TrimSpace(target.ID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Count(&count).Error; err != nil {
		return false, r.logError("debate_repo_has_liked_failed", err,
			"target_kind", string(target.Kind),
			"target_id", strings.TrimSpace(target.ID),
		)
	}
	return count > 0, nil
}

func bumpLikeCount(tx *gorm.DB, target entities.LikeRef, delta int) error {
	var result *gorm.DB
	switch target.Kind {
	case entities.LikeArgument:
		result = tx.Model(&argumentModel{}).
			Where("id = ?", strings.TrimSpace(target.ID)).
			Update("likes_count", gorm.Expr("likes_count + ?", delta))
	case entities.LikeComment:
		result = tx.Model(&commentModel{}).
			Where("id = ?", strings.TrimSpace(target.ID)).
			Update("likes_count", gorm.Expr("likes_count + ?", delta))
	default:
		return domainerrors.ErrInvalidInput
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if target.Kind == entities.LikeArgument {
			return domainerrors.ErrArgumentNotFound
		}
		return domainerrors.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("debate_repo_append_outbox_marshal_failed", err,
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
		return r.logError("debate_repo_append_outbox_insert_failed", create.Error,
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
		return nil, r.logError("debate_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("debate_repo_mark_outbox_published_failed", result.Error,
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
		"module", "participation/debate-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("debate repository operation failed", fields...)
	return err
}

type argumentModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	EntityKind    string    `gorm:"column:entity_kind"`
	EntityID      string    `gorm:"column:entity_id"`
	Kind          string    `gorm:"column:kind"`
	AuthorID      string    `gorm:"column:author_id"`
	Title         string    `gorm:"column:title"`
	Text          string    `gorm:"column:text"`
	LikesCount    int       `gorm:"column:likes_count"`
	CommentsCount int       `gorm:"column:comments_count"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	ChangedAt     time.Time `gorm:"column:changed_at"`
}

func (argumentModel) TableName() string {
	return "debate_arguments"
}

func argumentModelFromEntity(arg entities.Argument) argumentModel {
	return argumentModel{
		ID:            strings.TrimSpace(arg.ID),
		EntityKind:    string(arg.Target.Kind),
		EntityID:      strings.TrimSpace(arg.Target.ID),
		Kind:          string(arg.Kind),
		AuthorID:      strings.TrimSpace(arg.AuthorID),
		Title:         arg.Title,
		Text:          arg.Text,
		LikesCount:    arg.LikesCount,
		CommentsCount: arg.CommentsCount,
		CreatedAt:     arg.CreatedAt.UTC(),
		ChangedAt:     arg.ChangedAt.UTC(),
	}
}

func (m argumentModel) toEntity() entities.Argument {
	return entities.Argument{
		ID: m.ID,
		Target: entities.EntityRef{
			Kind: entities.EntityKind(m.EntityKind),
			ID:   m.EntityID,
		},
		Kind:          entities.ArgumentKind(m.Kind),
		AuthorID:      m.AuthorID,
		Title:         m.Title,
		Text:          m.Text,
		LikesCount:    m.LikesCount,
		CommentsCount: m.CommentsCount,
		CreatedAt:     m.CreatedAt.UTC(),
		ChangedAt:     m.ChangedAt.UTC(),
	}
}

type commentModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ArgumentID string    `gorm:"column:argument_id"`
	AuthorID   string    `gorm:"column:author_id"`
	Text       string    `gorm:"column:text"`
	LikesCount int       `gorm:"column:likes_count"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	ChangedAt  time.Time `gorm:"column:changed_at"`
}

func (commentModel) TableName() string {
	return "debate_comments"
}

func commentModelFromEntity(comment entities.Comment) commentModel {
	return commentModel{
		ID:         strings.TrimSpace(comment.ID),
		ArgumentID: strings.TrimSpace(comment.ArgumentID),
		AuthorID:   strings.TrimSpace(comment.AuthorID),
		Text:       comment.Text,
		LikesCount: comment.LikesCount,
		CreatedAt:  comment.CreatedAt.UTC(),
		ChangedAt:  comment.ChangedAt.UTC(),
	}
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		ID:         m.ID,
		ArgumentID: m.ArgumentID,
		AuthorID:   m.AuthorID,
		Text:       m.Text,
		LikesCount: m.LikesCount,
		CreatedAt:  m.CreatedAt.UTC(),
		ChangedAt:  m.ChangedAt.UTC(),
	}
}

type likeModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TargetKind string    `gorm:"column:target_kind"`
	TargetID   string    `gorm:"column:target_id"`
	UserID     string    `gorm:"column:user_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (likeModel) TableName() string {
	return "debate_likes"
}

func likeModelFromEntity(like entities.Like) likeModel {
	return likeModel{
		ID:         strings.TrimSpace(like.ID),
		TargetKind: string(like.Target.Kind),
		TargetID:   strings.TrimSpace(like.Target.ID),
		UserID:     strings.TrimSpace(like.UserID),
		CreatedAt:  like.CreatedAt.UTC(),
	}
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
	return "debate_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.ArgumentRepository = (*Repository)(nil)
	_ ports.CommentRepository  = (*Repository)(nil)
	_ ports.LikeRepository     = (*Repository)(nil)
	_ ports.OutboxWriter       = (*Repository)(nil)
	_ ports.OutboxRepository   = (*Repository)(nil)
)
