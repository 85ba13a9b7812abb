package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
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

func (r *Repository) CreateInitiative(ctx context.Context, ini entities.Initiative) error {
	row := initiativeModelFromEntity(ini)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("lifecycle_repo_create_initiative_failed", err, "initiative_id", row.ID)
	}
	return nil
}

func (r *Repository) GetInitiative(ctx context.Context, id string) (entities.Initiative, error) {
	var row initiativeModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(id)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Initiative{}, domainerrors.ErrInitiativeNotFound
		}
		return entities.Initiative{}, r.logError("lifecycle_repo_get_initiative_failed", err, "initiative_id", strings.TrimSpace(id))
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateInitiativeContent(ctx context.Context, ini entities.Initiative) error {
	row := initiativeModelFromEntity(ini)
	result := r.db.WithContext(ctx).
		Model(&initiativeModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"title":            row.Title,
			"subtitle":         row.Subtitle,
			"summary":          row.Summary,
			"problem":          row.Problem,
			"demand":           row.Demand,
			"cost_estimate":    row.CostEstimate,
			"funding_proposal": row.FundingProposal,
			"methodology":      row.Methodology,
			"initial_argument": row.InitialArgument,
			"context":          row.Context,
			"scope":            row.Scope,
			"topic":            row.Topic,
			"changed_at":       row.ChangedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_initiative_failed", result.Error, "initiative_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInitiativeNotFound
	}
	return nil
}

func (r *Repository) ListInitiativeVariants(ctx context.Context, parentID string) ([]entities.Initiative, error) {
	var rows []initiativeModel
	if err := r.db.WithContext(ctx).
		Where("variant_of = ?", strings.TrimSpace(parentID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_initiative_variants_failed", err, "parent_id", strings.TrimSpace(parentID))
	}
	items := make([]entities.Initiative, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListInitiativesByState(ctx context.Context, state entities.InitiativeState) ([]entities.Initiative, error) {
	var rows []initiativeModel
	if err := r.db.WithContext(ctx).
		Where("state = ?", string(state)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_initiatives_by_state_failed", err, "state", string(state))
	}
	items := make([]entities.Initiative, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ApplyInitiativeTransition(ctx context.Context, t ports.InitiativeTransition) error {
	updates := map[string]any{
		"state":      string(t.ToState),
		"version":    t.FromVersion + 1,
		"changed_at": t.ChangedAt.UTC(),
	}
	if t.StampPublic != nil {
		updates["went_public_at"] = t.StampPublic.UTC()
	}
	if t.StampDiscuss != nil {
		updates["went_to_discussion_at"] = t.StampDiscuss.UTC()
	}
	if t.StampVoting != nil {
		updates["went_to_voting_at"] = t.StampVoting.UTC()
	}
	if t.StampClosed != nil {
		updates["was_closed_at"] = t.StampClosed.UTC()
	}
	if t.EligibleVoters != nil {
		updates["eligible_voters"] = *t.EligibleVoters
	}
	result := r.db.WithContext(ctx).
		Model(&initiativeModel{}).
		Where("id = ?", strings.TrimSpace(t.ID)).
		Where("version = ?", t.FromVersion).
		Updates(updates)
	if result.Error != nil {
		return r.logError("lifecycle_repo_initiative_transition_failed", result.Error,
			"initiative_id", strings.TrimSpace(t.ID),
			"to_state", string(t.ToState),
		)
	}
	if result.RowsAffected == 0 {
		return r.initiativeTransitionConflict(ctx, t.ID)
	}
	return nil
}

// initiativeTransitionConflict distinguishes a lost version race from a
// missing row after a zero-row conditional update.
func (r *Repository) initiativeTransitionConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&initiativeModel{}).
		Where("id = ?", strings.TrimSpace(id)).
		Count(&count).Error; err != nil {
		return r.logError("lifecycle_repo_initiative_conflict_check_failed", err, "initiative_id", strings.TrimSpace(id))
	}
	if count == 0 {
		return domainerrors.ErrInitiativeNotFound
	}
	return domainerrors.ErrConcurrentTransition
}

func (r *Repository) CreatePolicy(ctx context.Context, pol entities.Policy) error {
	row, err := policyModelFromEntity(pol)
	if err != nil {
		return r.logError("lifecycle_repo_create_policy_marshal_failed", err, "policy_id", strings.TrimSpace(pol.ID))
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("lifecycle_repo_create_policy_failed", err, "policy_id", row.ID)
	}
	return nil
}

func (r *Repository) GetPolicy(ctx context.Context, id string) (entities.Policy, error) {
	var row policyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(id)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Policy{}, domainerrors.ErrPolicyNotFound
		}
		return entities.Policy{}, r.logError("lifecycle_repo_get_policy_failed", err, "policy_id", strings.TrimSpace(id))
	}
	return row.toEntity()
}

func (r *Repository) UpdatePolicyContent(ctx context.Context, pol entities.Policy) error {
	row, err := policyModelFromEntity(pol)
	if err != nil {
		return r.logError("lifecycle_repo_update_policy_marshal_failed", err, "policy_id", strings.TrimSpace(pol.ID))
	}
	result := r.db.WithContext(ctx).
		Model(&policyModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"title":      row.Title,
			"fields":     row.Fields,
			"changed_at": row.ChangedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_policy_failed", result.Error, "policy_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPolicyNotFound
	}
	return nil
}

func (r *Repository) ListPolicyVariants(ctx context.Context, parentID string) ([]entities.Policy, error) {
	var rows []policyModel
	if err := r.db.WithContext(ctx).
		Where("variant_of = ?", strings.TrimSpace(parentID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_policy_variants_failed", err, "parent_id", strings.TrimSpace(parentID))
	}
	return toPolicyEntities(rows)
}

func (r *Repository) ListPoliciesByState(ctx context.Context, state entities.PolicyState) ([]entities.Policy, error) {
	var rows []policyModel
	if err := r.db.WithContext(ctx).
		Where("state = ?", string(state)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_policies_by_state_failed", err, "state", string(state))
	}
	return toPolicyEntities(rows)
}

func (r *Repository) ApplyPolicyTransition(ctx context.Context, t ports.PolicyTransition) error {
	updates := map[string]any{
		"state":      string(t.ToState),
		"version":    t.FromVersion + 1,
		"changed_at": t.ChangedAt.UTC(),
	}
	if t.StampStaged != nil {
		updates["staged_at"] = t.StampStaged.UTC()
	}
	if t.StampValidated != nil {
		updates["was_validated_at"] = t.StampValidated.UTC()
	}
	if t.StampDiscuss != nil {
		updates["went_in_discussion_at"] = t.StampDiscuss.UTC()
	}
	if t.StampVote != nil {
		updates["went_in_vote_at"] = t.StampVote.UTC()
	}
	if t.StampPublished != nil {
		updates["was_published_at"] = t.StampPublished.UTC()
	}
	if t.StampRejected != nil {
		updates["was_rejected_at"] = t.StampRejected.UTC()
	}
	if t.StampChallenge != nil {
		updates["was_challenged_at"] = t.StampChallenge.UTC()
	}
	if t.StampClosed != nil {
		updates["was_closed_at"] = t.StampClosed.UTC()
	}
	if t.EligibleVoters != nil {
		updates["eligible_voters"] = *t.EligibleVoters
	}
	result := r.db.WithContext(ctx).
		Model(&policyModel{}).
		Where("id = ?", strings.TrimSpace(t.ID)).
		Where("version = ?", t.FromVersion).
		Updates(updates)
	if result.Error != nil {
		return r.logError("lifecycle_repo_policy_transition_failed", result.Error,
			"policy_id", strings.TrimSpace(t.ID),
			"to_state", string(t.ToState),
		)
	}
	if result.RowsAffected == 0 {
		return r.policyTransitionConflict(ctx, t.ID)
	}
	return nil
}

func (r *Repository) policyTransitionConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&policyModel{}).
		Where("id = ?", strings.TrimSpace(id)).
		Count(&count).Error; err != nil {
		return r.logError("lifecycle_repo_policy_conflict_check_failed", err, "policy_id", strings.TrimSpace(id))
	}
	if count == 0 {
		return domainerrors.ErrPolicyNotFound
	}
	return domainerrors.ErrConcurrentTransition
}

func (r *Repository) AddSupporter(ctx context.Context, supporter entities.Supporter) error {
	row := supporterModelFromEntity(supporter)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateSupport
		}
		return r.logError("lifecycle_repo_add_supporter_failed", err,
			"entity_kind", row.EntityKind,
			"entity_id", row.EntityID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) SetAcknowledged(ctx context.Context, target entities.EntityRef, userID string, ack bool) error {
	result := r.db.WithContext(ctx).
		Model(&supporterModel{}).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Update("ack", ack)
	if result.Error != nil {
		return r.logError("lifecycle_repo_set_acknowledged_failed", result.Error,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSupporterNotFound
	}
	return nil
}

func (r *Repository) CountSupporters(ctx context.Context, target entities.EntityRef, filter entities.SupporterFilter) (int, error) {
	var count int64
	if err := r.supporterQuery(ctx, target, filter).Count(&count).Error; err != nil {
		return 0, r.logError("lifecycle_repo_count_supporters_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	return int(count), nil
}

func (r *Repository) ListSupporters(ctx context.Context, target entities.EntityRef, filter entities.SupporterFilter) ([]entities.Supporter, error) {
	var rows []supporterModel
	if err := r.supporterQuery(ctx, target, filter).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_supporters_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	items := make([]entities.Supporter, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) supporterQuery(ctx context.Context, target entities.EntityRef, filter entities.SupporterFilter) *gorm.DB {
	tx := r.db.WithContext(ctx).
		Model(&supporterModel{}).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID))
	if filter.InitiatorsOnly {
		tx = tx.Where("initiator = ?", true)
	}
	if filter.AcknowledgedOnly {
		tx = tx.Where("ack = ?", true)
	}
	if filter.PublicOnly {
		tx = tx.Where("public = ?", true).
			Where("initiator = ?", false).
			Where("first_supporter = ?", false)
	}
	return tx
}

func (r *Repository) CastVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("lifecycle_repo_cast_vote_failed", err,
			"entity_kind", row.EntityKind,
			"entity_id", row.EntityID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) UpdateVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	result := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"value":      row.Value,
			"reason":     row.Reason,
			"changed_at": row.ChangedAt,
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_vote_failed", result.Error, "vote_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVoteNotFound
	}
	return nil
}

func (r *Repository) GetVoteByUser(ctx context.Context, target entities.EntityRef, userID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("lifecycle_repo_get_vote_by_user_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) TallyVotes(ctx context.Context, target entities.EntityRef) (entities.Tally, error) {
	type bucket struct {
		Value string
		Count int
	}
	var buckets []bucket
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("value, COUNT(*) AS count").
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Group("value").
		Find(&buckets).Error; err != nil {
		return entities.Tally{}, r.logError("lifecycle_repo_tally_votes_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	tally := entities.Tally{}
	for _, b := range buckets {
		switch entities.VoteValue(b.Value) {
		case entities.VoteYes:
			tally.Yes = b.Count
		case entities.VoteNo:
			tally.No = b.Count
		case entities.VoteAbstain:
			tally.Abstain = b.Count
		}
	}
	return tally, nil
}

func (r *Repository) CountVoters(ctx context.Context, target entities.EntityRef) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("lifecycle_repo_count_voters_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	return int(count), nil
}

func (r *Repository) CurrentQuorum(ctx context.Context) (int, error) {
	var row quorumModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("lifecycle_repo_current_quorum_failed", err)
	}
	return row.Value, nil
}

func (r *Repository) SetQuorum(ctx context.Context, q entities.Quorum) error {
	row := quorumModel{
		ID:        strings.TrimSpace(q.ID),
		Value:     q.Value,
		CreatedAt: q.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("lifecycle_repo_set_quorum_failed", err, "quorum_id", row.ID)
	}
	return nil
}

// ReviewStats reads the review-panel's tables directly as a projection. The
// rows are owned by that service; this adapter only ever selects from them.
func (r *Repository) ReviewStats(ctx context.Context, target entities.EntityRef) (entities.ModerationStats, error) {
	type bucket struct {
		Vote  string
		Count int
	}
	var buckets []bucket
	if err := r.db.WithContext(ctx).
		Model(&reviewProjectionModel{}).
		Select("vote, COUNT(*) AS count").
		Where("entity_kind = ?", string(target.Kind)).
		Where("entity_id = ?", strings.TrimSpace(target.ID)).
		Where("stale = ?", false).
		Group("vote").
		Find(&buckets).Error; err != nil {
		return entities.ModerationStats{}, r.logError("lifecycle_repo_review_stats_failed", err,
			"entity_kind", string(target.Kind),
			"entity_id", strings.TrimSpace(target.ID),
		)
	}
	stats := entities.ModerationStats{}
	for _, b := range buckets {
		stats.Total += b.Count
		switch b.Vote {
		case "approve":
			stats.Approvals += b.Count
		case "reject":
			stats.Rejections += b.Count
		case "request_info":
			stats.RequestInfo += b.Count
		}
	}

	var moderators int64
	if err := r.db.WithContext(ctx).
		Model(&rosterProjectionModel{}).
		Where("active = ?", true).
		Count(&moderators).Error; err != nil {
		return entities.ModerationStats{}, r.logError("lifecycle_repo_roster_count_failed", err)
	}
	stats.ActiveModerators = int(moderators)
	return stats, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("lifecycle_repo_append_outbox_marshal_failed", err,
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
		return r.logError("lifecycle_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("lifecycle_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrInvalidInput
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
		return nil, r.logError("lifecycle_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("lifecycle_repo_mark_outbox_published_failed", result.Error,
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
		"module", "participation/lifecycle-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("lifecycle repository operation failed", fields...)
	return err
}

type initiativeModel struct {
	ID                 string     `gorm:"column:id;primaryKey"`
	Title              string     `gorm:"column:title"`
	Subtitle           string     `gorm:"column:subtitle"`
	Summary            string     `gorm:"column:summary"`
	Problem            string     `gorm:"column:problem"`
	Demand             string     `gorm:"column:demand"`
	CostEstimate       string     `gorm:"column:cost_estimate"`
	FundingProposal    string     `gorm:"column:funding_proposal"`
	Methodology        string     `gorm:"column:methodology"`
	InitialArgument    string     `gorm:"column:initial_argument"`
	Context            string     `gorm:"column:context"`
	Scope              string     `gorm:"column:scope"`
	Topic              string     `gorm:"column:topic"`
	State              string     `gorm:"column:state"`
	VariantOf          *string    `gorm:"column:variant_of"`
	EligibleVoters     *int       `gorm:"column:eligible_voters"`
	Version            int64      `gorm:"column:version"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	ChangedAt          time.Time  `gorm:"column:changed_at"`
	WentPublicAt       *time.Time `gorm:"column:went_public_at"`
	WentToDiscussionAt *time.Time `gorm:"column:went_to_discussion_at"`
	WentToVotingAt     *time.Time `gorm:"column:went_to_voting_at"`
	WasClosedAt        *time.Time `gorm:"column:was_closed_at"`
}

func (initiativeModel) TableName() string {
	return "lifecycle_initiatives"
}

func initiativeModelFromEntity(ini entities.Initiative) initiativeModel {
	return initiativeModel{
		ID:                 strings.TrimSpace(ini.ID),
		Title:              ini.Title,
		Subtitle:           ini.Subtitle,
		Summary:            ini.Summary,
		Problem:            ini.Problem,
		Demand:             ini.Demand,
		CostEstimate:       ini.CostEstimate,
		FundingProposal:    ini.FundingProposal,
		Methodology:        ini.Methodology,
		InitialArgument:    ini.InitialArgument,
		Context:            ini.Context,
		Scope:              ini.Scope,
		Topic:              ini.Topic,
		State:              string(ini.State),
		VariantOf:          optionalString(ini.VariantOf),
		EligibleVoters:     ini.EligibleVoters,
		Version:            ini.Version,
		CreatedAt:          ini.CreatedAt.UTC(),
		ChangedAt:          ini.ChangedAt.UTC(),
		WentPublicAt:       normalizeOptionalTime(ini.WentPublicAt),
		WentToDiscussionAt: normalizeOptionalTime(ini.WentToDiscussionAt),
		WentToVotingAt:     normalizeOptionalTime(ini.WentToVotingAt),
		WasClosedAt:        normalizeOptionalTime(ini.WasClosedAt),
	}
}

func (m initiativeModel) toEntity() entities.Initiative {
	return entities.Initiative{
		ID:                 m.ID,
		Title:              m.Title,
		Subtitle:           m.Subtitle,
		Summary:            m.Summary,
		Problem:            m.Problem,
		Demand:             m.Demand,
		CostEstimate:       m.CostEstimate,
		FundingProposal:    m.FundingProposal,
		Methodology:        m.Methodology,
		InitialArgument:    m.InitialArgument,
		Context:            m.Context,
		Scope:              m.Scope,
		Topic:              m.Topic,
		State:              entities.InitiativeState(m.State),
		VariantOf:          stringValue(m.VariantOf),
		EligibleVoters:     m.EligibleVoters,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt.UTC(),
		ChangedAt:          m.ChangedAt.UTC(),
		WentPublicAt:       normalizeOptionalTime(m.WentPublicAt),
		WentToDiscussionAt: normalizeOptionalTime(m.WentToDiscussionAt),
		WentToVotingAt:     normalizeOptionalTime(m.WentToVotingAt),
		WasClosedAt:        normalizeOptionalTime(m.WasClosedAt),
	}
}

type policyModel struct {
	ID                 string     `gorm:"column:id;primaryKey"`
	Title              string     `gorm:"column:title"`
	Fields             []byte     `gorm:"column:fields;type:jsonb"`
	State              string     `gorm:"column:state"`
	VariantOf          *string    `gorm:"column:variant_of"`
	EligibleVoters     *int       `gorm:"column:eligible_voters"`
	Version            int64      `gorm:"column:version"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	StagedAt           *time.Time `gorm:"column:staged_at"`
	ChangedAt          time.Time  `gorm:"column:changed_at"`
	WasValidatedAt     *time.Time `gorm:"column:was_validated_at"`
	WentInDiscussionAt *time.Time `gorm:"column:went_in_discussion_at"`
	WentInVoteAt       *time.Time `gorm:"column:went_in_vote_at"`
	WasPublishedAt     *time.Time `gorm:"column:was_published_at"`
	WasRejectedAt      *time.Time `gorm:"column:was_rejected_at"`
	WasChallengedAt    *time.Time `gorm:"column:was_challenged_at"`
	WasClosedAt        *time.Time `gorm:"column:was_closed_at"`
}

func (policyModel) TableName() string {
	return "lifecycle_policies"
}

func policyModelFromEntity(pol entities.Policy) (policyModel, error) {
	fields, err := json.Marshal(pol.Fields)
	if err != nil {
		return policyModel{}, err
	}
	return policyModel{
		ID:                 strings.TrimSpace(pol.ID),
		Title:              pol.Title,
		Fields:             fields,
		State:              string(pol.State),
		VariantOf:          optionalString(pol.VariantOf),
		EligibleVoters:     pol.EligibleVoters,
		Version:            pol.Version,
		CreatedAt:          pol.CreatedAt.UTC(),
		StagedAt:           normalizeOptionalTime(pol.StagedAt),
		ChangedAt:          pol.ChangedAt.UTC(),
		WasValidatedAt:     normalizeOptionalTime(pol.WasValidatedAt),
		WentInDiscussionAt: normalizeOptionalTime(pol.WentInDiscussionAt),
		WentInVoteAt:       normalizeOptionalTime(pol.WentInVoteAt),
		WasPublishedAt:     normalizeOptionalTime(pol.WasPublishedAt),
		WasRejectedAt:      normalizeOptionalTime(pol.WasRejectedAt),
		WasChallengedAt:    normalizeOptionalTime(pol.WasChallengedAt),
		WasClosedAt:        normalizeOptionalTime(pol.WasClosedAt),
	}, nil
}

func (m policyModel) toEntity() (entities.Policy, error) {
	fields := make(map[string]string)
	if len(m.Fields) > 0 {
		if err := json.Unmarshal(m.Fields, &fields); err != nil {
			return entities.Policy{}, err
		}
	}
	return entities.Policy{
		ID:                 m.ID,
		Title:              m.Title,
		Fields:             fields,
		State:              entities.PolicyState(m.State),
		VariantOf:          stringValue(m.VariantOf),
		EligibleVoters:     m.EligibleVoters,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt.UTC(),
		StagedAt:           normalizeOptionalTime(m.StagedAt),
		ChangedAt:          m.ChangedAt.UTC(),
		WasValidatedAt:     normalizeOptionalTime(m.WasValidatedAt),
		WentInDiscussionAt: normalizeOptionalTime(m.WentInDiscussionAt),
		WentInVoteAt:       normalizeOptionalTime(m.WentInVoteAt),
		WasPublishedAt:     normalizeOptionalTime(m.WasPublishedAt),
		WasRejectedAt:      normalizeOptionalTime(m.WasRejectedAt),
		WasChallengedAt:    normalizeOptionalTime(m.WasChallengedAt),
		WasClosedAt:        normalizeOptionalTime(m.WasClosedAt),
	}, nil
}

func toPolicyEntities(rows []policyModel) ([]entities.Policy, error) {
	items := make([]entities.Policy, 0, len(rows))
	for _, row := range rows {
		pol, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, pol)
	}
	return items, nil
}

type supporterModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	EntityKind string    `gorm:"column:entity_kind"`
	EntityID   string    `gorm:"column:entity_id"`
	UserID     string    `gorm:"column:user_id"`
	Initiator  bool      `gorm:"column:initiator"`
	Ack        bool      `gorm:"column:ack"`
	Public     bool      `gorm:"column:public"`
	First      bool      `gorm:"column:first_supporter"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (supporterModel) TableName() string {
	return "lifecycle_supporters"
}

func supporterModelFromEntity(s entities.Supporter) supporterModel {
	return supporterModel{
		ID:         strings.TrimSpace(s.ID),
		EntityKind: string(s.Target.Kind),
		EntityID:   strings.TrimSpace(s.Target.ID),
		UserID:     strings.TrimSpace(s.UserID),
		Initiator:  s.Initiator,
		Ack:        s.Ack,
		Public:     s.Public,
		First:      s.First,
		CreatedAt:  s.CreatedAt.UTC(),
	}
}

func (m supporterModel) toEntity() entities.Supporter {
	return entities.Supporter{
		ID: m.ID,
		Target: entities.EntityRef{
			Kind: entities.EntityKind(m.EntityKind),
			ID:   m.EntityID,
		},
		UserID:    m.UserID,
		Initiator: m.Initiator,
		Ack:       m.Ack,
		Public:    m.Public,
		First:     m.First,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	EntityKind string    `gorm:"column:entity_kind"`
	EntityID   string    `gorm:"column:entity_id"`
	UserID     string    `gorm:"column:user_id"`
	Value      string    `gorm:"column:value"`
	Reason     string    `gorm:"column:reason"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	ChangedAt  time.Time `gorm:"column:changed_at"`
}

func (voteModel) TableName() string {
	return "lifecycle_votes"
}

func voteModelFromEntity(v entities.Vote) voteModel {
	return voteModel{
		ID:         strings.TrimSpace(v.ID),
		EntityKind: string(v.Target.Kind),
		EntityID:   strings.TrimSpace(v.Target.ID),
		UserID:     strings.TrimSpace(v.UserID),
		Value:      string(v.Value),
		Reason:     v.Reason,
		CreatedAt:  v.CreatedAt.UTC(),
		ChangedAt:  v.ChangedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		ID: m.ID,
		Target: entities.EntityRef{
			Kind: entities.EntityKind(m.EntityKind),
			ID:   m.EntityID,
		},
		UserID:    m.UserID,
		Value:     entities.VoteValue(m.Value),
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt.UTC(),
		ChangedAt: m.ChangedAt.UTC(),
	}
}

type quorumModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Value     int       `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (quorumModel) TableName() string {
	return "lifecycle_quorums"
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
	return "lifecycle_outbox"
}

type reviewProjectionModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	EntityKind string `gorm:"column:entity_kind"`
	EntityID   string `gorm:"column:entity_id"`
	Vote       string `gorm:"column:vote"`
	Stale      bool   `gorm:"column:stale"`
}

func (reviewProjectionModel) TableName() string {
	return "moderation_reviews"
}

type rosterProjectionModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	Active bool   `gorm:"column:active"`
}

func (rosterProjectionModel) TableName() string {
	return "moderation_roster"
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.ProposalRepository   = (*Repository)(nil)
	_ ports.SupporterRepository  = (*Repository)(nil)
	_ ports.VoteRepository       = (*Repository)(nil)
	_ ports.QuorumRepository     = (*Repository)(nil)
	_ ports.ModerationProjection = (*Repository)(nil)
	_ ports.OutboxWriter         = (*Repository)(nil)
	_ ports.OutboxRepository     = (*Repository)(nil)
)
