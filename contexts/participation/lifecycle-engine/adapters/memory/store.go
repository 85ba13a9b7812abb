package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   sharedoutbox.Message
	published bool
}

// Store is the in-memory implementation of every lifecycle port, including
// Clock and IDGenerator. It backs the in-memory module wiring and the unit
// tests; the Set* methods seed projections that production reads from other
// services' tables.
type Store struct {
	mu sync.RWMutex

	initiatives map[string]entities.Initiative
	policies    map[string]entities.Policy
	supporters  map[string]entities.Supporter
	votes       map[string]entities.Vote
	quorums     []entities.Quorum
	outbox      map[string]outboxRecord
	moderation  map[entities.EntityRef]entities.ModerationStats

	nowOverride *time.Time
}

func NewStore() *Store {
	return &Store{
		initiatives: make(map[string]entities.Initiative),
		policies:    make(map[string]entities.Policy),
		supporters:  make(map[string]entities.Supporter),
		votes:       make(map[string]entities.Vote),
		outbox:      make(map[string]outboxRecord),
		moderation:  make(map[entities.EntityRef]entities.ModerationStats),
	}
}

// SetNow pins the clock for deterministic phase arithmetic in tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pinned := now.UTC()
	s.nowOverride = &pinned
}

func (s *Store) SetReviewStats(target entities.EntityRef, stats entities.ModerationStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moderation[target] = stats
}

func (s *Store) SetInitiative(ini entities.Initiative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initiatives[strings.TrimSpace(ini.ID)] = ini
}

func (s *Store) SetPolicy(pol entities.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[strings.TrimSpace(pol.ID)] = pol
}

func (s *Store) CreateInitiative(_ context.Context, ini entities.Initiative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initiatives[strings.TrimSpace(ini.ID)] = ini
	return nil
}

func (s *Store) GetInitiative(_ context.Context, id string) (entities.Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ini, ok := s.initiatives[strings.TrimSpace(id)]
	if !ok {
		return entities.Initiative{}, domainerrors.ErrInitiativeNotFound
	}
	return ini, nil
}

func (s *Store) UpdateInitiativeContent(_ context.Context, ini entities.Initiative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.initiatives[strings.TrimSpace(ini.ID)]; !ok {
		return domainerrors.ErrInitiativeNotFound
	}
	s.initiatives[strings.TrimSpace(ini.ID)] = ini
	return nil
}

func (s *Store) ListInitiativeVariants(_ context.Context, parentID string) ([]entities.Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Initiative, 0)
	for _, ini := range s.initiatives {
		if ini.VariantOf == strings.TrimSpace(parentID) {
			items = append(items, ini)
		}
	}
	sortInitiativesByCreation(items)
	return items, nil
}

func (s *Store) ListInitiativesByState(_ context.Context, state entities.InitiativeState) ([]entities.Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Initiative, 0)
	for _, ini := range s.initiatives {
		if ini.State == state {
			items = append(items, ini)
		}
	}
	sortInitiativesByCreation(items)
	return items, nil
}

func (s *Store) ApplyInitiativeTransition(_ context.Context, t ports.InitiativeTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ini, ok := s.initiatives[strings.TrimSpace(t.ID)]
	if !ok {
		return domainerrors.ErrInitiativeNotFound
	}
	if ini.Version != t.FromVersion {
		return domainerrors.ErrConcurrentTransition
	}
	ini.State = t.ToState
	ini.Version++
	ini.ChangedAt = t.ChangedAt
	if t.StampPublic != nil {
		ini.WentPublicAt = t.StampPublic
	}
	if t.StampDiscuss != nil {
		ini.WentToDiscussionAt = t.StampDiscuss
	}
	if t.StampVoting != nil {
		ini.WentToVotingAt = t.StampVoting
	}
	if t.StampClosed != nil {
		ini.WasClosedAt = t.StampClosed
	}
	if t.EligibleVoters != nil {
		ini.EligibleVoters = t.EligibleVoters
	}
	s.initiatives[ini.ID] = ini
	return nil
}

func (s *Store) CreatePolicy(_ context.Context, pol entities.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[strings.TrimSpace(pol.ID)] = pol
	return nil
}

func (s *Store) GetPolicy(_ context.Context, id string) (entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pol, ok := s.policies[strings.TrimSpace(id)]
	if !ok {
		return entities.Policy{}, domainerrors.ErrPolicyNotFound
	}
	return pol, nil
}

func (s *Store) UpdatePolicyContent(_ context.Context, pol entities.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[strings.TrimSpace(pol.ID)]; !ok {
		return domainerrors.ErrPolicyNotFound
	}
	s.policies[strings.TrimSpace(pol.ID)] = pol
	return nil
}

func (s *Store) ListPolicyVariants(_ context.Context, parentID string) ([]entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Policy, 0)
	for _, pol := range s.policies {
		if pol.VariantOf == strings.TrimSpace(parentID) {
			items = append(items, pol)
		}
	}
	sortPoliciesByCreation(items)
	return items, nil
}

func (s *Store) ListPoliciesByState(_ context.Context, state entities.PolicyState) ([]entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Policy, 0)
	for _, pol := range s.policies {
		if pol.State == state {
			items = append(items, pol)
		}
	}
	sortPoliciesByCreation(items)
	return items, nil
}

func (s *Store) ApplyPolicyTransition(_ context.Context, t ports.PolicyTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pol, ok := s.policies[strings.TrimSpace(t.ID)]
	if !ok {
		return domainerrors.ErrPolicyNotFound
	}
	if pol.Version != t.FromVersion {
		return domainerrors.ErrConcurrentTransition
	}
	pol.State = t.ToState
	pol.Version++
	pol.ChangedAt = t.ChangedAt
	if t.StampStaged != nil {
		pol.StagedAt = t.StampStaged
	}
	if t.StampValidated != nil {
		pol.WasValidatedAt = t.StampValidated
	}
	if t.StampDiscuss != nil {
		pol.WentInDiscussionAt = t.StampDiscuss
	}
	if t.StampVote != nil {
		pol.WentInVoteAt = t.StampVote
	}
	if t.StampPublished != nil {
		pol.WasPublishedAt = t.StampPublished
	}
	if t.StampRejected != nil {
		pol.WasRejectedAt = t.StampRejected
	}
	if t.StampChallenge != nil {
		pol.WasChallengedAt = t.StampChallenge
	}
	if t.StampClosed != nil {
		pol.WasClosedAt = t.StampClosed
	}
	if t.EligibleVoters != nil {
		pol.EligibleVoters = t.EligibleVoters
	}
	s.policies[pol.ID] = pol
	return nil
}

func (s *Store) AddSupporter(_ context.Context, supporter entities.Supporter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.supporters {
		if existing.Target == supporter.Target && existing.UserID == supporter.UserID {
			return domainerrors.ErrDuplicateSupport
		}
	}
	s.supporters[strings.TrimSpace(supporter.ID)] = supporter
	return nil
}

func (s *Store) SetAcknowledged(_ context.Context, target entities.EntityRef, userID string, ack bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, supporter := range s.supporters {
		if supporter.Target != target || supporter.UserID != strings.TrimSpace(userID) {
			continue
		}
		supporter.Ack = ack
		s.supporters[key] = supporter
		return nil
	}
	return domainerrors.ErrSupporterNotFound
}

func (s *Store) CountSupporters(_ context.Context, target entities.EntityRef, filter entities.SupporterFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, supporter := range s.supporters {
		if supporter.Target == target && filter.Matches(supporter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListSupporters(_ context.Context, target entities.EntityRef, filter entities.SupporterFilter) ([]entities.Supporter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Supporter, 0)
	for _, supporter := range s.supporters {
		if supporter.Target == target && filter.Matches(supporter) {
			items = append(items, supporter)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CastVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.votes {
		if existing.Target == vote.Target && existing.UserID == vote.UserID {
			return domainerrors.ErrDuplicateVote
		}
	}
	s.votes[strings.TrimSpace(vote.ID)] = vote
	return nil
}

func (s *Store) UpdateVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.votes[strings.TrimSpace(vote.ID)]; !ok {
		return domainerrors.ErrVoteNotFound
	}
	s.votes[strings.TrimSpace(vote.ID)] = vote
	return nil
}

func (s *Store) GetVoteByUser(_ context.Context, target entities.EntityRef, userID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vote := range s.votes {
		if vote.Target == target && vote.UserID == strings.TrimSpace(userID) {
			return vote, true, nil
		}
	}
	return entities.Vote{}, false, nil
}

func (s *Store) TallyVotes(_ context.Context, target entities.EntityRef) (entities.Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tally := entities.Tally{}
	for _, vote := range s.votes {
		if vote.Target != target {
			continue
		}
		switch vote.Value {
		case entities.VoteYes:
			tally.Yes++
		case entities.VoteNo:
			tally.No++
		case entities.VoteAbstain:
			tally.Abstain++
		}
	}
	return tally, nil
}

func (s *Store) CountVoters(_ context.Context, target entities.EntityRef) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, vote := range s.votes {
		if vote.Target == target {
			count++
		}
	}
	return count, nil
}

func (s *Store) CurrentQuorum(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.quorums) == 0 {
		return 0, nil
	}
	newest := s.quorums[0]
	for _, q := range s.quorums[1:] {
		if q.CreatedAt.After(newest.CreatedAt) {
			newest = q
		}
	}
	return newest.Value, nil
}

func (s *Store) SetQuorum(_ context.Context, q entities.Quorum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quorums = append(s.quorums, q)
	return nil
}

func (s *Store) ReviewStats(_ context.Context, target entities.EntityRef) (entities.ModerationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moderation[target], nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAtUTC.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: sharedoutbox.Message{
			ID:           outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.EntityID),
			Payload:      payload,
			Status:       sharedoutbox.StatusPending,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]sharedoutbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]sharedoutbox.Message, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	row.published = true
	row.message.Status = sharedoutbox.StatusPublished
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.nowOverride != nil {
		return *s.nowOverride
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortInitiativesByCreation(items []entities.Initiative) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func sortPoliciesByCreation(items []entities.Policy) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

var (
	_ ports.ProposalRepository   = (*Store)(nil)
	_ ports.SupporterRepository  = (*Store)(nil)
	_ ports.VoteRepository       = (*Store)(nil)
	_ ports.QuorumRepository     = (*Store)(nil)
	_ ports.ModerationProjection = (*Store)(nil)
	_ ports.OutboxWriter         = (*Store)(nil)
	_ ports.OutboxRepository     = (*Store)(nil)
	_ ports.Clock                = (*Store)(nil)
	_ ports.IDGenerator          = (*Store)(nil)
)
