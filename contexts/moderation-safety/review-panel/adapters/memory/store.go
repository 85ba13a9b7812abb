package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/moderation-safety/review-panel/domain/entities"
	domainerrors "agora/contexts/moderation-safety/review-panel/domain/errors"
	"agora/contexts/moderation-safety/review-panel/ports"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   sharedoutbox.Message
	published bool
}

type Store struct {
	mu sync.RWMutex

	reviews map[string]entities.Review
	roster  map[string]entities.RosterEntry
	outbox  map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		reviews: make(map[string]entities.Review),
		roster:  make(map[string]entities.RosterEntry),
		outbox:  make(map[string]outboxRecord),
	}
}

func (s *Store) InsertReview(_ context.Context, review entities.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[strings.TrimSpace(review.ID)] = review
	return nil
}

func (s *Store) MarkStale(_ context.Context, target entities.EntityRef, moderatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, review := range s.reviews {
		if review.Target != target || review.ModeratorID != strings.TrimSpace(moderatorID) || review.Stale {
			continue
		}
		review.Stale = true
		s.reviews[key] = review
	}
	return nil
}

func (s *Store) ListCurrentReviews(_ context.Context, target entities.EntityRef) ([]entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Review, 0)
	for _, review := range s.reviews {
		if review.Target == target && !review.Stale {
			items = append(items, review)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CountReviews(_ context.Context, target entities.EntityRef) (entities.ReviewCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := entities.ReviewCounts{}
	for _, review := range s.reviews {
		if review.Target != target || review.Stale {
			continue
		}
		counts.Total++
		switch review.Vote {
		case entities.VoteApprove:
			counts.Approvals++
		case entities.VoteReject:
			counts.Rejections++
		case entities.VoteRequestInfo:
			counts.RequestInfo++
		}
	}
	return counts, nil
}

func (s *Store) UpsertRosterEntry(_ context.Context, entry entities.RosterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(entry.UserID)
	if existing, ok := s.roster[key]; ok {
		entry.Since = existing.Since
	}
	s.roster[key] = entry
	return nil
}

func (s *Store) IsActiveModerator(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.roster[strings.TrimSpace(userID)]
	return ok && entry.Active, nil
}

func (s *Store) ListActiveModerators(_ context.Context) ([]entities.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.RosterEntry, 0)
	for _, entry := range s.roster {
		if entry.Active {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items, nil
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
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.ReviewRepository = (*Store)(nil)
	_ ports.RosterRepository = (*Store)(nil)
	_ ports.OutboxWriter     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
