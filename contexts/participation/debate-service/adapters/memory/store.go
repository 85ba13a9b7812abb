package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/participation/debate-service/domain/entities"
	domainerrors "agora/contexts/participation/debate-service/domain/errors"
	"agora/contexts/participation/debate-service/ports"
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

	arguments map[string]entities.Argument
	comments  map[string]entities.Comment
	likes     map[string]entities.Like
	outbox    map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		arguments: make(map[string]entities.Argument),
		comments:  make(map[string]entities.Comment),
		likes:     make(map[string]entities.Like),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) CreateArgument(_ context.Context, arg entities.Argument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arguments[strings.TrimSpace(arg.ID)] = arg
	return nil
}

func (s *Store) GetArgument(_ context.Context, id string) (entities.Argument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arg, ok := s.arguments[strings.TrimSpace(id)]
	if !ok {
		return entities.Argument{}, domainerrors.ErrArgumentNotFound
	}
	return arg, nil
}

func (s *Store) UpdateArgumentText(_ context.Context, arg entities.Argument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.arguments[strings.TrimSpace(arg.ID)]
	if !ok {
		return domainerrors.ErrArgumentNotFound
	}
	existing.Title = arg.Title
	existing.Text = arg.Text
	existing.ChangedAt = arg.ChangedAt
	s.arguments[existing.ID] = existing
	return nil
}

func (s *Store) ListArguments(_ context.Context, target entities.EntityRef, kind entities.ArgumentKind) ([]entities.Argument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Argument, 0)
	for _, arg := range s.arguments {
		if arg.Target != target {
			continue
		}
		if kind != "" && arg.Kind != kind {
			continue
		}
		items = append(items, arg)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CreateComment(_ context.Context, comment entities.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	arg, ok := s.arguments[strings.TrimSpace(comment.ArgumentID)]
	if !ok {
		return domainerrors.ErrArgumentNotFound
	}
	s.comments[strings.TrimSpace(comment.ID)] = comment
	arg.CommentsCount++
	s.arguments[arg.ID] = arg
	return nil
}

func (s *Store) GetComment(_ context.Context, id string) (entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[strings.TrimSpace(id)]
	if !ok {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return comment, nil
}

func (s *Store) ListComments(_ context.Context, argumentID string) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.ArgumentID == strings.TrimSpace(argumentID) {
			items = append(items, comment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AddLike(_ context.Context, like entities.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.likes {
		if existing.Target == like.Target && existing.UserID == like.UserID {
			return domainerrors.ErrDuplicateLike
		}
	}
	if err := s.bumpLikeCount(like.Target, 1); err != nil {
		return err
	}
	s.likes[strings.TrimSpace(like.ID)] = like
	return nil
}

func (s *Store) RemoveLike(_ context.Context, target entities.LikeRef, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, like := range s.likes {
		if like.Target != target || like.UserID != strings.TrimSpace(userID) {
			continue
		}
		if err := s.bumpLikeCount(target, -1); err != nil {
			return err
		}
		delete(s.likes, key)
		return nil
	}
	return domainerrors.ErrLikeNotFound
}

func (s *Store) HasLiked(_ context.Context, target entities.LikeRef, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, like := range s.likes {
		if like.Target == target && like.UserID == strings.TrimSpace(userID) {
			return true, nil
		}
	}
	return false, nil
}

// bumpLikeCount maintains the cached counter on the liked row. Callers hold
// the write lock.
func (s *Store) bumpLikeCount(target entities.LikeRef, delta int) error {
	switch target.Kind {
	case entities.LikeArgument:
		arg, ok := s.arguments[strings.TrimSpace(target.ID)]
		if !ok {
			return domainerrors.ErrArgumentNotFound
		}
		arg.LikesCount += delta
		s.arguments[arg.ID] = arg
	case entities.LikeComment:
		comment, ok := s.comments[strings.TrimSpace(target.ID)]
		if !ok {
			return domainerrors.ErrCommentNotFound
		}
		comment.LikesCount += delta
		s.comments[comment.ID] = comment
	}
	return nil
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
	_ ports.ArgumentRepository = (*Store)(nil)
	_ ports.CommentRepository  = (*Store)(nil)
	_ ports.LikeRepository     = (*Store)(nil)
	_ ports.OutboxWriter       = (*Store)(nil)
	_ ports.OutboxRepository   = (*Store)(nil)
	_ ports.Clock              = (*Store)(nil)
	_ ports.IDGenerator        = (*Store)(nil)
)
