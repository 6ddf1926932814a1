package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/trian/landing/backend/wishes-service/internal/moderation"
	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/internal/wish/repository"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
)

// Service defines the wish operations used by the handler layer.
type Service interface {
	List(ctx context.Context) []wish.Wish
	Create(ctx context.Context, in CreateInput) (wish.Wish, error)
	Delete(ctx context.Context, id int) error
	Snapshot(ctx context.Context) ([]byte, error)
	Ready(ctx context.Context) error
	Backend() string
}

// Notifier is told about every change that reached storage.
type Notifier interface {
	WishCreated(w wish.Wish)
	WishDeleted(id int)
}

// CreateInput is what a visitor submits. Presence is checked on the raw
// values; surrounding whitespace is trimmed before storing.
type CreateInput struct {
	Author  string `json:"author" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Censor masks blocked words and reports how many it masked.
type Censor interface {
	Censor(s string) (string, int)
}

type Options struct {
	Title    string
	Location *time.Location
	// Lock serializes read-modify-write cycles inside this process.
	Lock bool
	// StrictWrites turns a failed save into ErrPersist instead of reporting success.
	StrictWrites bool
	Now          func() time.Time
	Notifier     Notifier
	// Censor, when set, is applied to author and content before storing.
	Censor Censor
}

var validate = validator.New()

type wishService struct {
	store *Store
	opts  Options
	mu    sync.Mutex
}

// New returns a Service persisting through repo.
func New(repo repository.Repository, opts Options) Service {
	if opts.Title == "" {
		opts.Title = wish.DefaultTitle
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &wishService{store: NewStore(repo), opts: opts}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts Options, seed ...wish.Wish) Service {
	return New(repository.NewMemoryRepo(seed...), opts)
}

func (s *wishService) Backend() string { return s.store.Backend() }

func (s *wishService) lock() func() {
	if !s.opts.Lock {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *wishService) List(ctx context.Context) []wish.Wish {
	return s.store.LoadAll(ctx)
}

func (s *wishService) Create(ctx context.Context, in CreateInput) (wish.Wish, error) {
	if err := validate.Struct(in); err != nil {
		return wish.Wish{}, fmt.Errorf("%w: %v", wish.ErrInvalidInput, err)
	}
	author := strings.TrimSpace(in.Author)
	content := strings.TrimSpace(in.Content)
	if author == "" || content == "" {
		return wish.Wish{}, fmt.Errorf("%w: blank after trimming", wish.ErrInvalidInput)
	}
	if s.opts.Censor != nil {
		var a, c int
		author, a = s.opts.Censor.Censor(author)
		content, c = s.opts.Censor.Censor(content)
		if a+c > 0 {
			metrics.WishesCensored.Inc()
		}
	}

	unlock := s.lock()
	defer unlock()

	wishes := s.store.LoadAll(ctx)
	w := wish.Wish{
		ID:      wish.NextID(wishes),
		Title:   s.opts.Title,
		Author:  author,
		Content: content,
		Date:    wish.FormatDate(s.opts.Now(), s.opts.Location),
	}
	wishes = append([]wish.Wish{w}, wishes...)

	if !s.store.SaveAll(ctx, wishes) {
		if s.opts.StrictWrites {
			return wish.Wish{}, wish.ErrPersist
		}
		return w, nil
	}
	metrics.WishesCreated.Inc()
	metrics.WishLanguages.WithLabelValues(moderation.Language(content)).Inc()
	if s.opts.Notifier != nil {
		s.opts.Notifier.WishCreated(w)
	}
	return w, nil
}

func (s *wishService) Delete(ctx context.Context, id int) error {
	unlock := s.lock()
	defer unlock()

	wishes := s.store.LoadAll(ctx)
	kept := lo.Filter(wishes, func(w wish.Wish, _ int) bool { return w.ID != id })
	if len(kept) == len(wishes) {
		return wish.ErrNotFound
	}

	if !s.store.SaveAll(ctx, kept) {
		if s.opts.StrictWrites {
			return wish.ErrPersist
		}
		return nil
	}
	metrics.WishesDeleted.Inc()
	if s.opts.Notifier != nil {
		s.opts.Notifier.WishDeleted(id)
	}
	return nil
}

// Snapshot serializes the stored document; read errors are returned, not masked.
func (s *wishService) Snapshot(ctx context.Context) ([]byte, error) {
	wishes, err := s.store.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return repository.Encode(wishes)
}

func (s *wishService) Ready(ctx context.Context) error {
	_, err := s.store.Check(ctx)
	return err
}
