// Package feed merges locally submitted posts with the server's post list.
//
// Submitted drafts appear immediately as optimistic entries. The confirmed
// list is refreshed by polling and replaced wholesale on every successful
// fetch; there is no per-id reconciliation.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"moodfeed/internal/models"
	"moodfeed/internal/sentiment"
	"moodfeed/internal/validation"

	"github.com/google/uuid"
)

// ErrStopped is returned by Poll once Stop was called. Results of fetches
// that were in flight at that moment are discarded.
var ErrStopped = errors.New("feed stopped")

// errStale marks a poll whose result was superseded by a newer one.
var errStale = errors.New("stale poll result")

// State is the lifecycle of an optimistic entry.
type State int

const (
	StatePending State = iota
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is a locally submitted post. Post.ID is the temporary id until the
// server confirms it, after which Post is the server's copy.
type Entry struct {
	TempID string
	Post   models.Post
	State  State
	Err    error

	// poll sequence at confirmation; the first poll started after it drops the entry
	confirmedSeq uint64
}

// Item is one row of the rendered feed.
type Item struct {
	Post    models.Post
	Pending bool
	TempID  string
}

// API is the subset of the posts HTTP surface the feed consumes.
type API interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, content, feelingEmoji string) (*models.Post, error)
}

// Feed holds the confirmed server list and the optimistic entries. It is safe
// for concurrent use.
type Feed struct {
	api     API
	author  *models.UserSnapshot
	lexicon *sentiment.Lexicon
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.Mutex
	confirmed  []models.Post
	optimistic []*Entry
	pollSeq    uint64
	appliedSeq uint64
	stopped    bool
	done       chan struct{}
	stopOnce   sync.Once
}

// Option configures a Feed.
type Option func(*Feed)

// WithAuthor sets the snapshot shown as owner of optimistic entries.
func WithAuthor(author models.UserSnapshot) Option {
	return func(f *Feed) { f.author = &author }
}

// WithLexicon overrides the lexicon used to pre-compute emoji.
func WithLexicon(lex *sentiment.Lexicon) Option {
	return func(f *Feed) { f.lexicon = lex }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Feed) { f.logger = l }
}

// New returns an empty feed backed by api.
func New(api API, opts ...Option) *Feed {
	f := &Feed{
		api:     api,
		lexicon: sentiment.DefaultLexicon(),
		logger:  slog.Default(),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit validates draft, shows it at the front of the feed as a pending
// entry and creates it on the server. On failure the entry is removed and the
// server's error is returned unchanged.
func (f *Feed) Submit(ctx context.Context, draft string) (*Entry, error) {
	if err := validation.ValidateContent(draft); err != nil {
		return nil, err
	}

	now := f.now().UTC()
	entry := &Entry{
		TempID: uuid.NewString(),
		State:  StatePending,
	}
	entry.Post = models.Post{
		ID:           entry.TempID,
		Content:      draft,
		FeelingEmoji: f.lexicon.Classify(draft),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if f.author != nil {
		entry.Post.Owner = models.Resolved(f.author.ID, *f.author)
	}

	f.mu.Lock()
	f.optimistic = append([]*Entry{entry}, f.optimistic...)
	f.mu.Unlock()

	created, err := f.api.CreatePost(ctx, entry.Post.Content, entry.Post.FeelingEmoji)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		entry.State = StateFailed
		entry.Err = err
		f.removeLocked(entry.TempID)
		return entry, err
	}
	entry.State = StateConfirmed
	entry.Post = *created
	entry.confirmedSeq = f.pollSeq
	return entry, nil
}

func (f *Feed) removeLocked(tempID string) {
	kept := f.optimistic[:0]
	for _, e := range f.optimistic {
		if e.TempID != tempID {
			kept = append(kept, e)
		}
	}
	f.optimistic = kept
}

// Poll fetches the full post list and replaces the confirmed list with it.
// A result is discarded when the feed was stopped, ctx was cancelled, or a
// poll started later has already been applied.
func (f *Feed) Poll(ctx context.Context) error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return ErrStopped
	}
	f.pollSeq++
	seq := f.pollSeq
	f.mu.Unlock()

	posts, err := f.api.ListPosts(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.stopped:
		return ErrStopped
	case ctx.Err() != nil:
		return ctx.Err()
	case seq < f.appliedSeq:
		return errStale
	}

	f.appliedSeq = seq
	f.confirmed = posts
	kept := f.optimistic[:0]
	for _, e := range f.optimistic {
		if e.State == StateConfirmed && e.confirmedSeq < seq {
			continue
		}
		kept = append(kept, e)
	}
	f.optimistic = kept
	return nil
}

// Run polls immediately and then every interval until ctx is cancelled or
// Stop is called. Poll errors are logged and do not end the loop.
func (f *Feed) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("feed: poll interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := f.Poll(ctx); err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, errStale) {
				f.logger.WarnContext(ctx, "feed poll failed", slog.String("error", err.Error()))
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-f.done:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends Run and makes every later or in-flight Poll a no-op.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
		close(f.done)
	})
}

// Items returns the optimistic entries, newest first, followed by the
// confirmed posts in server order.
func (f *Feed) Items() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]Item, 0, len(f.optimistic)+len(f.confirmed))
	for _, e := range f.optimistic {
		items = append(items, Item{Post: e.Post, Pending: e.State == StatePending, TempID: e.TempID})
	}
	for _, p := range f.confirmed {
		items = append(items, Item{Post: p})
	}
	return items
}
