package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moodfeed/internal/models"
	"moodfeed/internal/sentiment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI stores created posts and serves them newest first. The list is
// snapshotted before onList runs, so a blocked fetch misses later creates.
type fakeAPI struct {
	mu       sync.Mutex
	posts    []models.Post
	lists    int
	onCreate func(ctx context.Context) error
	onList   func(ctx context.Context) error
}

func (a *fakeAPI) ListPosts(ctx context.Context) ([]models.Post, error) {
	a.mu.Lock()
	a.lists++
	hook := a.onList
	out := make([]models.Post, len(a.posts))
	copy(out, a.posts)
	a.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *fakeAPI) CreatePost(ctx context.Context, content, emoji string) (*models.Post, error) {
	if a.onCreate != nil {
		if err := a.onCreate(ctx); err != nil {
			return nil, err
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now().UTC()
	p := models.Post{ID: uuid.NewString(), Content: content, FeelingEmoji: emoji, CreatedAt: now, UpdatedAt: now}
	a.posts = append([]models.Post{p}, a.posts...)
	return &p, nil
}

func (a *fakeAPI) listCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lists
}

func contents(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Post.Content
	}
	return out
}

func TestSubmit_PendingEntryComesFirst(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		posts: []models.Post{{ID: "server-1", Content: "older"}},
		onCreate: func(context.Context) error {
			<-release
			return nil
		},
	}
	author := models.UserSnapshot{ID: "u1", Username: "alice"}
	f := New(api, WithAuthor(author))
	require.NoError(t, f.Poll(context.Background()))

	done := make(chan *Entry)
	go func() {
		e, err := f.Submit(context.Background(), "I am so happy today")
		assert.NoError(t, err)
		done <- e
	}()

	require.Eventually(t, func() bool { return len(f.Items()) == 2 }, time.Second, time.Millisecond)
	items := f.Items()
	assert.True(t, items[0].Pending)
	assert.Equal(t, "I am so happy today", items[0].Post.Content)
	assert.Equal(t, sentiment.Classify("I am so happy today"), items[0].Post.FeelingEmoji)
	assert.Equal(t, items[0].TempID, items[0].Post.ID)
	assert.Equal(t, "alice", items[0].Post.OwnerName(""))
	assert.Equal(t, "older", items[1].Post.Content)

	close(release)
	entry := <-done
	assert.Equal(t, StateConfirmed, entry.State)
	assert.NotEqual(t, entry.TempID, entry.Post.ID)
}

func TestSubmit_ConfirmedEntryStaysUntilNextPoll(t *testing.T) {
	api := &fakeAPI{}
	f := New(api)

	entry, err := f.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, entry.State)

	items := f.Items()
	require.Len(t, items, 1)
	assert.False(t, items[0].Pending)

	require.NoError(t, f.Poll(context.Background()))
	items = f.Items()
	require.Len(t, items, 1, "the polled copy replaces the optimistic one")
	assert.Equal(t, entry.Post.ID, items[0].Post.ID)
	assert.Empty(t, items[0].TempID)
}

func TestSubmit_FailureRemovesEntry(t *testing.T) {
	apiErr := &APIError{Status: 401, Message: "Unauthorized - Authentication required"}
	api := &fakeAPI{onCreate: func(context.Context) error { return apiErr }}
	f := New(api)

	entry, err := f.Submit(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, "Unauthorized - Authentication required", err.Error())
	assert.Equal(t, StateFailed, entry.State)
	assert.Same(t, apiErr, entry.Err)
	assert.Empty(t, f.Items())
}

func TestSubmit_FailureRemovesOnlyItsEntry(t *testing.T) {
	var calls int
	var mu sync.Mutex
	api := &fakeAPI{onCreate: func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 2 {
			return errors.New("boom")
		}
		return nil
	}}
	f := New(api)

	_, err := f.Submit(context.Background(), "first")
	require.NoError(t, err)
	_, err = f.Submit(context.Background(), "second")
	require.Error(t, err)
	_, err = f.Submit(context.Background(), "third")
	require.NoError(t, err)

	assert.Equal(t, []string{"third", "first"}, contents(f.Items()))
}

func TestSubmit_RejectsEmptyDraft(t *testing.T) {
	api := &fakeAPI{onCreate: func(context.Context) error {
		t.Fatal("empty drafts must not reach the server")
		return nil
	}}
	f := New(api)

	_, err := f.Submit(context.Background(), "")
	require.Error(t, err)
	assert.Empty(t, f.Items())
}

func TestPoll_ReplacesConfirmedWholesale(t *testing.T) {
	api := &fakeAPI{posts: []models.Post{{ID: "a", Content: "a"}, {ID: "b", Content: "b"}}}
	f := New(api)
	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []string{"a", "b"}, contents(f.Items()))

	api.mu.Lock()
	api.posts = []models.Post{{ID: "c", Content: "c"}}
	api.mu.Unlock()
	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []string{"c"}, contents(f.Items()))
}

func TestPoll_ErrorKeepsPreviousList(t *testing.T) {
	api := &fakeAPI{posts: []models.Post{{ID: "a", Content: "a"}}}
	f := New(api)
	require.NoError(t, f.Poll(context.Background()))

	api.onList = func(context.Context) error { return errors.New("network down") }
	require.Error(t, f.Poll(context.Background()))
	assert.Equal(t, []string{"a"}, contents(f.Items()))
}

func TestPoll_KeepsEntryConfirmedDuringFetch(t *testing.T) {
	listing := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{}
	f := New(api)

	api.onList = func(context.Context) error {
		close(listing)
		<-release
		return nil
	}
	pollDone := make(chan error)
	go func() { pollDone <- f.Poll(context.Background()) }()
	<-listing

	api.mu.Lock()
	api.onList = nil
	api.mu.Unlock()

	// confirmed after the in-flight fetch started, so that fetch cannot contain it
	_, err := f.Submit(context.Background(), "late")
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-pollDone)
	assert.Equal(t, []string{"late"}, contents(f.Items()))
}

func TestPoll_StaleResultAfterStop(t *testing.T) {
	listing := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{
		posts: []models.Post{{ID: "a", Content: "a"}},
		onList: func(context.Context) error {
			close(listing)
			<-release
			return nil
		},
	}
	f := New(api)

	pollDone := make(chan error)
	go func() { pollDone <- f.Poll(context.Background()) }()
	<-listing
	f.Stop()
	close(release)

	assert.ErrorIs(t, <-pollDone, ErrStopped)
	assert.Empty(t, f.Items())
	assert.ErrorIs(t, f.Poll(context.Background()), ErrStopped)
}

func TestPoll_StaleResultAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{
		posts: []models.Post{{ID: "a", Content: "a"}},
		onList: func(context.Context) error {
			cancel()
			return nil
		},
	}
	f := New(api)

	assert.ErrorIs(t, f.Poll(ctx), context.Canceled)
	assert.Empty(t, f.Items())
}

func TestRun_PollsUntilCancelled(t *testing.T) {
	api := &fakeAPI{}
	f := New(api)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- f.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return api.listCalls() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRun_StopEndsLoop(t *testing.T) {
	api := &fakeAPI{}
	f := New(api)

	done := make(chan error)
	go func() { done <- f.Run(context.Background(), time.Hour) }()

	require.Eventually(t, func() bool { return api.listCalls() == 1 }, time.Second, time.Millisecond)
	f.Stop()
	f.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestRun_RejectsNonPositiveInterval(t *testing.T) {
	assert.Error(t, New(&fakeAPI{}).Run(context.Background(), 0))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "confirmed", StateConfirmed.String())
	assert.Equal(t, "failed", StateFailed.String())
}
