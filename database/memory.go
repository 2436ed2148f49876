package database

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"talon/errs"
	"talon/types"
)

// Operation names for fault injection, see Memory.FailOn.
const (
	OpTweetInsert = "tweets.insert"
	OpTweetUpdate = "tweets.update"
	OpTweetDelete = "tweets.delete"
	OpUserInsert  = "users.insert"
	OpUserUpdate  = "users.update"
)

type fault struct {
	remaining int
	err       error
}

// Memory is the in-memory Store used by the test suites. It keeps insertion
// order, deep-copies aggregates in and out, and supports two failure knobs:
// FailOn injects a storage error into the nth call of a write operation, and
// DisableTransactions makes Atomically report ErrNoTransactions so the saga
// fallback paths can be exercised.
type Memory struct {
	mu     sync.Mutex
	data   *memData
	noTx   bool
	faults map[string][]*fault
}

type memData struct {
	tweets     map[uuid.UUID]*types.Tweet
	tweetOrder []uuid.UUID
	users      map[uuid.UUID]*types.User
	userOrder  []uuid.UUID
}

func NewMemory() *Memory {
	return &Memory{
		data: &memData{
			tweets: make(map[uuid.UUID]*types.Tweet),
			users:  make(map[uuid.UUID]*types.User),
		},
		faults: make(map[string][]*fault),
	}
}

// FailOn makes the nth (1-based) call of the named write operation fail with
// a storage error wrapping cause. Faults queue up: a second FailOn on the
// same operation counts calls made after the first fault fires.
func (m *Memory) FailOn(op string, nth int, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.faults[op] = append(m.faults[op], &fault{remaining: nth, err: cause})
}

// DisableTransactions makes Atomically refuse to provide a transactional
// boundary, as a backend without multi-document transactions would.
func (m *Memory) DisableTransactions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.noTx = true
}

func (m *Memory) Tweets() TweetRepo { return &memTweets{m: m} }
func (m *Memory) Users() UserRepo   { return &memUsers{m: m} }

func (m *Memory) Atomically(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.noTx {
		return ErrNoTransactions
	}

	snapshot := m.data.clone()

	err := fn(&txStore{m: m})
	if err != nil {
		m.data = snapshot
		return err
	}

	return nil
}

// checkFault must be called with m.mu held.
func (m *Memory) checkFault(op string) error {
	queue := m.faults[op]
	if len(queue) == 0 {
		return nil
	}

	f := queue[0]

	f.remaining--
	if f.remaining > 0 {
		return nil
	}

	m.faults[op] = queue[1:]

	return errs.Wrap(errs.Storage, f.err, "%s failed", op)
}

// txStore hands out repos that skip locking; the transaction already holds
// the store mutex.
type txStore struct {
	m *Memory
}

func (s *txStore) Tweets() TweetRepo { return &memTweets{m: s.m, inTx: true} }
func (s *txStore) Users() UserRepo   { return &memUsers{m: s.m, inTx: true} }

func (s *txStore) Atomically(ctx context.Context, fn func(Store) error) error {
	// Already inside the boundary; just run.
	return fn(s)
}

func (d *memData) clone() *memData {
	out := &memData{
		tweets:     make(map[uuid.UUID]*types.Tweet, len(d.tweets)),
		tweetOrder: append([]uuid.UUID(nil), d.tweetOrder...),
		users:      make(map[uuid.UUID]*types.User, len(d.users)),
		userOrder:  append([]uuid.UUID(nil), d.userOrder...),
	}

	for id, t := range d.tweets {
		out.tweets[id] = t.Clone()
	}

	for id, u := range d.users {
		out.users[id] = u.Clone()
	}

	return out
}

type memTweets struct {
	m    *Memory
	inTx bool
}

func (r *memTweets) begin() func() {
	if r.inTx {
		return func() {}
	}

	r.m.mu.Lock()

	return r.m.mu.Unlock
}

func (r *memTweets) Get(ctx context.Context, id uuid.UUID) (*types.Tweet, error) {
	defer r.begin()()

	t, ok := r.m.data.tweets[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "tweet %s not found", id)
	}

	return t.Clone(), nil
}

func (r *memTweets) Insert(ctx context.Context, tweet *types.Tweet) error {
	defer r.begin()()

	if err := r.m.checkFault(OpTweetInsert); err != nil {
		return err
	}

	r.m.data.tweets[tweet.ID] = tweet.Clone()
	r.m.data.tweetOrder = append(r.m.data.tweetOrder, tweet.ID)

	return nil
}

func (r *memTweets) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.begin()()

	if err := r.m.checkFault(OpTweetDelete); err != nil {
		return err
	}

	if _, ok := r.m.data.tweets[id]; !ok {
		return errs.New(errs.NotFound, "tweet %s not found", id)
	}

	delete(r.m.data.tweets, id)

	for i, tid := range r.m.data.tweetOrder {
		if tid == id {
			r.m.data.tweetOrder = append(r.m.data.tweetOrder[:i], r.m.data.tweetOrder[i+1:]...)
			break
		}
	}

	return nil
}

func (r *memTweets) Update(ctx context.Context, id uuid.UUID, mutate func(*types.Tweet) error) (*types.Tweet, error) {
	defer r.begin()()

	if err := r.m.checkFault(OpTweetUpdate); err != nil {
		return nil, err
	}

	t, ok := r.m.data.tweets[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "tweet %s not found", id)
	}

	next := t.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	r.m.data.tweets[id] = next

	return next.Clone(), nil
}

func (r *memTweets) ByComment(ctx context.Context, commentID uuid.UUID) (*types.Tweet, error) {
	defer r.begin()()

	for _, id := range r.m.data.tweetOrder {
		t := r.m.data.tweets[id]
		if t.CommentIndex(commentID) >= 0 {
			return t.Clone(), nil
		}
	}

	return nil, errs.New(errs.NotFound, "no tweet contains comment %s", commentID)
}

func (r *memTweets) ByReply(ctx context.Context, replyID uuid.UUID) (*types.Tweet, error) {
	defer r.begin()()

	for _, id := range r.m.data.tweetOrder {
		t := r.m.data.tweets[id]
		if ci, _ := t.ReplyIndex(replyID); ci >= 0 {
			return t.Clone(), nil
		}
	}

	return nil, errs.New(errs.NotFound, "no tweet contains reply %s", replyID)
}

func (r *memTweets) All(ctx context.Context) ([]types.Tweet, error) {
	defer r.begin()()

	out := make([]types.Tweet, 0, len(r.m.data.tweetOrder))
	for _, id := range r.m.data.tweetOrder {
		out = append(out, *r.m.data.tweets[id].Clone())
	}

	return out, nil
}

func (r *memTweets) ByAuthor(ctx context.Context, author uuid.UUID) ([]types.Tweet, error) {
	return r.ByAuthors(ctx, []uuid.UUID{author})
}

func (r *memTweets) ByAuthors(ctx context.Context, authors []uuid.UUID) ([]types.Tweet, error) {
	defer r.begin()()

	set := make(map[uuid.UUID]struct{}, len(authors))
	for _, a := range authors {
		set[a] = struct{}{}
	}

	out := []types.Tweet{}
	for _, id := range r.m.data.tweetOrder {
		t := r.m.data.tweets[id]
		if _, ok := set[t.Author]; ok {
			out = append(out, *t.Clone())
		}
	}

	return out, nil
}

type memUsers struct {
	m    *Memory
	inTx bool
}

func (r *memUsers) begin() func() {
	if r.inTx {
		return func() {}
	}

	r.m.mu.Lock()

	return r.m.mu.Unlock
}

func (r *memUsers) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	defer r.begin()()

	u, ok := r.m.data.users[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "user %s not found", id)
	}

	return u.Clone(), nil
}

func (r *memUsers) GetMany(ctx context.Context, ids []uuid.UUID) ([]types.User, error) {
	defer r.begin()()

	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := []types.User{}

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if u, ok := r.m.data.users[id]; ok {
			out = append(out, *u.Clone())
		}
	}

	return out, nil
}

func (r *memUsers) ByEmail(ctx context.Context, email string) (*types.User, error) {
	defer r.begin()()

	for _, id := range r.m.data.userOrder {
		u := r.m.data.users[id]
		if u.Email == email {
			return u.Clone(), nil
		}
	}

	return nil, errs.New(errs.NotFound, "no user with email %s", email)
}

func (r *memUsers) Insert(ctx context.Context, user *types.User) error {
	defer r.begin()()

	if err := r.m.checkFault(OpUserInsert); err != nil {
		return err
	}

	r.m.data.users[user.ID] = user.Clone()
	r.m.data.userOrder = append(r.m.data.userOrder, user.ID)

	return nil
}

func (r *memUsers) Update(ctx context.Context, id uuid.UUID, mutate func(*types.User) error) (*types.User, error) {
	defer r.begin()()

	if err := r.m.checkFault(OpUserUpdate); err != nil {
		return nil, err
	}

	u, ok := r.m.data.users[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "user %s not found", id)
	}

	next := u.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	r.m.data.users[id] = next

	return next.Clone(), nil
}

func (r *memUsers) Search(ctx context.Context, key string) ([]types.User, error) {
	defer r.begin()()

	needle := strings.ToLower(key)
	out := []types.User{}

	for _, id := range r.m.data.userOrder {
		u := r.m.data.users[id]
		if strings.Contains(strings.ToLower(u.FullName), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) ||
			strings.Contains(strings.ToLower(u.Location), needle) {
			out = append(out, *u.Clone())
		}
	}

	return out, nil
}
