package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	seq       int
	appendErr  error
	countErr   error
	findIDsErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Tickets = append([]domain.TicketSummary(nil), u.Tickets...)
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create enforces the same uniqueness the Mongo indexes do.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	saved := cloneUser(user)
	saved.Tickets = existing.Tickets
	r.users[user.ID] = saved
	return nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findIDsErr != nil {
		return nil, r.findIDsErr
	}
	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context, f ports.UserFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, u := range r.users {
		if f.Username != "" && u.Username != f.Username {
			continue
		}
		if f.Email != "" && u.Email != f.Email {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubUserRepo) List(_ context.Context, page ports.Page) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page), int64(len(all)), nil
}

func (r *stubUserRepo) AppendTicket(_ context.Context, userID string, t domain.TicketSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tickets = append(u.Tickets, t)
	return nil
}

func (r *stubUserRepo) tickets(userID string) []domain.TicketSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		return append([]domain.TicketSummary(nil), u.Tickets...)
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-memory booking repository
// ---------------------------------------------------------------------------

type stubBookingRepo struct {
	byID      map[string]*domain.Booking
	seq       int
	createErr error
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: make(map[string]*domain.Booking)}
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookingRepo) sorted(keep func(*domain.Booking) bool) []*domain.Booking {
	var out []*domain.Booking
	for _, b := range r.byID {
		if keep(b) {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubBookingRepo) window(all []*domain.Booking, opts ports.BookingListOptions) []*domain.Booking {
	if opts.Skip >= int64(len(all)) {
		return []*domain.Booking{}
	}
	all = all[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(all)) {
		all = all[:opts.Limit]
	}
	return all
}

func (r *stubBookingRepo) FindByOwner(_ context.Context, ownerID string, opts ports.BookingListOptions) ([]*domain.Booking, error) {
	return r.window(r.sorted(func(b *domain.Booking) bool { return b.UserID == ownerID }), opts), nil
}

func (r *stubBookingRepo) FindAll(_ context.Context, opts ports.BookingListOptions) ([]*domain.Booking, error) {
	return r.window(r.sorted(func(*domain.Booking) bool { return true }), opts), nil
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	b.ID = fmt.Sprintf("booking-%d", r.seq)
	clone := *b
	r.byID[b.ID] = &clone
	return nil
}

func (r *stubBookingRepo) Save(_ context.Context, b *domain.Booking) error {
	if _, ok := r.byID[b.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	clone := *b
	r.byID[b.ID] = &clone
	return nil
}

func (r *stubBookingRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubBookingRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

// ---------------------------------------------------------------------------
// Token codec, idempotency store, mirror
// ---------------------------------------------------------------------------

type stubTokens struct {
	issueErr error
}

func (s *stubTokens) Issue(userID string) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}
	return "token-for-" + userID, nil
}

func (s *stubTokens) Verify(token string) (string, bool) {
	sub, ok := strings.CutPrefix(token, "token-for-")
	return sub, ok && sub != ""
}

type stubIdem struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdem() *stubIdem {
	return &stubIdem{keys: make(map[string]string)}
}

func (s *stubIdem) Lookup(_ context.Context, userID, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[userID+":"+key]
	return id, ok, nil
}

func (s *stubIdem) Remember(_ context.Context, userID, key, bookingID string) error {
	s.keys[userID+":"+key] = bookingID
	return nil
}

type recordingMirror struct {
	calls []domain.TicketSummary
}

func (m *recordingMirror) Mirror(_ context.Context, _ string, t domain.TicketSummary) {
	m.calls = append(m.calls, t)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func paginate[T any](all []T, page ports.Page) []T {
	page = page.Normalize(ports.DefaultPageSize)
	skip := int(page.Skip())
	if skip >= len(all) {
		return []T{}
	}
	all = all[skip:]
	if page.Size < len(all) {
		all = all[:page.Size]
	}
	return all
}

func ptr[T any](v T) *T { return &v }

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
