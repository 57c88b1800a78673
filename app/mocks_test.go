package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/domain/order"
	"github.com/openshelf/openshelf/ports"
)

// mockUserStore implements ports.UserStore for testing.
type mockUserStore struct {
	mu    sync.RWMutex
	users map[string]identity.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]identity.User)}
}

func (m *mockUserStore) Get(ctx context.Context, id string) (identity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return identity.User{}, ports.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = identity.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return identity.User{}, ports.ErrNotFound
}

func (m *mockUserStore) Create(ctx context.Context, u identity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ports.ErrDuplicate
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Update(ctx context.Context, u identity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ports.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) List(ctx context.Context, limit, offset int) ([]identity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]identity.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockUserStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// mockResetTokenStore implements ports.ResetTokenStore for testing.
type mockResetTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]ports.ResetToken // by user ID
}

func newMockResetTokenStore() *mockResetTokenStore {
	return &mockResetTokenStore{tokens: make(map[string]ports.ResetToken)}
}

func (m *mockResetTokenStore) Save(ctx context.Context, t ports.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.UserID] = t
	return nil
}

func (m *mockResetTokenStore) GetByHash(ctx context.Context, hash []byte) (ports.ResetToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if string(t.Hash) == string(hash) {
			return t, nil
		}
	}
	return ports.ResetToken{}, ports.ErrNotFound
}

func (m *mockResetTokenStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

func (m *mockResetTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tokens {
		if now.After(t.ExpiresAt) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

// mockBookStore implements ports.BookStore for testing.
type mockBookStore struct {
	mu    sync.RWMutex
	books map[string]catalog.Book
}

func newMockBookStore() *mockBookStore {
	return &mockBookStore{books: make(map[string]catalog.Book)}
}

func (m *mockBookStore) Get(ctx context.Context, id string) (catalog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return catalog.Book{}, ports.ErrNotFound
	}
	return b, nil
}

func (m *mockBookStore) List(ctx context.Context, opts catalog.ListOptions) (catalog.Page[catalog.Book], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	opts = opts.Normalized()

	var all []catalog.Book
	for _, b := range m.books {
		if !opts.IncludeInactive && !b.IsActive {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(opts.Search)) {
			continue
		}
		if opts.CategoryID != "" && !containsStr(b.CategoryIDs, opts.CategoryID) {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	page := catalog.Page[catalog.Book]{
		Total:      int64(len(all)),
		PageNumber: opts.Page,
		PerPage:    opts.PerPage,
	}
	off := opts.Offset()
	if off < len(all) {
		all = all[off:]
		if opts.PerPage < len(all) {
			all = all[:opts.PerPage]
		}
		page.Items = all
	}
	return page, nil
}

func (m *mockBookStore) Create(ctx context.Context, b catalog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
	return nil
}

func (m *mockBookStore) Update(ctx context.Context, b catalog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return ports.ErrNotFound
	}
	m.books[b.ID] = b
	return nil
}

func (m *mockBookStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

// mockCategoryStore implements ports.CategoryStore for testing.
type mockCategoryStore struct {
	mu         sync.RWMutex
	categories map[string]catalog.Category
}

func newMockCategoryStore() *mockCategoryStore {
	return &mockCategoryStore{categories: make(map[string]catalog.Category)}
}

func (m *mockCategoryStore) Get(ctx context.Context, id string) (catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return catalog.Category{}, ports.ErrNotFound
	}
	return c, nil
}

func (m *mockCategoryStore) GetByName(ctx context.Context, name string) (catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return catalog.Category{}, ports.ErrNotFound
}

func (m *mockCategoryStore) List(ctx context.Context) ([]catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]catalog.Category, 0, len(m.categories))
	for _, c := range m.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (m *mockCategoryStore) Create(ctx context.Context, c catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return ports.ErrDuplicate
		}
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryStore) Update(ctx context.Context, c catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return ports.ErrNotFound
	}
	for id, existing := range m.categories {
		if id != c.ID && existing.Name == c.Name {
			return ports.ErrDuplicate
		}
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

// mockPurchaseStore implements ports.PurchaseStore for testing.
type mockPurchaseStore struct {
	mu        sync.RWMutex
	purchases map[string]order.Purchase
}

func newMockPurchaseStore() *mockPurchaseStore {
	return &mockPurchaseStore{purchases: make(map[string]order.Purchase)}
}

func (m *mockPurchaseStore) Get(ctx context.Context, id string) (order.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.purchases[id]
	if !ok {
		return order.Purchase{}, ports.ErrNotFound
	}
	return p, nil
}

func (m *mockPurchaseStore) ListByUser(ctx context.Context, userID string) ([]order.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []order.Purchase
	for _, p := range m.purchases {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockPurchaseStore) List(ctx context.Context, status order.Status, limit, offset int) ([]order.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]order.Purchase, 0, len(m.purchases))
	for _, p := range m.purchases {
		if status != "" && p.Status != status {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockPurchaseStore) Create(ctx context.Context, p order.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases[p.ID] = p
	return nil
}

func (m *mockPurchaseStore) UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[id]
	if !ok {
		return ports.ErrNotFound
	}
	m.purchases[id] = p.WithStatus(status, at)
	return nil
}

func (m *mockPurchaseStore) ExistsActive(ctx context.Context, userID, bookID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.purchases {
		if p.UserID == userID && p.BookID == bookID && p.Status != order.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPurchaseStore) Stats(ctx context.Context) (ports.PurchaseStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stats ports.PurchaseStats
	for _, p := range m.purchases {
		stats.Total++
		switch p.Status {
		case order.StatusPending:
			stats.Pending++
		case order.StatusCompleted:
			stats.Completed++
			stats.Revenue += p.Amount
		case order.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (m *mockPurchaseStore) RevenueByDay(ctx context.Context, from, to time.Time) ([]ports.RevenuePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fromDay, toDay := from.Format("2006-01-02"), to.Format("2006-01-02")
	byDay := make(map[string]*ports.RevenuePoint)
	for _, p := range m.purchases {
		day := p.UpdatedAt.Format("2006-01-02")
		if p.Status != order.StatusCompleted || day < fromDay || day > toDay {
			continue
		}
		point, ok := byDay[day]
		if !ok {
			point = &ports.RevenuePoint{Day: day}
			byDay[day] = point
		}
		point.Orders++
		point.Revenue += p.Amount
	}
	var points []ports.RevenuePoint
	for _, p := range byDay {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points, nil
}

// mockLibraryStore implements ports.LibraryStore for testing.
type mockLibraryStore struct {
	mu    sync.RWMutex
	books *mockBookStore
	owned map[string][]string // user ID -> book IDs in added order
}

func newMockLibraryStore(books *mockBookStore) *mockLibraryStore {
	return &mockLibraryStore{books: books, owned: make(map[string][]string)}
}

func (m *mockLibraryStore) Add(ctx context.Context, userID, bookID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if containsStr(m.owned[userID], bookID) {
		return nil
	}
	m.owned[userID] = append(m.owned[userID], bookID)
	return nil
}

func (m *mockLibraryStore) Remove(ctx context.Context, userID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.owned[userID]
	for i, id := range ids {
		if id == bookID {
			m.owned[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (m *mockLibraryStore) Owns(ctx context.Context, userID, bookID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return containsStr(m.owned[userID], bookID), nil
}

func (m *mockLibraryStore) ListByUser(ctx context.Context, userID string) ([]catalog.Book, error) {
	m.mu.RLock()
	ids := append([]string(nil), m.owned[userID]...)
	m.mu.RUnlock()

	var result []catalog.Book
	for i := len(ids) - 1; i >= 0; i-- {
		b, err := m.books.Get(ctx, ids[i])
		if err != nil {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (m *mockLibraryStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.owned[userID])), nil
}

// mockReviewStore implements ports.ReviewStore for testing.
type mockReviewStore struct {
	mu      sync.RWMutex
	reviews map[string]catalog.Review
}

func newMockReviewStore() *mockReviewStore {
	return &mockReviewStore{reviews: make(map[string]catalog.Review)}
}

func (m *mockReviewStore) Get(ctx context.Context, id string) (catalog.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[id]
	if !ok {
		return catalog.Review{}, ports.ErrNotFound
	}
	return r, nil
}

func (m *mockReviewStore) GetByUserAndBook(ctx context.Context, userID, bookID string) (catalog.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reviews {
		if r.UserID == userID && r.BookID == bookID {
			return r, nil
		}
	}
	return catalog.Review{}, ports.ErrNotFound
}

func (m *mockReviewStore) ListByBook(ctx context.Context, bookID string) ([]catalog.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []catalog.Review
	for _, r := range m.reviews {
		if r.BookID == bookID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockReviewStore) ListByUser(ctx context.Context, userID string) ([]catalog.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []catalog.Review
	for _, r := range m.reviews {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockReviewStore) Create(ctx context.Context, r catalog.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.UserID == r.UserID && existing.BookID == r.BookID {
			return ports.ErrDuplicate
		}
	}
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewStore) Update(ctx context.Context, r catalog.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[r.ID]; !ok {
		return ports.ErrNotFound
	}
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

// fakeTokens implements ports.TokenService for testing.
type fakeTokens struct{}

func (fakeTokens) Issue(id identity.Identity) (string, error) {
	return "token-" + id.UserID, nil
}

func (fakeTokens) Verify(token string) (identity.Identity, error) {
	if !strings.HasPrefix(token, "token-") {
		return identity.Identity{}, ports.ErrNotFound
	}
	return identity.Identity{UserID: strings.TrimPrefix(token, "token-")}, nil
}

func containsStr(s []string, v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}
