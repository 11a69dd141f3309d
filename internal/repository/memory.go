package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/report-portal/internal/domain"
)

var (
	_ ReportRepository = (*InMemoryReportRepository)(nil)
	_ UserRepository   = (*InMemoryUserRepository)(nil)
)

// InMemoryReportRepository keeps reports in process memory. It backs development
// runs without Postgres and the service tests.
type InMemoryReportRepository struct {
	mu       sync.RWMutex
	nextID   int64
	reports  map[int64]domain.Report
	periods  map[domain.PeriodKey]int64
	reserved map[domain.PeriodKey]struct{}
}

// NewInMemoryReportRepository constructs an empty registry.
func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{
		reports:  make(map[int64]domain.Report),
		periods:  make(map[domain.PeriodKey]int64),
		reserved: make(map[domain.PeriodKey]struct{}),
	}
}

// Create reserves the period key, runs attach without holding the lock, then
// publishes the row. Only one caller can hold a reservation for a key.
func (r *InMemoryReportRepository) Create(ctx context.Context, report *domain.Report, attach AttachFunc) error {
	key := report.Key()

	r.mu.Lock()
	if _, taken := r.periods[key]; taken {
		r.mu.Unlock()
		return ErrPeriodTaken
	}
	if _, pending := r.reserved[key]; pending {
		r.mu.Unlock()
		return ErrPeriodTaken
	}
	r.reserved[key] = struct{}{}
	r.nextID++
	report.ID = r.nextID
	if report.SubmittedAt.IsZero() {
		report.SubmittedAt = time.Now().UTC()
	}
	r.mu.Unlock()

	if attach != nil {
		if err := attach(ctx, report); err != nil {
			r.mu.Lock()
			delete(r.reserved, key)
			r.mu.Unlock()
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reserved, key)
	r.periods[key] = report.ID
	r.reports[report.ID] = cloneReport(*report)
	return nil
}

func (r *InMemoryReportRepository) Exists(_ context.Context, key domain.PeriodKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.periods[key]
	return ok, nil
}

func (r *InMemoryReportRepository) GetByID(_ context.Context, id int64) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneReport(report)
	return &out, nil
}

func (r *InMemoryReportRepository) List(_ context.Context, filter ReportFilter) ([]domain.Report, error) {
	r.mu.RLock()
	result := make([]domain.Report, 0, len(r.reports))
	for _, report := range r.reports {
		if filter.District != nil && report.District != *filter.District {
			continue
		}
		result = append(result, cloneReport(report))
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].SubmittedAt.After(result[j].SubmittedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func cloneReport(report domain.Report) domain.Report {
	if report.Filename != nil {
		name := *report.Filename
		report.Filename = &name
	}
	return report
}

// InMemoryUserRepository keeps accounts in process memory.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewInMemoryUserRepository constructs an empty account store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *InMemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}
