package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// AdminService covers user administration and store-wide reporting.
type AdminService struct {
	users      ports.UserStore
	books      ports.BookStore
	categories ports.CategoryStore
	purchases  ports.PurchaseStore
	logger     zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	users ports.UserStore,
	books ports.BookStore,
	categories ports.CategoryStore,
	purchases ports.PurchaseStore,
	logger zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:      users,
		books:      books,
		categories: categories,
		purchases:  purchases,
		logger:     logger,
	}
}

// Stats is the store-wide report returned to administrators.
type Stats struct {
	Users           int64
	Books           int64
	Categories      int64
	Orders          int64
	OrdersPending   int64
	OrdersCompleted int64
	OrdersCancelled int64
	Revenue         float64
}

// Stats aggregates store-wide counts and revenue.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	books, err := s.books.List(ctx, catalog.ListOptions{PerPage: 1, IncludeInactive: true})
	if err != nil {
		return Stats{}, err
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	ps, err := s.purchases.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Users:           users,
		Books:           books.Total,
		Categories:      int64(len(categories)),
		Orders:          ps.Total,
		OrdersPending:   ps.Pending,
		OrdersCompleted: ps.Completed,
		OrdersCancelled: ps.Cancelled,
		Revenue:         ps.Revenue,
	}, nil
}

// FinanceOverview is the revenue summary for the finance dashboard.
type FinanceOverview struct {
	Revenue         float64
	Orders          int64
	OrdersPending   int64
	OrdersCompleted int64
	OrdersCancelled int64
}

// FinanceOverview summarizes order volume and revenue.
func (s *AdminService) FinanceOverview(ctx context.Context) (FinanceOverview, error) {
	ps, err := s.purchases.Stats(ctx)
	if err != nil {
		return FinanceOverview{}, err
	}
	return FinanceOverview{
		Revenue:         ps.Revenue,
		Orders:          ps.Total,
		OrdersPending:   ps.Pending,
		OrdersCompleted: ps.Completed,
		OrdersCancelled: ps.Cancelled,
	}, nil
}

// FinanceTrends returns daily revenue between two dates, inclusive.
func (s *AdminService) FinanceTrends(ctx context.Context, from, to time.Time) ([]ports.RevenuePoint, error) {
	if to.Before(from) {
		return nil, apperr.BadRequest("End date must not be before start date")
	}
	points, err := s.purchases.RevenueByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []ports.RevenuePoint{}
	}
	return points, nil
}

// ListUsers returns sanitized users with pagination.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]identity.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]identity.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

// GetUser returns one sanitized user.
func (s *AdminService) GetUser(ctx context.Context, id string) (identity.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return identity.User{}, apperr.NotFound("User not found")
		}
		return identity.User{}, err
	}
	return user.Sanitized(), nil
}

// SetUserActive activates or deactivates an account.
func (s *AdminService) SetUserActive(ctx context.Context, caller identity.Identity, id string, active bool) (identity.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	if err := guardTarget(caller, user); err != nil {
		return identity.User{}, err
	}

	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return identity.User{}, err
	}

	s.logger.Info().Str("user_id", id).Bool("active", active).Msg("user active flag updated")
	return user.Sanitized(), nil
}

// SetUserRole changes an account's role.
func (s *AdminService) SetUserRole(ctx context.Context, caller identity.Identity, id string, role identity.Role) (identity.User, error) {
	if !role.Valid() {
		return identity.User{}, apperr.BadRequest("Invalid role")
	}
	// Only a super admin may grant or revoke the super admin role.
	if role == identity.RoleSuperAdmin && caller.Role != identity.RoleSuperAdmin {
		return identity.User{}, apperr.Forbidden("You do not have permission to access this route")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	if err := guardTarget(caller, user); err != nil {
		return identity.User{}, err
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return identity.User{}, err
	}

	s.logger.Info().Str("user_id", id).Str("role", string(role)).Msg("user role updated")
	return user.Sanitized(), nil
}

// SetUserPermissions replaces an account's permission grants.
func (s *AdminService) SetUserPermissions(ctx context.Context, caller identity.Identity, id string, perms []string) (identity.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	if err := guardTarget(caller, user); err != nil {
		return identity.User{}, err
	}

	if perms == nil {
		perms = []string{}
	}
	user.Permissions = perms
	if err := s.users.Update(ctx, user); err != nil {
		return identity.User{}, err
	}

	s.logger.Info().Str("user_id", id).Strs("permissions", perms).Msg("user permissions updated")
	return user.Sanitized(), nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, caller identity.Identity, id string) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := guardTarget(caller, user); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *AdminService) load(ctx context.Context, id string) (identity.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return identity.User{}, apperr.NotFound("User not found")
		}
		return identity.User{}, err
	}
	return user, nil
}

// guardTarget keeps admins from managing themselves or a super admin.
func guardTarget(caller identity.Identity, target identity.User) error {
	if caller.UserID == target.ID {
		return apperr.BadRequest("You cannot manage your own account here")
	}
	if target.Role == identity.RoleSuperAdmin && caller.Role != identity.RoleSuperAdmin {
		return apperr.Forbidden("You do not have permission to access this route")
	}
	return nil
}
