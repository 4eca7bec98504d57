// AngelaMos | 2026
// service.go

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"

	"github.com/storedeck/storefront/internal/core"
	"github.com/storedeck/storefront/internal/user"
)

const (
	MessageAccessDenied  = "Access denied"
	MessageStoreNotFound = "Store not found"

	maxSlugAttempts = 50
)

// UserFinder resolves member invitations by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users UserFinder
}

func NewService(repo Repository, users UserFinder) *Service {
	return &Service{repo: repo, users: users}
}

// RequireAccess resolves what userID may do in storeID. The owner always
// gets Owner, even if a membership row also exists for them. Failures are
// *AccessError values whose Message is meant for display.
func (s *Service) RequireAccess(
	ctx context.Context,
	userID, storeID string,
) (Access, error) {
	ctx, span := core.StartSpan(ctx, "store.RequireAccess",
		core.AttrStoreID.String(storeID),
		core.AttrUserID.String(userID),
	)
	defer span.End()

	access, err := s.resolveAccess(ctx, userID, storeID)
	if err != nil {
		var accessErr *AccessError
		if !errors.As(err, &accessErr) {
			core.SetSpanError(ctx, err)
		}
		return nil, err
	}

	span.SetAttributes(core.AttrStoreRole.String(access.RoleName()))
	return access, nil
}

func (s *Service) resolveAccess(
	ctx context.Context,
	userID, storeID string,
) (Access, error) {
	if _, err := uuid.Parse(storeID); err != nil {
		return nil, &AccessError{Message: MessageStoreNotFound, Err: core.ErrNotFound}
	}

	store, err := s.repo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, &AccessError{Message: MessageStoreNotFound, Err: core.ErrNotFound}
		}
		return nil, fmt.Errorf("require access: %w", err)
	}

	if store.OwnerID == userID {
		return Owner{}, nil
	}

	membership, err := s.repo.GetMembership(ctx, storeID, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, &AccessError{Message: MessageAccessDenied, Err: core.ErrForbidden}
		}
		return nil, fmt.Errorf("require access: %w", err)
	}

	return Member{Role: membership.Role}, nil
}

// RequireWrite is RequireAccess plus a write-capable role.
func (s *Service) RequireWrite(
	ctx context.Context,
	userID, storeID string,
) (Access, error) {
	access, err := s.RequireAccess(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite() {
		return nil, &AccessError{
			Message: "Your role does not allow changes to this store",
			Err:     core.ErrForbidden,
		}
	}
	return access, nil
}

func (s *Service) requireOwner(ctx context.Context, userID, storeID string) error {
	access, err := s.RequireAccess(ctx, userID, storeID)
	if err != nil {
		return err
	}
	if !access.IsOwner() {
		return &AccessError{
			Message: "Only the store owner can manage members",
			Err:     core.ErrForbidden,
		}
	}
	return nil
}

func (s *Service) GetStore(ctx context.Context, id string) (*Store, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) CreateStore(
	ctx context.Context,
	ownerID string,
	req CreateStoreRequest,
) (*Store, error) {
	store := &Store{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}

	base := slug.Make(store.Name)
	if base == "" {
		base = "store"
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = base + "-" + strconv.Itoa(attempt)
		}

		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
		if exists {
			continue
		}

		store.Slug = candidate
		err = s.repo.Create(ctx, store)
		if errors.Is(err, core.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf(
		"create store: no free slug for %q: %w",
		base,
		core.ErrDuplicateKey,
	)
}

// Dashboard loads owned and member stores with their counters concurrently.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Overview, error) {
	overview := &Overview{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		owned, err := s.repo.ListOwned(gctx, userID)
		if err != nil {
			return err
		}
		overview.Owned = owned
		return nil
	})

	g.Go(func() error {
		member, err := s.repo.ListMemberOf(gctx, userID)
		if err != nil {
			return err
		}
		overview.Member = member
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return overview, nil
}

func (s *Service) ListMembers(
	ctx context.Context,
	userID, storeID string,
) ([]MemberProfile, error) {
	if _, err := s.RequireAccess(ctx, userID, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, storeID)
}

func (s *Service) AddMember(
	ctx context.Context,
	userID, storeID string,
	req AddMemberRequest,
) (*Membership, error) {
	if err := s.requireOwner(ctx, userID, storeID); err != nil {
		return nil, err
	}

	invitee, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("User")
		}
		return nil, fmt.Errorf("add member: %w", err)
	}

	if invitee.ID == userID {
		return nil, core.BadRequestError("The store owner cannot be added as a member")
	}

	membership := &Membership{
		ID:      uuid.New().String(),
		StoreID: storeID,
		UserID:  invitee.ID,
		Role:    req.Role,
	}

	if err := s.repo.AddMember(ctx, membership); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("User is already a member of this store")
		}
		return nil, err
	}

	return membership, nil
}

func (s *Service) RemoveMember(
	ctx context.Context,
	userID, storeID, memberUserID string,
) error {
	if err := s.requireOwner(ctx, userID, storeID); err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, storeID, memberUserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("Member")
		}
		return err
	}

	return nil
}
