package usecase

import (
	"context"
	"strings"

	"github.com/formhive/formhive/internal/domain"
)

type GroupUsecase struct {
	groups GroupRepository
	users  UserRepository
}

func NewGroupUsecase(groups GroupRepository, users UserRepository) *GroupUsecase {
	return &GroupUsecase{
		groups: groups,
		users:  users,
	}
}

// Create makes a new group. Names are unique case-insensitively and the
// creator is always a member.
func (uc *GroupUsecase) Create(ctx context.Context, ownerID uint, name string, description *string, memberIDs []uint) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Group.Usecase.Create")
	defer span.End()

	exists, err := uc.groups.ExistsByName(ctx, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if exists {
		return nil, domain.ConflictError{Reason: "A group with this name already exists"}
	}

	owner, err := uc.users.Get(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	saved, err := uc.groups.Create(ctx, domain.Group{
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
	}, withOwner(ownerID, memberIDs))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &saved, nil
}

// Update modifies a group. Owner only; member replacement always re-adds the
// owner.
func (uc *GroupUsecase) Update(ctx context.Context, groupID, userID uint, name, description *string, memberIDs *[]uint) (*domain.Group, error) {
	ctx, span := tracer.Start(ctx, "Group.Usecase.Update")
	defer span.End()

	group, err := uc.groups.Get(ctx, groupID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if group.OwnerID != userID {
		return nil, domain.ForbiddenError{Reason: "Access Denied"}
	}

	if name != nil {
		if !strings.EqualFold(group.Name, *name) {
			exists, err := uc.groups.ExistsByName(ctx, *name)
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			if exists {
				return nil, domain.ConflictError{Reason: "A group with this name already exists"}
			}
		}
		group.Name = *name
	}
	if description != nil {
		group.Description = description
	}

	var members []uint
	if memberIDs != nil {
		members = withOwner(group.OwnerID, *memberIDs)
	}

	saved, err := uc.groups.Update(ctx, group, members)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &saved, nil
}

// Delete removes a group. Owner only.
func (uc *GroupUsecase) Delete(ctx context.Context, groupID, userID uint) error {
	group, err := uc.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != userID {
		return domain.ForbiddenError{Reason: "Access Denied"}
	}
	return uc.groups.Delete(ctx, groupID)
}

// Get returns a group to one of its members.
func (uc *GroupUsecase) Get(ctx context.Context, groupID, userID uint) (*domain.Group, error) {
	group, err := uc.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	member := false
	for _, m := range group.Members {
		if m.UserID == userID {
			member = true
			break
		}
	}
	if !member {
		return nil, domain.ForbiddenError{Reason: "Access Denied"}
	}

	return &group, nil
}

// ListForUser returns groups the user owns, or all groups the user is a
// member of.
func (uc *GroupUsecase) ListForUser(ctx context.Context, userID uint, mineOnly bool) ([]domain.Group, error) {
	if mineOnly {
		return uc.groups.ListOwned(ctx, userID)
	}
	return uc.groups.ListForMember(ctx, userID)
}

// SearchUsers finds users by name or email for member selection.
func (uc *GroupUsecase) SearchUsers(ctx context.Context, query string, page, size int) ([]domain.User, int64, error) {
	return uc.users.Search(ctx, query, page, size)
}

// withOwner prepends the owner and drops duplicates, preserving order.
func withOwner(ownerID uint, memberIDs []uint) []uint {
	result := []uint{ownerID}
	seen := map[uint]bool{ownerID: true}
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
