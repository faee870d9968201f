package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/internal/infrastructure/database/models"
)

type GroupRepository struct {
	db *gorm.DB

	// membership lookups run on almost every request, so ids are cached
	// briefly and flushed on any mutation
	memberships *gocache.Cache
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{
		db:          db,
		memberships: gocache.New(1*time.Minute, 5*time.Minute),
	}
}

func (r *GroupRepository) Create(ctx context.Context, group domain.Group, memberIDs []uint) (domain.Group, error) {
	model := models.Group{
		Name:        group.Name,
		Description: group.Description,
		OwnerID:     group.OwnerID,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		for _, userID := range memberIDs {
			member := models.GroupMember{GroupID: model.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Group{}, err
	}
	r.memberships.Flush()
	return r.Get(ctx, model.ID)
}

// Update writes the group row and, when memberIDs is non-nil, replaces the
// member list wholesale. A nil memberIDs keeps the existing members.
func (r *GroupRepository) Update(ctx context.Context, group domain.Group, memberIDs []uint) (domain.Group, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Group{}).
			Where("id = ?", group.ID).
			Updates(map[string]any{
				"name":        group.Name,
				"description": group.Description,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "group"}
		}
		if memberIDs == nil {
			return nil
		}
		if err := tx.Delete(&models.GroupMember{}, "group_id = ?", group.ID).Error; err != nil {
			return err
		}
		for _, userID := range memberIDs {
			member := models.GroupMember{GroupID: group.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Group{}, err
	}
	r.memberships.Flush()
	return r.Get(ctx, group.ID)
}

func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMember{}, "group_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Group{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "group"}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.memberships.Flush()
	return nil
}

func (r *GroupRepository) Get(ctx context.Context, id uint) (domain.Group, error) {
	var model models.Group
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, domain.NotFoundError{Resource: "group"}
		}
		return domain.Group{}, err
	}

	var memberRows []memberRow
	err = r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Select("group_members.user_id, users.full_name, users.email").
		Joins("JOIN users ON users.id = group_members.user_id").
		Where("group_members.group_id = ?", id).
		Order("users.full_name ASC").
		Find(&memberRows).Error
	if err != nil {
		return domain.Group{}, err
	}

	group := groupToDomain(model)
	for _, row := range memberRows {
		group.Members = append(group.Members, domain.GroupMember{
			UserID:   row.UserID,
			FullName: row.FullName,
			Email:    row.Email,
		})
	}
	return group, nil
}

func (r *GroupRepository) ListOwned(ctx context.Context, userID uint) ([]domain.Group, error) {
	var rows []models.Group
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return groupsToDomain(rows), nil
}

func (r *GroupRepository) ListForMember(ctx context.Context, userID uint) ([]domain.Group, error) {
	var rows []models.Group
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return groupsToDomain(rows), nil
}

func (r *GroupRepository) GetUserGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	key := fmt.Sprintf("groups:user:%d", userID)
	if cached, ok := r.memberships.Get(key); ok {
		return cached.([]uint), nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}

	r.memberships.Set(key, ids, gocache.DefaultExpiration)
	return ids, nil
}

func (r *GroupRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type memberRow struct {
	UserID   uint
	FullName string
	Email    string
}

func groupToDomain(model models.Group) domain.Group {
	return domain.Group{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		OwnerID:     model.OwnerID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func groupsToDomain(rows []models.Group) []domain.Group {
	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, groupToDomain(row))
	}
	return groups
}
