package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/internal/infrastructure/database/models"
)

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

func (r *FormRepository) Create(ctx context.Context, form domain.Form) (domain.Form, error) {
	model := models.Form{
		Title:       form.Title,
		Description: form.Description,
		Schema:      string(form.SchemaRaw),
		OwnerID:     form.OwnerID,
		GroupID:     form.GroupID,
		Active:      form.Active,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Form{}, err
	}
	return r.Get(ctx, model.ID)
}

func (r *FormRepository) Get(ctx context.Context, id uint) (domain.Form, error) {
	var model models.Form
	err := r.db.WithContext(ctx).
		Preload("Owner").Preload("Group").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Form{}, domain.NotFoundError{Resource: "form"}
		}
		return domain.Form{}, err
	}
	return formToDomain(model), nil
}

func (r *FormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FormPermission{}, "form_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Form{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "form"}
		}
		return nil
	})
}

func (r *FormRepository) ListAvailable(ctx context.Context, userID uint, groupIDs []uint, search string, page, size int) ([]domain.Form, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Form{}).
		Where("active = ?", true).
		Where("owner_id = ? OR group_id IN ?", userID, emptyAsNull(groupIDs))

	if search != "" {
		pattern := "%" + search + "%"
		base = base.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Form
	err := base.
		Preload("Owner").Preload("Group").
		Order("created_at DESC").
		Offset(page * size).Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	forms := make([]domain.Form, 0, len(rows))
	for _, row := range rows {
		forms = append(forms, formToDomain(row))
	}
	return forms, total, nil
}

func (r *FormRepository) ExistsAccessible(ctx context.Context, formID, userID uint, groupIDs []uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Form{}).
		Where("id = ?", formID).
		Where("owner_id = ? OR group_id IN ?", userID, emptyAsNull(groupIDs)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FormRepository) ReplacePermissions(ctx context.Context, formID uint, perms []domain.FormPermission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FormPermission{}, "form_id = ?", formID).Error; err != nil {
			return err
		}
		for _, perm := range perms {
			model := models.FormPermission{
				FormID:         formID,
				GroupID:        perm.GroupID,
				PermissionType: string(perm.PermissionType),
			}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FormRepository) GetPermissions(ctx context.Context, formID uint) ([]domain.FormPermission, error) {
	var rows []models.FormPermission
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("form_id = ?", formID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	perms := make([]domain.FormPermission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, domain.FormPermission{
			FormID:         row.FormID,
			GroupID:        row.GroupID,
			GroupName:      row.Group.Name,
			PermissionType: domain.PermissionType(row.PermissionType),
		})
	}
	return perms, nil
}

func formToDomain(model models.Form) domain.Form {
	form := domain.Form{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		SchemaRaw:   json.RawMessage(model.Schema),
		OwnerID:     model.OwnerID,
		OwnerName:   model.Owner.FullName,
		GroupID:     model.GroupID,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Group != nil {
		form.GroupName = &model.Group.Name
	}
	return form
}

// emptyAsNull keeps "IN ?" valid when the id list is empty; an empty list
// must match nothing.
func emptyAsNull(ids []uint) []uint {
	if len(ids) == 0 {
		return []uint{0}
	}
	return ids
}
