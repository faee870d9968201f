package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/internal/infrastructure/database/models"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return domain.Submission{}, err
	}
	model := models.FormSubmission{
		FormID:          sub.FormID,
		UserID:          sub.UserID,
		Data:            string(data),
		Status:          string(sub.Status),
		SubmittedAt:     sub.SubmittedAt,
		UpdatedAt:       sub.UpdatedAt,
		StatusChangedAt: sub.StatusChangedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Submission{}, err
	}
	return r.Get(ctx, model.ID)
}

func (r *SubmissionRepository) Update(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return domain.Submission{}, err
	}
	result := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Where("id = ?", sub.ID).
		Updates(map[string]any{
			"data":       string(data),
			"updated_at": sub.UpdatedAt,
		})
	if result.Error != nil {
		return domain.Submission{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.Submission{}, domain.NotFoundError{Resource: "submission"}
	}
	return r.Get(ctx, sub.ID)
}

func (r *SubmissionRepository) Get(ctx context.Context, id uint) (domain.Submission, error) {
	var row submissionRow
	err := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Select("form_submissions.*, users.full_name AS submitter_name, COALESCE(forms.title, '') AS form_title").
		Joins("JOIN users ON users.id = form_submissions.user_id").
		Joins("LEFT JOIN forms ON forms.id = form_submissions.form_id").
		Where("form_submissions.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Submission{}, domain.NotFoundError{Resource: "submission"}
		}
		return domain.Submission{}, err
	}
	return submissionToDomain(row)
}

func (r *SubmissionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.FormSubmission{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "submission"}
	}
	return nil
}

// ListByForm returns every submission of a form without paging. Report
// aggregation needs the full set.
func (r *SubmissionRepository) ListByForm(ctx context.Context, formID uint) ([]domain.Submission, error) {
	var rows []submissionRow
	err := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Select("form_submissions.*, users.full_name AS submitter_name, COALESCE(forms.title, '') AS form_title").
		Joins("JOIN users ON users.id = form_submissions.user_id").
		Joins("LEFT JOIN forms ON forms.id = form_submissions.form_id").
		Where("form_submissions.form_id = ?", formID).
		Order("form_submissions.submitted_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return submissionsToDomain(rows)
}

func (r *SubmissionRepository) ListByFormPaged(ctx context.Context, formID uint, status domain.SubmissionStatus, page, size int) ([]domain.Submission, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Where("form_submissions.form_id = ? AND form_submissions.status = ?", formID, string(status))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []submissionRow
	err := base.
		Select("form_submissions.*, users.full_name AS submitter_name, COALESCE(forms.title, '') AS form_title").
		Joins("JOIN users ON users.id = form_submissions.user_id").
		Joins("LEFT JOIN forms ON forms.id = form_submissions.form_id").
		Order("form_submissions.submitted_at DESC").
		Offset(page * size).Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	subs, err := submissionsToDomain(rows)
	return subs, total, err
}

func (r *SubmissionRepository) ListByUser(ctx context.Context, userID uint, status *domain.SubmissionStatus, page, size int) ([]domain.Submission, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Where("form_submissions.user_id = ?", userID)
	if status != nil {
		base = base.Where("form_submissions.status = ?", string(*status))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []submissionRow
	err := base.
		Select("form_submissions.*, users.full_name AS submitter_name, COALESCE(forms.title, '') AS form_title").
		Joins("JOIN users ON users.id = form_submissions.user_id").
		Joins("LEFT JOIN forms ON forms.id = form_submissions.form_id").
		Order("form_submissions.submitted_at DESC").
		Offset(page * size).Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	subs, err := submissionsToDomain(rows)
	return subs, total, err
}

func (r *SubmissionRepository) CountByForm(ctx context.Context, formID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

// MarkRemovedByOwner flips every submission of a deleted form in one
// statement and reports how many rows changed.
func (r *SubmissionRepository) MarkRemovedByOwner(ctx context.Context, formID, ownerID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.FormSubmission{}).
		Where("form_id = ?", formID).
		Updates(map[string]any{
			"status":                    string(domain.StatusRemovedByOwner),
			"status_changed_at":         at,
			"status_changed_by_user_id": ownerID,
		})
	return result.RowsAffected, result.Error
}

// submissionRow is the join shape scanned out of gorm.
type submissionRow struct {
	models.FormSubmission
	SubmitterName string
	FormTitle     string
}

func submissionToDomain(row submissionRow) (domain.Submission, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return domain.Submission{}, err
	}
	return domain.Submission{
		ID:                    row.ID,
		FormID:                row.FormID,
		FormTitle:             row.FormTitle,
		UserID:                row.UserID,
		SubmitterName:         row.SubmitterName,
		Data:                  data,
		Status:                domain.SubmissionStatus(row.Status),
		SubmittedAt:           row.SubmittedAt,
		UpdatedAt:             row.UpdatedAt,
		StatusChangedAt:       row.StatusChangedAt,
		StatusChangedByUserID: row.StatusChangedByUserID,
	}, nil
}

func submissionsToDomain(rows []submissionRow) ([]domain.Submission, error) {
	subs := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := submissionToDomain(row)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
