package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/formhive/formhive/internal/domain"
	"github.com/formhive/formhive/internal/infrastructure/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	model := models.User{
		FullName:     user.FullName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ConflictError{Reason: "Email already in use"}
		}
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) Get(ctx context.Context, id uint) (domain.User, error) {
	var model models.User
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var model models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) Search(ctx context.Context, query string, page, size int) ([]domain.User, int64, error) {
	pattern := "%" + query + "%"
	base := r.db.WithContext(ctx).Model(&models.User{}).
		Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	err := base.Order("full_name ASC").
		Offset(page * size).Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userToDomain(row))
	}
	return users, total, nil
}

func userToDomain(model models.User) domain.User {
	return domain.User{
		ID:           model.ID,
		FullName:     model.FullName,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
