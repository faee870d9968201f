package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

var tracer = otel.Tracer("usecase")

// UserRepository defines persistence/lookup for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, id uint) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Search(ctx context.Context, query string, page, size int) ([]domain.User, int64, error)
}

// FormRepository defines storage operations for forms and their permissions.
type FormRepository interface {
	Create(ctx context.Context, form domain.Form) (domain.Form, error)
	Get(ctx context.Context, id uint) (domain.Form, error)
	Delete(ctx context.Context, id uint) error
	ListAvailable(ctx context.Context, userID uint, groupIDs []uint, search string, page, size int) ([]domain.Form, int64, error)
	ExistsAccessible(ctx context.Context, formID, userID uint, groupIDs []uint) (bool, error)
	ReplacePermissions(ctx context.Context, formID uint, perms []domain.FormPermission) error
	GetPermissions(ctx context.Context, formID uint) ([]domain.FormPermission, error)
}

// SubmissionRepository defines storage operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, sub domain.Submission) (domain.Submission, error)
	Update(ctx context.Context, sub domain.Submission) (domain.Submission, error)
	Get(ctx context.Context, id uint) (domain.Submission, error)
	Delete(ctx context.Context, id uint) error
	ListByForm(ctx context.Context, formID uint) ([]domain.Submission, error)
	ListByFormPaged(ctx context.Context, formID uint, status domain.SubmissionStatus, page, size int) ([]domain.Submission, int64, error)
	ListByUser(ctx context.Context, userID uint, status *domain.SubmissionStatus, page, size int) ([]domain.Submission, int64, error)
	CountByForm(ctx context.Context, formID uint) (int64, error)
	MarkRemovedByOwner(ctx context.Context, formID, ownerID uint, at time.Time) (int64, error)
}

// GroupRepository defines storage operations for groups and memberships.
type GroupRepository interface {
	Create(ctx context.Context, group domain.Group, memberIDs []uint) (domain.Group, error)
	Update(ctx context.Context, group domain.Group, memberIDs []uint) (domain.Group, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (domain.Group, error)
	ListOwned(ctx context.Context, userID uint) ([]domain.Group, error)
	ListForMember(ctx context.Context, userID uint) ([]domain.Group, error)
	GetUserGroupIDs(ctx context.Context, userID uint) ([]uint, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// EventPublisher emits domain events. Publishing is best effort; callers log
// failures and carry on.
type EventPublisher interface {
	PublishFormDeleted(ctx context.Context, event domain.FormDeletedEvent) error
	PublishSubmissionCreated(ctx context.Context, event formhive.Event) error
}

// StructureCache caches parsed form structures between requests.
type StructureCache interface {
	Get(key string) (*formhive.FormStructure, bool)
	Set(key string, structure *formhive.FormStructure)
}
