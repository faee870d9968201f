package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

type FormUsecase struct {
	forms       FormRepository
	groups      GroupRepository
	submissions SubmissionRepository
	publisher   EventPublisher
}

func NewFormUsecase(
	forms FormRepository,
	groups GroupRepository,
	submissions SubmissionRepository,
	publisher EventPublisher,
) *FormUsecase {
	return &FormUsecase{
		forms:       forms,
		groups:      groups,
		submissions: submissions,
		publisher:   publisher,
	}
}

// Create validates the schema invariants and persists a new active form.
func (uc *FormUsecase) Create(ctx context.Context, ownerID uint, title string, description *string, schemaRaw json.RawMessage, groupID *uint) (*domain.Form, error) {
	ctx, span := tracer.Start(ctx, "Form.Usecase.Create")
	defer span.End()

	schema, err := domain.ParseSchema(schemaRaw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// A stale group reference degrades to an ungrouped form.
	if groupID != nil {
		if _, err := uc.groups.Get(ctx, *groupID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				span.RecordError(err)
				return nil, err
			}
			groupID = nil
		}
	}

	saved, err := uc.forms.Create(ctx, domain.Form{
		Title:       title,
		Description: description,
		SchemaRaw:   schemaRaw,
		OwnerID:     ownerID,
		GroupID:     groupID,
		Active:      true,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &saved, nil
}

// Get returns one form by id.
func (uc *FormUsecase) Get(ctx context.Context, formID uint) (*domain.Form, error) {
	form, err := uc.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// Delete removes a form and publishes the deletion event. Submissions are
// not touched here; the cascade listener transitions them out-of-band.
func (uc *FormUsecase) Delete(ctx context.Context, formID, ownerID uint) (*formhive.DeletionResult, error) {
	ctx, span := tracer.Start(ctx, "Form.Usecase.Delete")
	defer span.End()

	form, err := uc.forms.Get(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, domain.ForbiddenError{Reason: "You don't have permission to delete this form"}
	}

	count, err := uc.submissions.CountByForm(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := uc.forms.Delete(ctx, formID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if uc.publisher != nil {
		event := domain.FormDeletedEvent{
			FormID:    formID,
			OwnerID:   ownerID,
			DeletedAt: time.Now().UTC(),
		}
		if err := uc.publisher.PublishFormDeleted(ctx, event); err != nil {
			slog.ErrorContext(ctx, "failed to publish form deletion event",
				slog.String("error", err.Error()),
				slog.Uint64("formId", uint64(formID)),
				slog.String("module", "form"),
			)
		}
	}

	return &formhive.DeletionResult{
		FormID:             formID,
		Message:            "Form deletion initiated. Submissions will be updated shortly.",
		SubmissionsUpdated: count,
	}, nil
}

// AssignPermissions replaces a form's permission set wholesale.
func (uc *FormUsecase) AssignPermissions(ctx context.Context, formID uint, assignments []formhive.PermissionAssignment) error {
	ctx, span := tracer.Start(ctx, "Form.Usecase.AssignPermissions")
	defer span.End()

	if _, err := uc.forms.Get(ctx, formID); err != nil {
		span.RecordError(err)
		return err
	}

	perms := make([]domain.FormPermission, 0, len(assignments))
	for _, assignment := range assignments {
		permType, ok := domain.ParsePermissionType(assignment.PermissionType)
		if !ok {
			return domain.ValidationError{Message: "invalid permission type: " + assignment.PermissionType}
		}
		group, err := uc.groups.Get(ctx, assignment.GroupID)
		if err != nil {
			span.RecordError(err)
			return err
		}
		perms = append(perms, domain.FormPermission{
			FormID:         formID,
			GroupID:        group.ID,
			GroupName:      group.Name,
			PermissionType: permType,
		})
	}

	return uc.forms.ReplacePermissions(ctx, formID, perms)
}

// GetPermissions lists a form's granted permissions.
func (uc *FormUsecase) GetPermissions(ctx context.Context, formID uint) ([]formhive.PermissionView, error) {
	if _, err := uc.forms.Get(ctx, formID); err != nil {
		return nil, err
	}

	perms, err := uc.forms.GetPermissions(ctx, formID)
	if err != nil {
		return nil, err
	}

	views := make([]formhive.PermissionView, 0, len(perms))
	for _, perm := range perms {
		views = append(views, formhive.PermissionView{
			GroupID:        perm.GroupID,
			GroupName:      perm.GroupName,
			PermissionType: string(perm.PermissionType),
		})
	}
	return views, nil
}
