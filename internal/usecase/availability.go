package usecase

import (
	"context"

	"github.com/formhive/formhive"
)

type AvailabilityUsecase struct {
	forms  FormRepository
	groups GroupRepository
}

func NewAvailabilityUsecase(forms FormRepository, groups GroupRepository) *AvailabilityUsecase {
	return &AvailabilityUsecase{
		forms:  forms,
		groups: groups,
	}
}

// HasAccess reports whether a user may see a form: the user owns it, or is a
// member of the group the form is attached to. Permission types are tracked
// separately and do not gate this check.
func (uc *AvailabilityUsecase) HasAccess(ctx context.Context, userID, formID uint) (bool, error) {
	groupIDs, err := uc.groups.GetUserGroupIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	return uc.forms.ExistsAccessible(ctx, formID, userID, groupIDs)
}

// ListAvailable returns the active forms a user may see, newest first, with
// an optional case-insensitive title/description filter.
func (uc *AvailabilityUsecase) ListAvailable(ctx context.Context, userID uint, page, size int, search string) (*formhive.AvailableFormsPage, error) {
	ctx, span := tracer.Start(ctx, "Availability.Usecase.ListAvailable")
	defer span.End()

	groupIDs, err := uc.groups.GetUserGroupIDs(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	memberOf := make(map[uint]bool, len(groupIDs))
	for _, id := range groupIDs {
		memberOf[id] = true
	}

	forms, total, err := uc.forms.ListAvailable(ctx, userID, groupIDs, search, page, size)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := make([]formhive.AvailableForm, 0, len(forms))
	for _, form := range forms {
		isGroupForm := form.GroupID != nil && memberOf[*form.GroupID]
		var groupName *string
		if isGroupForm {
			groupName = form.GroupName
		}
		rows = append(rows, formhive.AvailableForm{
			ID:          form.ID,
			Title:       form.Title,
			Description: form.Description,
			OwnerName:   form.OwnerName,
			CreatedAt:   form.CreatedAt,
			IsGroupForm: isGroupForm,
			GroupName:   groupName,
		})
	}

	result := &formhive.AvailableFormsPage{
		Forms:         rows,
		TotalElements: total,
		TotalPages:    totalPages(total, size),
		CurrentPage:   page,
		PageSize:      size,
	}
	if len(rows) == 0 {
		msg := "No forms available"
		result.Message = &msg
	}

	return result, nil
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return pages
}
