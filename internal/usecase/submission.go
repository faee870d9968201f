package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

type SubmissionUsecase struct {
	forms        FormRepository
	submissions  SubmissionRepository
	users        UserRepository
	availability *AvailabilityUsecase
	publisher    EventPublisher
}

func NewSubmissionUsecase(
	forms FormRepository,
	submissions SubmissionRepository,
	users UserRepository,
	availability *AvailabilityUsecase,
	publisher EventPublisher,
) *SubmissionUsecase {
	return &SubmissionUsecase{
		forms:        forms,
		submissions:  submissions,
		users:        users,
		availability: availability,
		publisher:    publisher,
	}
}

// ValidateSubmission checks submitted data against the schema's required
// list. Only key presence is checked; per-type value validation is a known
// gap. Missing field ids keep the required-list order.
func ValidateSubmission(schema *domain.Schema, data map[string]any) error {
	var missing []string
	for _, fieldID := range schema.Required {
		if _, ok := data[fieldID]; !ok {
			missing = append(missing, fieldID)
		}
	}
	if len(missing) > 0 {
		return domain.ValidationError{MissingFields: missing}
	}
	return nil
}

// Submit validates and persists a new submission.
func (uc *SubmissionUsecase) Submit(ctx context.Context, userID, formID uint, data map[string]any) (*formhive.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "Submission.Usecase.Submit")
	defer span.End()

	form, err := uc.forms.Get(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if !form.Active {
		return nil, domain.GoneError{Resource: "form"}
	}

	ok, err := uc.availability.HasAccess(ctx, userID, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		return nil, domain.ForbiddenError{Reason: "You don't have permission to submit to this form"}
	}

	schema, err := domain.ParseSchema(form.SchemaRaw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := ValidateSubmission(schema, data); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	saved, err := uc.submissions.Create(ctx, domain.Submission{
		FormID:          formID,
		UserID:          userID,
		Data:            data,
		Status:          domain.StatusSubmitted,
		SubmittedAt:     now,
		UpdatedAt:       now,
		StatusChangedAt: now,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if uc.publisher != nil {
		err := uc.publisher.PublishSubmissionCreated(ctx, formhive.Event{
			Type:         formhive.EventSubmissionCreated,
			FormID:       formID,
			SubmissionID: saved.ID,
			UserID:       userID,
			Timestamp:    saved.SubmittedAt,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to publish submission event",
				slog.String("error", err.Error()),
				slog.String("module", "submission"),
			)
		}
	}

	return &formhive.SubmitResult{
		ID:          saved.ID,
		FormID:      formID,
		Status:      string(saved.Status),
		SubmittedAt: saved.SubmittedAt,
		Message:     "Form submitted successfully",
	}, nil
}

// Edit replaces a submission's data. Only the original submitter may edit.
func (uc *SubmissionUsecase) Edit(ctx context.Context, submissionID, userID uint, data map[string]any) (*formhive.SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "Submission.Usecase.Edit")
	defer span.End()

	sub, err := uc.submissions.Get(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ForbiddenError{Reason: "You don't have permission to edit this submission"}
	}

	form, err := uc.forms.Get(ctx, sub.FormID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	schema, err := domain.ParseSchema(form.SchemaRaw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := ValidateSubmission(schema, data); err != nil {
		return nil, err
	}

	sub.Data = data
	sub.UpdatedAt = time.Now().UTC()

	saved, err := uc.submissions.Update(ctx, sub)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &formhive.SubmitResult{
		ID:          saved.ID,
		FormID:      saved.FormID,
		Status:      string(saved.Status),
		SubmittedAt: saved.SubmittedAt,
		Message:     "Submission updated successfully",
	}, nil
}

// Delete removes a submission. Only the original submitter may delete.
func (uc *SubmissionUsecase) Delete(ctx context.Context, submissionID, userID uint) error {
	sub, err := uc.submissions.Get(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return domain.ForbiddenError{Reason: "You don't have permission to delete this submission"}
	}
	return uc.submissions.Delete(ctx, submissionID)
}

// Get returns one submission for its submitter.
func (uc *SubmissionUsecase) Get(ctx context.Context, submissionID, userID uint) (*formhive.SubmissionView, error) {
	sub, err := uc.submissions.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ForbiddenError{Reason: "You don't have permission to view this submission"}
	}

	view := uc.toView(ctx, sub)
	return &view, nil
}

// ListByUser returns a user's own submissions, newest first.
func (uc *SubmissionUsecase) ListByUser(ctx context.Context, userID uint, page, size int, status *domain.SubmissionStatus) (*formhive.SubmissionsPage, error) {
	subs, total, err := uc.submissions.ListByUser(ctx, userID, status, page, size)
	if err != nil {
		return nil, err
	}

	views := make([]formhive.SubmissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, uc.toView(ctx, sub))
	}

	return &formhive.SubmissionsPage{
		Submissions:   views,
		TotalElements: total,
		TotalPages:    totalPages(total, size),
		CurrentPage:   page,
		PageSize:      size,
	}, nil
}

// ListByForm returns a form's active submissions for its owner.
func (uc *SubmissionUsecase) ListByForm(ctx context.Context, formID, ownerID uint, page, size int) (*formhive.FormSubmissionsPage, error) {
	form, err := uc.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, domain.ForbiddenError{Reason: "You are not authorized to view these submissions"}
	}

	subs, total, err := uc.submissions.ListByFormPaged(ctx, formID, domain.StatusSubmitted, page, size)
	if err != nil {
		return nil, err
	}

	if len(subs) == 0 {
		msg := "No active submissions found for this form"
		return &formhive.FormSubmissionsPage{
			Submissions:      []formhive.FormSubmissionRow{},
			TotalSubmissions: 0,
			Message:          &msg,
		}, nil
	}

	rows := make([]formhive.FormSubmissionRow, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, formhive.FormSubmissionRow{
			SubmissionID:  sub.ID,
			UserID:        sub.UserID,
			SubmitterName: sub.SubmitterName,
			SubmittedAt:   sub.SubmittedAt,
			FormData:      sub.Data,
			Status:        string(sub.Status),
		})
	}

	return &formhive.FormSubmissionsPage{
		Submissions:      rows,
		TotalSubmissions: total,
	}, nil
}

func (uc *SubmissionUsecase) toView(ctx context.Context, sub domain.Submission) formhive.SubmissionView {
	var changedBy *string
	if sub.StatusChangedByUserID != nil {
		if user, err := uc.users.Get(ctx, *sub.StatusChangedByUserID); err == nil {
			changedBy = &user.FullName
		}
	}
	return formhive.SubmissionView{
		ID:              sub.ID,
		FormID:          sub.FormID,
		FormTitle:       sub.FormTitle,
		Status:          string(sub.Status),
		SubmittedAt:     sub.SubmittedAt,
		StatusChangedAt: sub.StatusChangedAt,
		Data:            sub.Data,
		StatusChangedBy: changedBy,
	}
}
