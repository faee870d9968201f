package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

type StructureUsecase struct {
	forms        FormRepository
	availability *AvailabilityUsecase
	cache        StructureCache
}

func NewStructureUsecase(forms FormRepository, availability *AvailabilityUsecase, cache StructureCache) *StructureUsecase {
	return &StructureUsecase{
		forms:        forms,
		availability: availability,
		cache:        cache,
	}
}

// GetFormStructure returns the render/edit view of a form: its parsed,
// ordered field descriptors plus display metadata.
func (uc *StructureUsecase) GetFormStructure(ctx context.Context, formID, userID uint) (*formhive.FormStructure, error) {
	ctx, span := tracer.Start(ctx, "Structure.Usecase.GetFormStructure")
	defer span.End()

	ok, err := uc.availability.HasAccess(ctx, userID, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		return nil, domain.ForbiddenError{Reason: "You don't have permission to access this form"}
	}

	form, err := uc.forms.Get(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if !form.Active {
		return nil, domain.GoneError{Resource: "form"}
	}

	// The cache key includes the update timestamp, so edits invalidate by
	// construction.
	key := fmt.Sprintf("form:structure:%d:%d", form.ID, form.UpdatedAt.UnixNano())
	if uc.cache != nil {
		if cached, found := uc.cache.Get(key); found {
			return cached, nil
		}
	}

	schema, err := domain.ParseSchema(form.SchemaRaw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	structure := &formhive.FormStructure{
		FormID:      form.ID,
		Title:       form.Title,
		Description: form.Description,
		Fields:      ParseFields(schema),
		OwnerName:   form.OwnerName,
		IsGroupForm: form.GroupID != nil,
		GroupName:   form.GroupName,
	}

	if uc.cache != nil {
		uc.cache.Set(key, structure)
	}

	return structure, nil
}

// ParseFields turns a schema into ordered field descriptors. The order index
// follows the schema's stored property order, starting at 0.
func ParseFields(schema *domain.Schema) []formhive.FormField {
	required := make(map[string]bool, len(schema.Required))
	for _, id := range schema.Required {
		required[id] = true
	}

	fields := make([]formhive.FormField, 0, len(schema.Properties))
	order := 0
	for _, fieldID := range schema.Properties.Keys() {
		def := schema.Properties[fieldID].Value
		fieldType := deriveFieldType(def)

		name := fieldID
		if def.Title != nil {
			name = *def.Title
		}

		fields = append(fields, formhive.FormField{
			ID:           fieldID,
			Name:         name,
			Type:         fieldType,
			Required:     required[fieldID],
			Placeholder:  def.Placeholder,
			Description:  def.Description,
			Options:      parseOptions(def),
			Validation:   parseValidation(def),
			DefaultValue: parseDefault(def.Default, fieldType),
			Order:        order,
		})
		order++
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})

	return fields
}

// deriveFieldType resolves a field's type by first-match priority. The check
// order is a compatibility contract; a field carrying both enum and
// type=boolean is always a CHECKBOX, never a DROPDOWN.
func deriveFieldType(def domain.FieldDefinition) formhive.FieldType {
	switch {
	case def.Enum != nil && isTrue(def.MultipleOf):
		return formhive.FieldTypeMultiSelect
	case def.Enum != nil && strVal(def.Type) == "boolean":
		return formhive.FieldTypeCheckbox
	case def.Enum != nil:
		return formhive.FieldTypeDropdown
	case strVal(def.Type) == "boolean":
		return formhive.FieldTypeBoolean
	case strVal(def.Type) == "number" || strVal(def.Type) == "integer":
		return formhive.FieldTypeNumber
	case strVal(def.Format) == "email":
		return formhive.FieldTypeEmail
	case strVal(def.Format) == "date-time":
		return formhive.FieldTypeDatetime
	case strVal(def.Format) == "date":
		return formhive.FieldTypeDate
	case strVal(def.Format) == "phone":
		return formhive.FieldTypePhone
	case def.MaxLength != nil && *def.MaxLength > 100:
		return formhive.FieldTypeTextarea
	default:
		return formhive.FieldTypeText
	}
}

// parseValidation builds a validation object only when the schema declares at
// least one constraint. Absence of the object is the signal, not emptiness.
func parseValidation(def domain.FieldDefinition) *formhive.FieldValidation {
	if def.MinLength == nil && def.MaxLength == nil &&
		def.Minimum == nil && def.Maximum == nil &&
		def.Pattern == nil && def.CustomValidation == nil {
		return nil
	}

	return &formhive.FieldValidation{
		MinLength:        def.MinLength,
		MaxLength:        def.MaxLength,
		MinValue:         def.Minimum,
		MaxValue:         def.Maximum,
		Pattern:          def.Pattern,
		CustomValidation: def.CustomValidation,
	}
}

// parseOptions zips enum values and enumNames positionally. Both must be
// present; unequal lengths truncate to the shorter list.
func parseOptions(def domain.FieldDefinition) []formhive.FieldOption {
	if def.Enum == nil || def.EnumNames == nil {
		return nil
	}

	n := len(def.Enum)
	if len(def.EnumNames) < n {
		n = len(def.EnumNames)
	}

	options := make([]formhive.FieldOption, 0, n)
	for i := 0; i < n; i++ {
		options = append(options, formhive.FieldOption{
			Value: stringify(def.Enum[i]),
			Label: stringify(def.EnumNames[i]),
		})
	}
	return options
}

// parseDefault coerces a default value according to the derived field type:
// NUMBER keeps a numeric, BOOLEAN a boolean, everything else the string form.
func parseDefault(value any, fieldType formhive.FieldType) any {
	if value == nil {
		return nil
	}
	switch fieldType {
	case formhive.FieldTypeNumber:
		if f, ok := toFloat(value); ok {
			return f
		}
		return nil
	case formhive.FieldTypeBoolean:
		b, _ := value.(bool)
		return b
	default:
		return stringify(value)
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func isTrue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
