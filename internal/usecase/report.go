package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

type ReportUsecase struct {
	submissions  SubmissionRepository
	availability *AvailabilityUsecase
}

func NewReportUsecase(submissions SubmissionRepository, availability *AvailabilityUsecase) *ReportUsecase {
	return &ReportUsecase{
		submissions:  submissions,
		availability: availability,
	}
}

// Compute runs an aggregation over a form's submissions. An empty submission
// set yields an empty result, never an error.
func (uc *ReportUsecase) Compute(ctx context.Context, formID, userID uint, field, agg string, groupBy *string) ([]formhive.ReportRow, error) {
	ctx, span := tracer.Start(ctx, "Report.Usecase.Compute")
	defer span.End()

	ok, err := uc.availability.HasAccess(ctx, userID, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		return nil, domain.ForbiddenError{Reason: "You don't have permission to access this form"}
	}

	subs, err := uc.submissions.ListByForm(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return Aggregate(subs, field, agg, groupBy), nil
}

// Aggregate partitions submissions and applies the aggregation kind to the
// numeric values of the target field within each partition. Result order
// follows the first-seen order of group labels.
func Aggregate(subs []domain.Submission, field, agg string, groupBy *string) []formhive.ReportRow {
	if len(subs) == 0 {
		return []formhive.ReportRow{}
	}

	type bucket struct {
		label  any
		values []float64
	}

	var order []string
	buckets := make(map[string]*bucket)

	for _, sub := range subs {
		var label any = "all"
		if groupBy != nil {
			if v, ok := sub.Data[*groupBy]; ok && v != nil {
				label = v
			} else {
				label = "Unknown"
			}
		}

		// The key carries the dynamic type so that "1" and 1 stay
		// separate groups.
		key := fmt.Sprintf("%T:%v", label, label)
		b, seen := buckets[key]
		if !seen {
			b = &bucket{label: label}
			buckets[key] = b
			order = append(order, key)
		}

		if f, ok := toFloat(sub.Data[field]); ok {
			b.values = append(b.values, f)
		}
	}

	kind := strings.ToUpper(agg)
	rows := make([]formhive.ReportRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		rows = append(rows, formhive.ReportRow{
			Group:       b.label,
			Aggregation: kind,
			Field:       field,
			Value:       applyAggregation(kind, b.values),
		})
	}

	return rows
}

// applyAggregation computes one aggregate over a value set. COUNT counts the
// numeric values present, not the submissions in the group. An unrecognized
// kind yields a nil value rather than an error.
func applyAggregation(kind string, values []float64) any {
	switch kind {
	case "COUNT":
		return len(values)
	case "MAX":
		if len(values) == 0 {
			return nil
		}
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case "MIN":
		if len(values) == 0 {
			return nil
		}
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case "AVG":
		if len(values) == 0 {
			return nil
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	case "SUM":
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	default:
		return nil
	}
}

// toFloat extracts a numeric value. Strings are never coerced, even when they
// look numeric.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
