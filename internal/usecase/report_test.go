package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/formhive/formhive/internal/domain"
)

func subsWithData(data ...map[string]any) []domain.Submission {
	subs := make([]domain.Submission, 0, len(data))
	for i, d := range data {
		subs = append(subs, domain.Submission{ID: uint(i + 1), Data: d})
	}
	return subs
}

func TestAggregateEmpty(t *testing.T) {
	rows := Aggregate(nil, "age", "AVG", nil)
	if rows == nil {
		t.Fatalf("empty input must yield an empty list, not nil")
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestAggregateCountSkipsNonNumeric(t *testing.T) {
	subs := subsWithData(
		map[string]any{"age": 30.0},
		map[string]any{"age": "thirty"},
		map[string]any{"age": 25.0},
		map[string]any{"other": 1.0},
		map[string]any{"age": 40.0},
	)

	rows := Aggregate(subs, "age", "count", nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Group != "all" {
		t.Fatalf("ungrouped label must be \"all\", got %v", rows[0].Group)
	}
	if rows[0].Aggregation != "COUNT" {
		t.Fatalf("aggregation kind must be uppercased, got %s", rows[0].Aggregation)
	}
	if rows[0].Value != 3 {
		t.Fatalf("expected count 3, got %v", rows[0].Value)
	}
}

func TestAggregateAvg(t *testing.T) {
	subs := subsWithData(
		map[string]any{"salary": 1500.0},
		map[string]any{"salary": 2000.0},
		map[string]any{"salary": 1800.0},
		map[string]any{"salary": 2200.0},
		map[string]any{"salary": 1900.0},
	)

	rows := Aggregate(subs, "salary", "AVG", nil)
	if rows[0].Value != 1880.0 {
		t.Fatalf("expected average 1880.0, got %v", rows[0].Value)
	}
}

func TestAggregateSumDefaultsToZero(t *testing.T) {
	subs := subsWithData(
		map[string]any{"salary": "n/a"},
	)

	rows := Aggregate(subs, "salary", "SUM", nil)
	if rows[0].Value != 0.0 {
		t.Fatalf("SUM over no numeric values must be 0, got %v", rows[0].Value)
	}
}

func TestAggregateMinMaxNilWhenEmpty(t *testing.T) {
	subs := subsWithData(
		map[string]any{"salary": "n/a"},
	)

	for _, kind := range []string{"MIN", "MAX", "AVG"} {
		rows := Aggregate(subs, "salary", kind, nil)
		if rows[0].Value != nil {
			t.Fatalf("%s over no numeric values must be nil, got %v", kind, rows[0].Value)
		}
	}
}

func TestAggregateUnrecognizedKind(t *testing.T) {
	subs := subsWithData(map[string]any{"age": 30.0})

	rows := Aggregate(subs, "age", "MEDIAN", nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value != nil {
		t.Fatalf("unrecognized aggregation must yield nil, got %v", rows[0].Value)
	}
}

func TestAggregateGroupBy(t *testing.T) {
	groupBy := "dept"
	subs := subsWithData(
		map[string]any{"dept": "eng", "salary": 100.0},
		map[string]any{"dept": "sales", "salary": 50.0},
		map[string]any{"dept": "eng", "salary": 200.0},
		map[string]any{"salary": 10.0},
		map[string]any{"dept": nil, "salary": 20.0},
	)

	rows := Aggregate(subs, "salary", "SUM", &groupBy)
	if len(rows) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(rows))
	}

	// first-seen order
	if rows[0].Group != "eng" || rows[1].Group != "sales" || rows[2].Group != "Unknown" {
		t.Fatalf("unexpected group order: %v %v %v", rows[0].Group, rows[1].Group, rows[2].Group)
	}
	if rows[0].Value != 300.0 {
		t.Fatalf("expected eng sum 300, got %v", rows[0].Value)
	}
	if rows[1].Value != 50.0 {
		t.Fatalf("expected sales sum 50, got %v", rows[1].Value)
	}
	// missing and explicit-null group values share the Unknown bucket
	if rows[2].Value != 30.0 {
		t.Fatalf("expected Unknown sum 30, got %v", rows[2].Value)
	}
}

func TestAggregateGroupByKeepsTypesDistinct(t *testing.T) {
	groupBy := "level"
	subs := subsWithData(
		map[string]any{"level": "1", "score": 10.0},
		map[string]any{"level": 1.0, "score": 20.0},
		map[string]any{"level": "1", "score": 30.0},
	)

	rows := Aggregate(subs, "score", "SUM", &groupBy)
	if len(rows) != 2 {
		t.Fatalf("string and numeric group values must not collapse, got %d groups", len(rows))
	}
	if rows[0].Group != "1" || rows[0].Value != 40.0 {
		t.Fatalf("expected string group \"1\" sum 40, got %v sum %v", rows[0].Group, rows[0].Value)
	}
	if rows[1].Group != 1.0 || rows[1].Value != 20.0 {
		t.Fatalf("expected numeric group 1 sum 20, got %v sum %v", rows[1].Group, rows[1].Value)
	}
}

func TestAggregateStringNumbersNotCoerced(t *testing.T) {
	subs := subsWithData(
		map[string]any{"age": "30"},
		map[string]any{"age": 25.0},
	)

	rows := Aggregate(subs, "age", "MAX", nil)
	if rows[0].Value != 25.0 {
		t.Fatalf("numeric-looking strings must not be coerced, got %v", rows[0].Value)
	}
}

func TestReportCompute(t *testing.T) {
	forms := newMockFormRepo()
	groups := newMockGroupRepo()
	subs := newMockSubmissionRepo()
	availability := NewAvailabilityUsecase(forms, groups)
	uc := NewReportUsecase(subs, availability)
	ctx := context.Background()

	forms.forms[1] = domain.Form{ID: 1, OwnerID: 7, Active: true}
	subs.Create(ctx, domain.Submission{FormID: 1, Data: map[string]any{"age": 20.0}})
	subs.Create(ctx, domain.Submission{FormID: 1, Data: map[string]any{"age": 40.0}})

	rows, err := uc.Compute(ctx, 1, 7, "age", "avg", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != 30.0 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	_, err = uc.Compute(ctx, 1, 99, "age", "avg", nil)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
}
