package metrics_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formfield/pkg/field"
	"github.com/goliatone/go-formfield/pkg/metrics"
)

func TestCollector_CountsPasses(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	calls := 0
	c := field.New(
		field.WithName[string]("email"),
		field.WithObserver[string](collector),
		field.WithValidateOnChange[string](false),
		field.WithRules(func(_ context.Context, value string) (field.Result, error) {
			calls++
			switch value {
			case "boom":
				return field.Result{}, errors.New("backend down")
			case "":
				return field.Fail("required"), nil
			default:
				return field.Pass(), nil
			}
		}),
	)
	defer c.Dispose()

	ctx := context.Background()
	c.Validate(ctx)
	c.SetValue("ok")
	c.Validate(ctx)
	c.SetValue("boom")
	c.Validate(ctx)

	if calls != 3 {
		t.Fatalf("expected 3 rule calls, got %d", calls)
	}

	count, err := testutil.GatherAndCount(reg, "formfield_passes_started_total")
	if err != nil || count != 1 {
		t.Fatalf("expected one started series, got %d (%v)", count, err)
	}

	started := `
# HELP formfield_passes_started_total Validation passes started.
# TYPE formfield_passes_started_total counter
formfield_passes_started_total{field="email"} 3
`
	committed := `
# HELP formfield_passes_committed_total Validation passes whose outcome was committed, by result.
# TYPE formfield_passes_committed_total counter
formfield_passes_committed_total{field="email",result="invalid"} 2
formfield_passes_committed_total{field="email",result="valid"} 1
`
	exceptions := `
# HELP formfield_rule_exceptions_total Rules that returned an error or panicked.
# TYPE formfield_rule_exceptions_total counter
formfield_rule_exceptions_total{field="email"} 1
`
	for name, expected := range map[string]string{
		"formfield_passes_started_total":   started,
		"formfield_passes_committed_total": committed,
		"formfield_rule_exceptions_total":  exceptions,
	} {
		if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), name); err != nil {
			t.Fatalf("%s mismatch: %v", name, err)
		}
	}

	if n, err := testutil.GatherAndCount(reg, "formfield_pass_duration_seconds"); err != nil || n != 1 {
		t.Fatalf("expected one histogram series, got %d (%v)", n, err)
	}
}

func TestCollector_CountsDiscardedPasses(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	release := make(chan struct{})
	c := field.New(
		field.WithName[string]("slow"),
		field.WithObserver[string](collector),
		field.WithRules(func(ctx context.Context, _ string) (field.Result, error) {
			<-release
			return field.Pass(), nil
		}),
	)
	defer c.Dispose()

	c.OnChange("a")
	c.Reset()
	close(release)
	if err := c.Settle(context.Background()); err != nil {
		t.Fatalf("settle: %v", err)
	}

	expected := `
# HELP formfield_passes_discarded_total Validation passes dropped because a newer pass, reset or dispose superseded them.
# TYPE formfield_passes_discarded_total counter
formfield_passes_discarded_total{field="slow"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "formfield_passes_discarded_total"); err != nil {
		t.Fatalf("discarded mismatch: %v", err)
	}
	if count, _ := testutil.GatherAndCount(reg, "formfield_passes_committed_total"); count != 0 {
		t.Fatalf("stale pass must not commit, got %d series", count)
	}
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := metrics.NewCollector(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := metrics.NewCollector(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
