package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/metrics"
)

func operationCount(op, result string) float64 {
	return testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues(op, result))
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("%w: pasture p-1", domain.ErrNotFound), "not_found"},
		{fmt.Errorf("%w: room for 0", domain.ErrCapacityExceeded), "capacity_exceeded"},
		{fmt.Errorf("write potreros: boom"), "error"},
	}
	for _, tt := range tests {
		if got := resultLabel(tt.err); got != tt.want {
			t.Errorf("resultLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserve_CountsLogoutAndRecalculate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	p := env.addPasture(t, owner, 10)

	logouts := operationCount("logout", "ok")
	if err := env.sessions.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if got := operationCount("logout", "ok"); got != logouts+1 {
		t.Fatalf("expected logout to be counted, got %v want %v", got, logouts+1)
	}

	ok := operationCount("recalculate_occupancy", "ok")
	missing := operationCount("recalculate_occupancy", "not_found")
	if _, err := env.pastures.RecalculateOccupancy(ctx, owner, p.ID); err != nil {
		t.Fatalf("RecalculateOccupancy returned error: %v", err)
	}
	_, err := env.pastures.RecalculateOccupancy(ctx, owner, "missing")
	expectErr(t, err, domain.ErrNotFound)

	if got := operationCount("recalculate_occupancy", "ok"); got != ok+1 {
		t.Fatalf("expected one ok recalculation, got %v want %v", got, ok+1)
	}
	if got := operationCount("recalculate_occupancy", "not_found"); got != missing+1 {
		t.Fatalf("expected one not_found recalculation, got %v want %v", got, missing+1)
	}
}
