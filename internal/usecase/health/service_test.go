package health

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeChecker struct{ err error }

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

func TestCheckNoComponents(t *testing.T) {
	report := New(nil, nil).Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 0 {
		t.Errorf("Checks = %v, want empty", report.Checks)
	}
}

func TestCheckAllHealthy(t *testing.T) {
	report := New(fakePinger{}, fakeChecker{}).Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if report.Checks["cache"] != CheckOK || report.Checks["embedding"] != CheckOK {
		t.Errorf("Checks = %v, want both ok", report.Checks)
	}
}

func TestCheckDegradedOnFailure(t *testing.T) {
	report := New(fakePinger{err: errors.New("connection refused")}, fakeChecker{}).Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("Status = %v, want degraded", report.Status)
	}
	if report.Checks["cache"] != CheckError {
		t.Errorf("cache check = %v, want error", report.Checks["cache"])
	}
	if report.Checks["embedding"] != CheckOK {
		t.Errorf("embedding check = %v, want ok", report.Checks["embedding"])
	}
}
