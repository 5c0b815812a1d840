package iap

import (
	"context"
	"testing"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func makeProgram(id string) matchmodel.FundingProgram {
	return matchmodel.FundingProgram{ID: id, Title: "일반 지원사업 공고문입니다 상세 설명을 포함합니다"}
}

func TestRunBatchSkipsUpToDateProfiles(t *testing.T) {
	g := NewGenerator(nil, DefaultCostRates)

	current := makeProgram("p1")
	current.IdealApplicantProfile = matchmodel.NewIdealApplicantProfile()
	current.IdealProfileVersion = matchmodel.IAPSchemaVersion

	stale := makeProgram("p2")

	var persisted []string
	persist := func(ctx context.Context, programID string, profile *matchmodel.IdealApplicantProfile, costKRW float64, usedLLM bool) error {
		persisted = append(persisted, programID)
		return nil
	}

	result, err := g.RunBatch(context.Background(), []matchmodel.FundingProgram{current, stale}, persist, BatchOptions{BatchSize: 10, UseLLM: false})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if result.Processed != 1 {
		t.Errorf("Processed = %d, want 1", result.Processed)
	}
	if len(persisted) != 1 || persisted[0] != "p2" {
		t.Errorf("persisted = %v, want [p2]", persisted)
	}
}

func TestRunBatchDryRunDoesNotPersist(t *testing.T) {
	g := NewGenerator(nil, DefaultCostRates)
	called := false
	persist := func(ctx context.Context, programID string, profile *matchmodel.IdealApplicantProfile, costKRW float64, usedLLM bool) error {
		called = true
		return nil
	}

	_, err := g.RunBatch(context.Background(), []matchmodel.FundingProgram{makeProgram("p1")}, persist, BatchOptions{BatchSize: 10, DryRun: true})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if called {
		t.Fatal("expected persist not to be called in dry-run mode")
	}
}

func TestRunBatchCancellationStopsEarly(t *testing.T) {
	g := NewGenerator(nil, DefaultCostRates)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	programs := []matchmodel.FundingProgram{makeProgram("p1"), makeProgram("p2")}
	result, err := g.RunBatch(ctx, programs, nil, BatchOptions{BatchSize: 10})
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
	if result.Processed != 0 {
		t.Errorf("Processed = %d, want 0 when the context is already cancelled", result.Processed)
	}
}
