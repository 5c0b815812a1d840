package iap

import (
	"context"
	"log"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

const defaultBatchSize = 20

// batchPacing is the minimum interval enforced between batches when the
// LLM tier is enabled (spec.md §5: "at least 1 second of pacing"),
// grounded on internal/priorartsearch/search.go's ticker-based rate
// limiter.
const batchPacing = 1 * time.Second

// BatchOptions configures a batch run (spec.md §6.3).
type BatchOptions struct {
	BatchSize int
	UseLLM    bool
	DryRun    bool
}

// PersistFunc writes a generated profile back onto the program's store
// record. It is never called when DryRun is true.
type PersistFunc func(ctx context.Context, programID string, profile *matchmodel.IdealApplicantProfile, costKRW float64, usedLLM bool) error

// BatchResult summarizes one batch run, including the cost-accounting
// report cmd/iap-batch prints (SPEC_FULL.md supplement #4).
type BatchResult struct {
	Processed    int
	Skipped      int
	Generated    int
	Failed       int
	TotalCostKRW float64
	TotalUsage   Usage
}

// RunBatch implements the resumable batch generator of spec.md §5 and §8
// scenario 8: programs with a current-version idealApplicantProfile are
// skipped, so a re-run continues where a previous one left off. Processing
// proceeds in batches of opts.BatchSize, pacing ≥1s between batches when
// the LLM tier is enabled; cancellation is honored at batch boundaries and
// between individual programs.
func (g *Generator) RunBatch(ctx context.Context, programs []matchmodel.FundingProgram, persist PersistFunc, opts BatchOptions) (BatchResult, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var result BatchResult
	ticker := time.NewTicker(batchPacing)
	defer ticker.Stop()

	for start := 0; start < len(programs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + batchSize
		if end > len(programs) {
			end = len(programs)
		}
		batch := programs[start:end]

		for _, prog := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			if !prog.NeedsIAPRegeneration(matchmodel.IAPSchemaVersion) {
				result.Skipped++
				continue
			}

			result.Processed++
			genResult := g.Generate(ctx, prog, opts.UseLLM)
			result.TotalCostKRW += genResult.CostKRW
			result.TotalUsage.InputTokens += genResult.Usage.InputTokens
			result.TotalUsage.OutputTokens += genResult.Usage.OutputTokens
			if genResult.UsedLLM {
				result.Generated++
			}

			if !opts.DryRun {
				if err := persist(ctx, prog.ID, genResult.Profile, genResult.CostKRW, genResult.UsedLLM); err != nil {
					log.Printf("iap batch: persist failed for program %s: %v", prog.ID, err)
					result.Failed++
				}
			}
		}

		if opts.UseLLM && end < len(programs) {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, nil
}
