// Command iap-batch runs the ideal-applicant-profile generator over a
// catalog of funding programs, per spec.md §6.3's batch CLI surface.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joelkehle/kmatch/internal/iap"
	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/store"
)

func main() {
	dbPath := flag.String("db", "kmatch.db", "Path to the SQLite catalog")
	noLLM := flag.Bool("no-llm", false, "Rule-only generation, zero LLM cost")
	programType := flag.String("type", "all", "Program set to process: rd|sme|all")
	dryRun := flag.Bool("dry-run", false, "Generate but do not persist")
	batchSize := flag.Int("batch-size", 20, "Programs per paced batch")
	limit := flag.Int("limit", 0, "Cap the number of programs processed (0 = no cap)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	repo, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer repo.Close()

	programs, err := repo.ListPrograms(ctx, store.ProgramType(*programType))
	if err != nil {
		log.Fatalf("list programs: %v", err)
	}
	if *limit > 0 && len(programs) > *limit {
		programs = programs[:*limit]
	}

	var completer iap.Completer
	if !*noLLM {
		c, err := iap.NewAnthropicCompleterFromEnv()
		if err != nil {
			log.Printf("LLM tier disabled: %v", err)
		} else {
			completer = c
		}
	}
	generator := iap.NewGenerator(completer, iap.DefaultCostRates)

	var persist iap.PersistFunc
	if !*dryRun {
		persist = func(ctx context.Context, programID string, profile *matchmodel.IdealApplicantProfile, costKRW float64, usedLLM bool) error {
			return repo.SaveIdealApplicantProfile(ctx, programID, profile, time.Now())
		}
	}

	result, err := generator.RunBatch(ctx, programs, persist, iap.BatchOptions{
		BatchSize: *batchSize,
		UseLLM:    !*noLLM,
		DryRun:    *dryRun,
	})
	if err != nil {
		log.Fatalf("batch run: %v", err)
	}

	log.Printf("iap-batch: processed=%d generated=%d skipped=%d failed=%d cost=%.0fKRW",
		result.Processed, result.Generated, result.Skipped, result.Failed, result.TotalCostKRW)

	if result.Failed > 0 {
		os.Exit(1)
	}
}
