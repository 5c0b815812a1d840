// Command render-match-report turns a cmd/match JSON result into a
// markdown (and optionally PDF) report, grounded on the shape of
// cmd/render-patent-report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/report"
	"github.com/joelkehle/kmatch/internal/store"
)

// matchEnvelope mirrors the JSON object cmd/match writes to stdout.
type matchEnvelope struct {
	OrganizationID string                  `json:"organizationId"`
	Matches        []matchmodel.MatchScore `json:"matches"`
}

func main() {
	inputPath := flag.String("input", "", "Path to a cmd/match JSON result")
	dbPath := flag.String("db", "kmatch.db", "Path to the SQLite catalog, for program/org lookup")
	outputPath := flag.String("output", "", "Markdown output path (stdout if empty)")
	pdfPath := flag.String("pdf-output", "", "Optional PDF output path")
	flag.Parse()

	if *inputPath == "" {
		log.Fatalf("-input is required")
	}

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	var envelope matchEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Fatalf("parse input: %v", err)
	}

	ctx := context.Background()
	repo, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer repo.Close()

	org, err := repo.GetOrganization(ctx, envelope.OrganizationID)
	if err != nil {
		log.Fatalf("load organization: %v", err)
	}

	programCache := make(map[string]matchmodel.FundingProgram, len(envelope.Matches))
	lookup := func(programID string) (matchmodel.FundingProgram, bool) {
		if p, ok := programCache[programID]; ok {
			return p, true
		}
		p, err := repo.GetProgram(ctx, programID)
		if err != nil {
			return matchmodel.FundingProgram{}, false
		}
		programCache[programID] = *p
		return *p, true
	}

	markdown := report.BuildMarkdown(*org, envelope.Matches, lookup, time.Now())

	if err := writeMarkdown(*outputPath, markdown); err != nil {
		log.Fatalf("write markdown: %v", err)
	}

	if *pdfPath != "" {
		renderer := report.NewChromiumPDFRenderer()
		pdf, err := renderer.Render(ctx, markdown)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
	}
}

func writeMarkdown(path, markdown string) error {
	if path == "" {
		fmt.Print(markdown)
		return nil
	}
	return os.WriteFile(path, []byte(markdown), 0o644)
}
