package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	err := newCLIApp().Run(append([]string{"quotectl"}, args...))
	return buf.String(), err
}

func TestGenerateOffline(t *testing.T) {
	output, err := runCLI(t, "generate", "Måla 3 rum, totalt 45 kvm, standardkvalitet")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	var result domain.GenerateQuoteResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, output)
	}
	if result.Type != domain.ResultQuote || result.Quote == nil {
		t.Fatalf("expected a quote, got %+v", result)
	}
	if result.Quote.JobType != "målning" {
		t.Fatalf("expected målning, got %q", result.Quote.JobType)
	}
	if result.Quote.Summary.TotalWithVAT <= 0 {
		t.Fatalf("expected a positive total")
	}
}

func TestGenerateOfflineWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offert.xlsx")
	if _, err := runCLI(t, "generate", "--xlsx", path, "Måla 3 rum, totalt 45 kvm"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected workbook: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("workbook is empty")
	}
}

func TestGenerateAsksWhenAreaIsMissing(t *testing.T) {
	output, err := runCLI(t, "generate", "Måla om vardagsrummet")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	var result domain.GenerateQuoteResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if result.Type != domain.ResultClarification {
		t.Fatalf("expected clarification, got %s", result.Type)
	}
}

func TestClassify(t *testing.T) {
	output, err := runCLI(t, "classify", "Storstädning av villa")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	var c domain.Classification
	if err := json.Unmarshal([]byte(output), &c); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if c.DeductionType != domain.DeductionRUT {
		t.Fatalf("expected rut, got %s", c.DeductionType)
	}
}

func TestGoldenReportsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	doc := `cases:
  - name: painting
    description: "Måla 3 rum, totalt 45 kvm"
    expect: {type: quote, job_type: målning, max_total: 1}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write cases: %v", err)
	}

	output, err := runCLI(t, "golden", "--file", path)
	if err == nil {
		t.Fatalf("expected failure for an impossible price band")
	}
	if !strings.Contains(output, "FAIL") || !strings.Contains(output, "0 passed, 1 failed") {
		t.Fatalf("unexpected report:\n%s", output)
	}
}
