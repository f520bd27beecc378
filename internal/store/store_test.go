package store

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleResults = `safeguard,BELLS_score,performance_score,api_available,self_hosted,rag_compatible,harmful_jailbreaks,harmful_non-adversarial,benign_non-adversarial,Physical_harm,Privacy
Lakera Guard,0.91,0.8,1,0,1,0.98,0.95,0.02,0.9,0.85
LLM Guard,0.86,0.7,0,1,true,0.92,0.94,0.02,0.8,n/a
Prompt Guard,oops,,yes,no,0,0.82,0.84,0.127,1.4,-0.2
,0.5,0.5,1,1,1,0.5,0.5,0.5,0.5,0.5
`

func TestParseSafeguards(t *testing.T) {
	got, err := ParseSafeguards(strings.NewReader(sampleResults))
	if err != nil {
		t.Fatalf("ParseSafeguards: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 safeguards (blank name skipped), got %d", len(got))
	}

	names := []string{"Lakera Guard", "LLM Guard", "Prompt Guard"}
	for i, n := range names {
		if got[i].Name != n {
			t.Errorf("row %d: expected %q, got %q", i, n, got[i].Name)
		}
	}

	lakera := got[0]
	if lakera.BELLSScore != 0.91 || lakera.PerformanceScore != 0.8 {
		t.Errorf("unexpected scores: %+v", lakera)
	}
	if !lakera.APIAvailable || lakera.SelfHosted || !lakera.RAGCompatible {
		t.Errorf("unexpected flags: %+v", lakera)
	}
	if lakera.DetectionAdversarial != 0.98 || lakera.DetectionNonAdversarial != 0.95 || lakera.FalsePositiveRate != 0.02 {
		t.Errorf("unexpected detection rates: %+v", lakera)
	}
	if lakera.Metric("Physical_harm") != 0.9 {
		t.Errorf("expected physical harm 0.9, got %f", lakera.Metric("Physical_harm"))
	}
	if lakera.Metric("physical harm") != 0.9 {
		t.Error("metric lookup should fold case and separators")
	}

	llm := got[1]
	if !llm.RAGCompatible {
		t.Error("expected 'true' to parse as a flag")
	}
	if _, ok := llm.Metrics["privacy"]; ok {
		t.Error("non-numeric metric cells should be dropped")
	}

	pg := got[2]
	if pg.BELLSScore != 0 {
		t.Errorf("unparseable BELLS score should read 0, got %f", pg.BELLSScore)
	}
	if pg.PerformanceScore != 0 {
		t.Errorf("blank performance score should read 0, got %f", pg.PerformanceScore)
	}
	if !pg.APIAvailable || pg.SelfHosted {
		t.Errorf("expected yes/no flags to parse, got %+v", pg)
	}
	if pg.Metric("Physical_harm") != 1 || pg.Metric("Privacy") != 0 {
		t.Errorf("metrics should clamp to [0,1], got %v", pg.Metrics)
	}
}

func TestParseSafeguardsAlternateHeaders(t *testing.T) {
	in := "Name,bells_score,tpr_adversarial,tpr_non_adversarial,fpr_benign\nNeMo Guardrails,0.83,0.89,0.91,0.026\n"
	got, err := ParseSafeguards(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseSafeguards: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	sg := got[0]
	if sg.DetectionAdversarial != 0.89 || sg.DetectionNonAdversarial != 0.91 || sg.FalsePositiveRate != 0.026 {
		t.Errorf("alternate headers not resolved: %+v", sg)
	}
}

func TestParseSafeguardsMissingNameColumn(t *testing.T) {
	_, err := ParseSafeguards(strings.NewReader("bells_score\n0.5\n"))
	if !errors.Is(err, ErrMissingNameColumn) {
		t.Fatalf("expected ErrMissingNameColumn, got %v", err)
	}

	_, err = ParseSafeguards(strings.NewReader(""))
	if !errors.Is(err, ErrMissingNameColumn) {
		t.Fatalf("expected ErrMissingNameColumn for empty input, got %v", err)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.5", 0.5},
		{" 0.25 ", 0.25},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-1", 0},
		{"7", 1},
	}
	for _, tt := range tests {
		if got := ParseRate(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseRate(%q) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, in := range []string{"1", "true", "TRUE", "yes", "Y", "t"} {
		if !ParseFlag(in) {
			t.Errorf("expected %q to be true", in)
		}
	}
	for _, in := range []string{"0", "false", "no", "", "maybe"} {
		if ParseFlag(in) {
			t.Errorf("expected %q to be false", in)
		}
	}
}

func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	if err := os.WriteFile(path, []byte(sampleResults), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewCSVSource(path)
	defer src.Close()

	got, err := src.LoadSafeguards(context.Background())
	if err != nil {
		t.Fatalf("LoadSafeguards: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 safeguards, got %d", len(got))
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"))
	if _, err := src.LoadSafeguards(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizeColumn(t *testing.T) {
	tests := map[string]string{
		"BELLS_score":               "bells_score",
		"harmful_non-adversarial":   "harmful_non_adversarial",
		" Physical harm ":           "physical_harm",
		"Harassment/Discrimination": "harassment_discrimination",
	}
	for in, want := range tests {
		if got := NormalizeColumn(in); got != want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}
