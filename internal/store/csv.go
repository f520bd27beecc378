package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMissingNameColumn is returned when a results file has no safeguard column.
var ErrMissingNameColumn = errors.New("results file has no safeguard column")

// Accepted spellings per field, already normalized.
var columnAliases = map[string][]string{
	"name":                      {"safeguard", "name"},
	"description":               {"description"},
	"bells_score":               {"bells_score", "bells"},
	"performance_score":         {"performance_score", "performance"},
	"api_available":             {"api_available"},
	"self_hosted":               {"self_hosted"},
	"rag_compatible":            {"rag_compatible"},
	"detection_adversarial":     {"harmful_jailbreaks", "tpr_adversarial"},
	"detection_non_adversarial": {"harmful_non_adversarial", "tpr_non_adversarial"},
	"false_positive_rate":       {"benign_non_adversarial", "fpr_benign", "fpr"},
}

// CSVSource reads safeguard_evaluation_results.csv style exports.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) LoadSafeguards(ctx context.Context) ([]Safeguard, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := ParseSafeguards(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return out, nil
}

func (s *CSVSource) Close() error { return nil }

// ParseSafeguards decodes a results table. Unparseable numbers become 0 and
// rows without a name are skipped; row order is kept.
func ParseSafeguards(r io.Reader) ([]Safeguard, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingNameColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = NormalizeColumn(strings.TrimPrefix(h, "\ufeff"))
	}
	fields := resolveColumns(cols)
	if _, ok := fields["name"]; !ok {
		return nil, ErrMissingNameColumn
	}

	claimed := make(map[int]bool, len(fields))
	for _, idx := range fields {
		claimed[idx] = true
	}

	var out []Safeguard
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		cell := func(field string) string {
			idx, ok := fields[field]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		name := cell("name")
		if name == "" {
			continue
		}

		sg := Safeguard{
			Name:                    name,
			Description:             cell("description"),
			BELLSScore:              ParseRate(cell("bells_score")),
			PerformanceScore:        ParseRate(cell("performance_score")),
			APIAvailable:            ParseFlag(cell("api_available")),
			SelfHosted:              ParseFlag(cell("self_hosted")),
			RAGCompatible:           ParseFlag(cell("rag_compatible")),
			DetectionAdversarial:    ParseRate(cell("detection_adversarial")),
			DetectionNonAdversarial: ParseRate(cell("detection_non_adversarial")),
			FalsePositiveRate:       ParseRate(cell("false_positive_rate")),
		}

		for i, col := range cols {
			if claimed[i] || i >= len(rec) || col == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				continue
			}
			if sg.Metrics == nil {
				sg.Metrics = make(map[string]float64)
			}
			sg.Metrics[col] = clamp01(v)
		}

		out = append(out, sg)
	}
	return out, nil
}

func resolveColumns(cols []string) map[string]int {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	fields := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if idx, ok := index[a]; ok {
				fields[field] = idx
				break
			}
		}
	}
	return fields
}

// ParseRate converts a numeric cell to a rate in [0,1]. Blank or malformed
// cells read as 0.
func ParseRate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return clamp01(v)
}

// ParseFlag reads 1/0, true/false and yes/no cells. Anything else is false.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	default:
		return false
	}
}
