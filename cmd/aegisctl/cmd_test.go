package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Aegis/internal/leaderboard"
	"github.com/MikeSquared-Agency/Aegis/internal/scoring"
)

const resultsCSV = `safeguard,BELLS_score,performance_score,api_available,self_hosted,rag_compatible,harmful_jailbreaks,harmful_non-adversarial,benign_non-adversarial
LLM Guard,0.72,0.9,no,yes,no,0.61,0.80,0.12
Lakera Guard,0.91,0.8,yes,no,yes,0.93,0.88,0.04
Prompt Guard,0.65,0.95,no,yes,no,0.97,0.35,0.30
`

func writeResults(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(p, []byte(resultsCSV), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLeaderboardCommand(t *testing.T) {
	path := writeResults(t)

	out, err := run(t, "leaderboard", "--results", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "SAFEGUARD")
	assert.Contains(t, lines[1], "Lakera Guard")
	assert.Contains(t, lines[1], "0.910*")
	assert.Contains(t, lines[3], "Prompt Guard")
	assert.Contains(t, lines[3], "0.970*")
}

func TestLeaderboardCommandJSON(t *testing.T) {
	path := writeResults(t)

	out, err := run(t, "leaderboard", "-r", path, "--json")
	require.NoError(t, err)

	var entries []leaderboard.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "Lakera Guard", entries[0].Safeguard)
}

func TestStatsCommand(t *testing.T) {
	path := writeResults(t)

	out, err := run(t, "stats", "--results", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Safeguards evaluated: 3")
	assert.Contains(t, out, "Highest score:        0.91 (Lakera Guard)")

	out, err = run(t, "stats", "--results", path, "--json")
	require.NoError(t, err)
	var st leaderboard.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 3, st.Total)
}

func TestRecommendCommand(t *testing.T) {
	path := writeResults(t)

	out, err := run(t, "recommend", "--results", path,
		"--system-type", "Black Box API", "--rag", "yes", "--volume", "medium", "--risk", "high",
		"--interaction", "Code generation", "--interaction", "customer_service",
		"--top", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "1  Lakera Guard")
	assert.Contains(t, out, "100.0")
	assert.Regexp(t, `(?m)^2  `, out)
	assert.NotRegexp(t, `(?m)^3  `, out)
	assert.Contains(t, out, "Why Lakera Guard?")
	assert.Contains(t, out, "- Use cases: Code generation, Customer service")
}

func TestRecommendCommandJSON(t *testing.T) {
	path := writeResults(t)

	out, err := run(t, "recommend", "-r", path, "--json",
		"--system-type", "direct_access", "--rag", "no", "--volume", "high", "--risk", "low", "--curve", "quadratic")
	require.NoError(t, err)

	var rec scoring.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Len(t, rec.TopRecommendations, scoring.DefaultTopN)
	assert.Equal(t, scoring.SystemDirectAccess, rec.Preferences.SystemType)
}

func TestRecommendCommandErrors(t *testing.T) {
	path := writeResults(t)
	base := []string{"recommend", "--results", path, "--rag", "yes", "--volume", "low", "--risk", "low"}

	_, err := run(t, base...)
	assert.Error(t, err, "missing --system-type")

	_, err = run(t, append(base, "--system-type", "mainframe")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid preferences")

	_, err = run(t, append(base, "--system-type", "api", "--curve", "cubic")...)
	assert.Error(t, err)

	_, err = run(t, append(base, "--system-type", "api", "--top", "-1")...)
	assert.Error(t, err)
}

func TestMissingResultsFile(t *testing.T) {
	_, err := run(t, "stats", "--results", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
