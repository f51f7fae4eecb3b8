package analyzer

import (
	"encoding/json"
	"strings"

	"nuverify/internal/llm"
	"nuverify/internal/scanner"
)

// Severity grades a compatibility issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one compatibility problem found in a script.
type Issue struct {
	Description  string   `json:"description"`
	SuggestedFix string   `json:"suggested_fix"`
	Severity     Severity `json:"severity"`
}

// Analysis is the verdict for one script against the target version.
type Analysis struct {
	Script        scanner.ScriptFile
	TargetVersion string
	Issues        []Issue
	IsCompatible  bool
	Skipped       bool
	Err           error
}

// ParseIssues interprets the oracle's analysis response. Exactly the
// compatibility sentinel means no issues. Otherwise the response should carry
// a JSON array of issues, possibly wrapped in markdown fences or prose; a
// response that cannot be parsed becomes a single warning issue whose
// description is the raw response text, so the verdict is never silently
// dropped.
func ParseIssues(response string) []Issue {
	trimmed := strings.TrimSpace(response)
	if trimmed == llm.CompatibleSentinel {
		return nil
	}

	payload := extractJSONArray(trimmed)
	var issues []Issue
	if payload == "" || json.Unmarshal([]byte(payload), &issues) != nil {
		return []Issue{{
			Description: trimmed,
			Severity:    SeverityWarning,
		}}
	}

	out := issues[:0]
	for _, iss := range issues {
		if iss.Description == "" {
			continue
		}
		switch iss.Severity {
		case SeverityError, SeverityWarning, SeverityInfo:
		default:
			iss.Severity = SeverityWarning
		}
		out = append(out, iss)
	}
	return out
}

// extractJSONArray pulls the outermost [...] span out of a response that may
// surround it with fences or commentary.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
