// Package security scans installed assets for credentials that should not
// be shipped in prompts, instructions or skill bundles.
package security

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauern/workspace-architect/internal/catalog"
	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/validation"
)

// Severity grades a finding.
type Severity int

const (
	// SeverityWarning findings are reported but do not fail validation.
	SeverityWarning Severity = iota
	// SeverityError findings fail validation.
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Rule is one credential pattern.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
	Severity    Severity
}

// DefaultRules returns the built-in credential patterns.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "api-key",
			Pattern:     regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}['"]?`),
			Description: "API key pattern detected",
		},
		{
			Name:        "token",
			Pattern:     regexp.MustCompile(`(?i)(token|access[_-]?token|auth[_-]?token)\s*[:=]\s*['"]?[a-zA-Z0-9_\-\.]{16,}['"]?`),
			Description: "Authentication token pattern detected",
		},
		{
			Name:        "password",
			Pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?[a-zA-Z0-9_\-@!#$%^&*()]{8,}['"]?`),
			Description: "Password pattern detected",
		},
		{
			Name:        "aws-access-key",
			Pattern:     regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
			Description: "AWS access key detected",
			Severity:    SeverityError,
		},
		{
			Name:        "github-token",
			Pattern:     regexp.MustCompile(`\b(ghp|gho|ghs|ghu|github_pat)_[a-zA-Z0-9_]{36,}`),
			Description: "GitHub token detected",
			Severity:    SeverityError,
		},
		{
			Name:        "private-key",
			Pattern:     regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----`),
			Description: "Private key detected",
			Severity:    SeverityError,
		},
		{
			Name:        "bearer-token",
			Pattern:     regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.]{20,}`),
			Description: "Bearer token detected",
		},
		{
			Name:        "connection-string",
			Pattern:     regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb|redis)://[^:/\s]+:[^@\s]+@`),
			Description: "Database connection string with credentials detected",
			Severity:    SeverityError,
		},
	}
}

// Finding is one rule match.
type Finding struct {
	Rule     Rule
	File     string
	Line     int
	Excerpt  string
	Severity Severity
}

// String renders the finding for validation output.
func (f Finding) String() string {
	loc := fmt.Sprintf("line %d", f.Line)
	if f.File != "" {
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return fmt.Sprintf("%s at %s: %s", f.Rule.Description, loc, f.Excerpt)
}

// maxScanSize bounds the files read from a directory asset.
const maxScanSize = 1 << 20

// Scanner matches content against a rule set.
type Scanner struct {
	rules []Rule
}

// NewScanner returns a scanner for rules, or for DefaultRules when rules is
// empty.
func NewScanner(rules []Rule) *Scanner {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Scanner{rules: rules}
}

// Scan returns the findings in content. Each line reports at most one
// finding per rule. file labels the findings.
func (s *Scanner) Scan(file string, content []byte) []Finding {
	var findings []Finding
	for i, line := range strings.Split(string(content), "\n") {
		if ignorable(line) {
			continue
		}
		for _, rule := range s.rules {
			if !rule.Pattern.MatchString(line) {
				continue
			}
			findings = append(findings, Finding{
				Rule:     rule,
				File:     file,
				Line:     i + 1,
				Excerpt:  excerpt(line, 80),
				Severity: rule.Severity,
			})
		}
	}
	return findings
}

// ScanAsset scans an asset file, or every text file of a directory asset.
func (s *Scanner) ScanAsset(a catalog.Asset) ([]Finding, error) {
	if !a.IsDir() {
		// #nosec G304 - path comes from the asset library listing
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, err
		}
		return s.Scan(a.Rel, data), nil
	}

	rels, err := localfs.ListRecursive(a.Path, nil)
	if err != nil {
		return nil, err
	}
	var findings []Finding
	for _, rel := range rels {
		p := filepath.Join(a.Path, filepath.FromSlash(rel))
		if info, err := os.Stat(p); err != nil || info.Size() > maxScanSize {
			continue
		}
		// #nosec G304 - path comes from the asset library listing
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if bytes.IndexByte(data, 0) >= 0 {
			continue
		}
		findings = append(findings, s.Scan(a.Name+"/"+rel, data)...)
	}
	return findings, nil
}

// Record adds findings to result: errors for SeverityError, warnings
// otherwise.
func Record(result *validation.Result, findings []Finding) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			result.AddError(&validation.Error{Field: "content", Message: f.String()})
			continue
		}
		result.AddWarning(f.String())
	}
}

// ignorable reports lines that are comments or show placeholder values.
func ignorable(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"//", "/*", "<!--"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	if strings.HasPrefix(trimmed, "# ") && !strings.ContainsAny(trimmed, ":=") {
		return true
	}

	_, value, found := cutAssignment(trimmed)
	if !found {
		return false
	}
	value = strings.ToLower(strings.Trim(strings.TrimSpace(value), `'"`))
	for _, marker := range []string{"your_", "<your", "placeholder", "example_", "xxxx", "${", "$("} {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}

func cutAssignment(s string) (string, string, bool) {
	idx := strings.IndexAny(s, ":=")
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

func excerpt(line string, n int) string {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) <= n {
		return trimmed
	}
	return trimmed[:n-3] + "..."
}
