package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/scanhub/scanhub/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines enforcement rules for normalized scan results.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxTotal        *int     `yaml:"max_total,omitempty"`
	MaxCritical     *int     `yaml:"max_critical,omitempty"`
	MaxHigh         *int     `yaml:"max_high,omitempty"`
	MaxMedium       *int     `yaml:"max_medium,omitempty"`
	MaxRiskScore    *int     `yaml:"max_risk_score,omitempty"`
	ForbiddenLevels []string `yaml:"forbidden_levels,omitempty"`
	RequireTools    []string `yaml:"require_tools,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	names := []string{".scanhub-policy.yaml", ".scanhub-policy.yml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range names {
			path := dir + "/" + name
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := dir[:strings.LastIndex(dir, "/")]
		if parent == dir || parent == "" {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a normalized report against the policy rules.
func (p *Policy) Evaluate(report *models.NormalizedReport) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var violations []Violation
	metrics := report.RiskMetrics

	// max_total
	if p.Rules.MaxTotal != nil {
		if metrics.Total > *p.Rules.MaxTotal {
			violations = append(violations, Violation{
				Rule:    "max_total",
				Message: fmt.Sprintf("total vulnerabilities %d exceeds limit %d", metrics.Total, *p.Rules.MaxTotal),
			})
		}
	}

	// max_critical
	if p.Rules.MaxCritical != nil {
		if metrics.Critical > *p.Rules.MaxCritical {
			violations = append(violations, Violation{
				Rule:    "max_critical",
				Message: fmt.Sprintf("critical vulnerabilities %d exceeds limit %d", metrics.Critical, *p.Rules.MaxCritical),
			})
		}
	}

	// max_high
	if p.Rules.MaxHigh != nil {
		if metrics.High > *p.Rules.MaxHigh {
			violations = append(violations, Violation{
				Rule:    "max_high",
				Message: fmt.Sprintf("high vulnerabilities %d exceeds limit %d", metrics.High, *p.Rules.MaxHigh),
			})
		}
	}

	// max_medium
	if p.Rules.MaxMedium != nil {
		if metrics.Medium > *p.Rules.MaxMedium {
			violations = append(violations, Violation{
				Rule:    "max_medium",
				Message: fmt.Sprintf("medium vulnerabilities %d exceeds limit %d", metrics.Medium, *p.Rules.MaxMedium),
			})
		}
	}

	// max_risk_score
	if p.Rules.MaxRiskScore != nil {
		if metrics.RiskScore > *p.Rules.MaxRiskScore {
			violations = append(violations, Violation{
				Rule:    "max_risk_score",
				Message: fmt.Sprintf("risk score %d exceeds limit %d", metrics.RiskScore, *p.Rules.MaxRiskScore),
			})
		}
	}

	// forbidden_levels
	if len(p.Rules.ForbiddenLevels) > 0 {
		for _, level := range p.Rules.ForbiddenLevels {
			if strings.EqualFold(level, metrics.RiskLevel) {
				violations = append(violations, Violation{
					Rule:    "forbidden_levels",
					Message: fmt.Sprintf("risk level %s is forbidden by policy", metrics.RiskLevel),
				})
			}
		}
	}

	// require_tools
	if len(p.Rules.RequireTools) > 0 {
		for _, tool := range p.Rules.RequireTools {
			entry, found := report.ToolSummary[tool]
			if !found || entry.Status == models.StatusNotFound {
				violations = append(violations, Violation{
					Rule:    "require_tools",
					Message: fmt.Sprintf("required tool %q did not contribute a report", tool),
				})
			}
		}
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}
