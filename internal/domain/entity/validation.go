package entity

import (
	"fmt"
	"strings"
)

// ValidationItem is a single check reported by REST PKI.
type ValidationItem struct {
	Type                   string             `json:"type"`
	Message                string             `json:"message"`
	Detail                 string             `json:"detail,omitempty"`
	InnerValidationResults *ValidationResults `json:"innerValidationResults,omitempty"`
}

// ValidationResults is the outcome of a certificate or signature validation.
type ValidationResults struct {
	Errors       []ValidationItem `json:"errors"`
	Warnings     []ValidationItem `json:"warnings"`
	PassedChecks []ValidationItem `json:"passedChecks"`
}

func (v *ValidationResults) IsValid() bool {
	return v == nil || len(v.Errors) == 0
}

func (v *ValidationResults) ChecksPerformed() int {
	if v == nil {
		return 0
	}
	return len(v.Errors) + len(v.Warnings) + len(v.PassedChecks)
}

// Summary is a one-line description, e.g. "5 checks performed, 1 errors, 4 passed".
func (v *ValidationResults) Summary() string {
	if v.ChecksPerformed() == 0 {
		return "no checks performed"
	}
	parts := []string{fmt.Sprintf("%d checks performed", v.ChecksPerformed())}
	if len(v.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", len(v.Errors)))
	}
	if len(v.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", len(v.Warnings)))
	}
	if len(v.PassedChecks) > 0 {
		if len(v.Errors) == 0 && len(v.Warnings) == 0 {
			parts = append(parts, "all passed")
		} else {
			parts = append(parts, fmt.Sprintf("%d passed", len(v.PassedChecks)))
		}
	}
	return strings.Join(parts, ", ")
}

func (v *ValidationResults) String() string {
	return v.format(0)
}

func (v *ValidationResults) format(level int) string {
	indent := strings.Repeat("\t", level)
	var sb strings.Builder
	sb.WriteString(indent + "Validation results: " + v.Summary())
	if v == nil {
		return sb.String()
	}
	writeItems := func(title string, items []ValidationItem) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n" + indent + title + ":")
		for _, item := range items {
			sb.WriteString("\n" + indent + "- " + item.Message)
			if item.Detail != "" {
				sb.WriteString(" (" + item.Detail + ")")
			}
			if item.InnerValidationResults != nil {
				sb.WriteString("\n" + item.InnerValidationResults.format(level+1))
			}
		}
	}
	writeItems("Errors", v.Errors)
	writeItems("Warnings", v.Warnings)
	writeItems("Passed checks", v.PassedChecks)
	return sb.String()
}
