// Package classify assigns each cataloged tool a structural type using a
// data-driven rule table of URL, keyword, tag, category, and pricing
// signals. Classification is a pure function: the same tool always yields
// the same result, and weak evidence degrades to the generic type rather
// than a confidently wrong label.
package classify

import (
	"regexp"
	"strings"

	"github.com/agentstation/toolindex/pkg/catalog"
)

// Signal weights. A URL pattern is the strongest single signal; keyword
// occurrences accumulate; name matches count half a description match.
const (
	urlWeight      = 3.0
	keywordWeight  = 1.0
	nameWeight     = 0.5
	tagWeight      = 1.5
	categoryWeight = 2.0
	pricingWeight  = 1.0

	// maxAttainableScore normalizes raw scores into confidence.
	// Empirically chosen: a strong multi-signal match lands near 10.
	maxAttainableScore = 10.0

	// minConfidence is the floor below which a result is forced to
	// TypeGeneric regardless of which type scored highest.
	minConfidence = 0.1
)

// Result is the outcome of classifying one tool.
type Result struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`

	// Sections are the recommended content sections for the chosen type.
	Sections []string `json:"sections"`

	// Aggregators are the metric sources worth querying for the chosen type.
	Aggregators []string `json:"aggregators,omitempty"`

	// Scores holds the raw accumulated score per type, for diagnostics.
	Scores map[Type]float64 `json:"scores,omitempty"`
}

// Classify returns the single best-matching type for a tool, with a
// normalized confidence and the section list associated with that type.
// A tool with no matching signals resolves to TypeGeneric with zero
// confidence; this never errors.
func Classify(tool *catalog.Tool) Result {
	scores := make(map[Type]float64, len(ruleTable))
	for toolType, rules := range ruleTable {
		scores[toolType] = typeScore(tool, rules)
	}

	// Fixed evaluation order keeps tie-breaks deterministic.
	best := TypeGeneric
	bestScore := 0.0
	for _, toolType := range typeOrder {
		if score := scores[toolType]; score > bestScore {
			best = toolType
			bestScore = score
		}
	}

	confidence := bestScore / maxAttainableScore
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < minConfidence {
		best = TypeGeneric
	}

	return Result{
		Type:        best,
		Confidence:  confidence,
		Sections:    SectionsForType(best),
		Aggregators: AggregatorsForType(best),
		Scores:      scores,
	}
}

// typeScore accumulates the weighted signal score for one rule-table row.
func typeScore(tool *catalog.Tool, rules signals) float64 {
	score := 0.0

	if matchesAnyPattern(tool.URL, rules.URLPatterns) {
		score += urlWeight
	}

	score += float64(countSignals(tool.Description, rules.DescriptionSignals)) * keywordWeight
	score += float64(countSignals(tool.Name, rules.DescriptionSignals)) * nameWeight

	for _, tag := range tool.Tags {
		if containsFold(rules.TagSignals, tag) {
			score += tagWeight
		}
	}

	if len(rules.CategorySignals) > 0 && containsFold(rules.CategorySignals, tool.Category) {
		score += categoryWeight
	}

	if len(rules.PricingSignals) > 0 {
		score += float64(countSignals(tool.Pricing, rules.PricingSignals)) * pricingWeight
	}

	return score
}

// matchesAnyPattern reports whether the lowercased URL matches any pattern.
func matchesAnyPattern(url string, patterns []*regexp.Regexp) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, pattern := range patterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// countSignals counts how many of the given signals occur in the text.
func countSignals(text string, signalList []string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	count := 0
	for _, signal := range signalList {
		if strings.Contains(lower, signal) {
			count++
		}
	}
	return count
}

// containsFold reports whether the list contains the value, case-insensitively.
func containsFold(list []string, value string) bool {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, item := range list {
		if strings.ToLower(strings.TrimSpace(item)) == normalized {
			return true
		}
	}
	return false
}
