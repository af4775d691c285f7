// Package analyzer maps free-text automation descriptions to keyword categories
// and named workflow patterns.
package analyzer

import (
	"strings"

	"github.com/dukex/flowgen/pkg/models"
)

// Category is a keyword category tag.
type Category string

const (
	CategoryWebhook   Category = "webhook"
	CategoryAPI       Category = "api"
	CategoryProcess   Category = "process"
	CategoryCondition Category = "condition"
	CategoryCode      Category = "code"
	CategorySchedule  Category = "schedule"
	CategoryData      Category = "data"
	CategoryEmail     Category = "email"
	CategoryDatabase  Category = "database"
	CategorySplit     Category = "split"
	CategoryMerge     Category = "merge"
)

type categoryTerms struct {
	category Category
	terms    []string
}

// Terms are matched as plain substrings of the lower-cased input, so "if" also
// hits "notify" and "iframe".
var keywordTable = []categoryTerms{
	{CategoryWebhook, []string{"webhook", "hook", "endpoint", "receive", "incoming", "callback"}},
	{CategoryAPI, []string{"api", "http", "rest", "request", "fetch", "call"}},
	{CategoryProcess, []string{"process", "transform", "convert", "modify", "parse", "clean"}},
	{CategoryCondition, []string{"if", "condition", "when", "check", "validate", "filter"}},
	{CategoryCode, []string{"code", "script", "javascript", "function", "custom logic"}},
	{CategorySchedule, []string{"schedule", "cron", "daily", "hourly", "weekly", "timer", "every"}},
	{CategoryData, []string{"data", "json", "csv", "record", "field"}},
	{CategoryEmail, []string{"email", "mail", "notify", "notification", "smtp"}},
	{CategoryDatabase, []string{"database", "sql", "postgres", "mysql", "table", "store"}},
	{CategorySplit, []string{"split", "batch", "loop", "each", "chunk"}},
	{CategoryMerge, []string{"merge", "combine", "join", "aggregate"}},
}

// Categories returns every keyword category in table order.
func Categories() []Category {
	out := make([]Category, 0, len(keywordTable))
	for _, entry := range keywordTable {
		out = append(out, entry.category)
	}

	return out
}

// ExtractKeywords returns the categories with at least one term contained in
// text, in table order.
func ExtractKeywords(text string) []Category {
	lower := strings.ToLower(text)
	found := make([]Category, 0)

	for _, entry := range keywordTable {
		for _, term := range entry.terms {
			if strings.Contains(lower, term) {
				found = append(found, entry.category)

				break
			}
		}
	}

	return found
}

// HasKeyword reports whether category is among keywords.
func HasKeyword(keywords []Category, category Category) bool {
	for _, k := range keywords {
		if k == category {
			return true
		}
	}

	return false
}

// FindMatchingPatterns returns the patterns whose use case contains any
// whitespace-separated token of text longer than three characters.
func FindMatchingPatterns(text string) []*models.WorkflowPattern {
	tokens := significantTokens(text)
	matches := make([]*models.WorkflowPattern, 0)

	for _, pattern := range Patterns() {
		if patternMatches(pattern, tokens) {
			matches = append(matches, pattern)
		}
	}

	return matches
}

// Analysis is the combined analyzer output for one description.
type Analysis struct {
	Keywords []Category                `json:"keywords"`
	Patterns []*models.WorkflowPattern `json:"patterns"`
}

// Analyze runs keyword extraction and pattern matching.
func Analyze(text string) *Analysis {
	return &Analysis{
		Keywords: ExtractKeywords(text),
		Patterns: FindMatchingPatterns(text),
	}
}

// PatternNames returns the names of the given patterns.
func PatternNames(patterns []*models.WorkflowPattern) []string {
	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.Name)
	}

	return names
}

func significantTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))

	for _, f := range fields {
		if len(f) > 3 {
			tokens = append(tokens, f)
		}
	}

	return tokens
}

func patternMatches(pattern *models.WorkflowPattern, tokens []string) bool {
	useCase := strings.ToLower(pattern.UseCase)

	for _, token := range tokens {
		if strings.Contains(useCase, token) {
			return true
		}
	}

	return false
}
