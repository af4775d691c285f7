// Package recommender ranks catalog node types against a free-text intent.
package recommender

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dukex/flowgen/pkg/analyzer"
	"github.com/dukex/flowgen/pkg/models"
)

// MaxRecommendations caps the number of returned recommendations.
const MaxRecommendations = 6

const (
	keywordScore = 10
	absentScore  = 5
	patternScore = 15
)

// NodeRecommendation is a ranked catalog entry.
type NodeRecommendation struct {
	TypeID      string `json:"type_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Reasoning   string `json:"reasoning"`
}

// Lister is the catalog view the recommender reads from.
type Lister interface {
	List(ctx context.Context) []*models.NodeTypeDefinition
}

// Recommender ranks node types from a catalog.
type Recommender struct {
	catalog Lister
}

// New creates a recommender over catalog.
func New(catalog Lister) *Recommender {
	return &Recommender{catalog: catalog}
}

// Recommend scores the catalog against intent. currentNodes holds the type ids
// already placed in the workflow.
func (r *Recommender) Recommend(ctx context.Context, intent string, currentNodes []string) []*NodeRecommendation {
	return Rank(r.catalog.List(ctx), analyzer.Analyze(intent), currentNodes)
}

// Rank scores defs against an analysis. Deprecated and zero-score nodes are
// excluded; the result is ordered by descending score, ties kept in catalog order.
func Rank(defs []*models.NodeTypeDefinition, analysis *analyzer.Analysis, currentNodes []string) []*NodeRecommendation {
	present := make(map[string]bool, len(currentNodes))
	for _, t := range currentNodes {
		present[t] = true
	}

	recommendations := make([]*NodeRecommendation, 0, len(defs))

	for _, def := range defs {
		if def.Deprecated {
			continue
		}

		score, reasons := scoreNode(def, analysis, present)
		if score == 0 {
			continue
		}

		recommendations = append(recommendations, &NodeRecommendation{
			TypeID:      def.TypeID,
			DisplayName: def.DisplayName,
			Score:       score,
			Reasoning:   strings.Join(reasons, "; "),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	if len(recommendations) > MaxRecommendations {
		recommendations = recommendations[:MaxRecommendations]
	}

	return recommendations
}

func scoreNode(def *models.NodeTypeDefinition, analysis *analyzer.Analysis, present map[string]bool) (int, []string) {
	score := 0
	reasons := make([]string, 0, 3)

	matched := make([]string, 0, len(def.Keywords))

	for _, keyword := range def.Keywords {
		if analyzer.HasKeyword(analysis.Keywords, analyzer.Category(keyword)) {
			matched = append(matched, keyword)
		}
	}

	if len(matched) > 0 {
		score += keywordScore * len(matched)
		reasons = append(reasons, fmt.Sprintf("matches %s keywords", strings.Join(matched, ", ")))
	}

	if !present[def.TypeID] {
		score += absentScore
		reasons = append(reasons, "not yet in the workflow")
	}

	for _, pattern := range analysis.Patterns {
		if pattern.Includes(def.TypeID) {
			score += patternScore
			reasons = append(reasons, fmt.Sprintf("used by the %q pattern", pattern.Name))
		}
	}

	return score, reasons
}
