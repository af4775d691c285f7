// Package scorer rates workflow documents on performance, security and
// maintainability with fixed structural heuristics.
package scorer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
)

const (
	maxScore = 100

	httpNodeAllowance = 5
	setNodeAllowance  = 3
	nodeAllowance     = 20
)

var (
	sensitiveTerms   = []string{"password", "token", "key"}
	genericNodeName  = regexp.MustCompile(`(?i)^(node|untitled)(\s*\d+)?$`)
	commentMarker    = regexp.MustCompile(`//|/\*|#`)
	expressionMarker = regexp.MustCompile(`\{\{|\$`)
)

// Score computes the three scores for doc. A nil document scores 100 across
// the board with no recommendations.
func Score(doc *models.WorkflowDocument) *models.Score {
	score := &models.Score{
		Performance:     maxScore,
		Security:        maxScore,
		Maintainability: maxScore,
		Recommendations: make([]string, 0),
	}

	if doc == nil {
		return score
	}

	s := &scoring{doc: doc, score: score}
	s.performance()
	s.security()
	s.maintainability()

	score.Performance = clamp(score.Performance)
	score.Security = clamp(score.Security)
	score.Maintainability = clamp(score.Maintainability)

	return score
}

type scoring struct {
	doc   *models.WorkflowDocument
	score *models.Score
}

func (s *scoring) recommend(format string, args ...any) {
	s.score.Recommendations = append(s.score.Recommendations, fmt.Sprintf(format, args...))
}

func (s *scoring) performance() {
	httpNodes := s.doc.CountType(models.NodeTypeHTTPRequest)
	setNodes := s.doc.CountType(models.NodeTypeSet)
	codeNodes := s.doc.CountType(models.NodeTypeCode)

	if httpNodes > httpNodeAllowance {
		s.score.Performance -= 10 * (httpNodes - httpNodeAllowance)
		s.recommend("Reduce the number of HTTP Request nodes (%d); batch calls where the API allows it", httpNodes)
	}

	if setNodes > setNodeAllowance {
		s.score.Performance -= 5 * (setNodes - setNodeAllowance)
		s.recommend("Combine the %d Set nodes into a single Code node", setNodes)
	}

	if codeNodes >= 1 && setNodes <= 2 {
		s.score.Performance += 10
	}
}

func (s *scoring) security() {
	for _, node := range s.doc.Nodes {
		if node == nil {
			continue
		}

		if hardcodedSecret(node.Parameters) {
			s.score.Security -= 20
			s.recommend("Node %q appears to contain a hardcoded credential; use credentials or expressions instead", node.Name)
		}

		switch {
		case models.IsType(node.Type, models.NodeTypeHTTPRequest):
			if auth, _ := node.Parameters["authentication"].(string); auth == "" || auth == "none" {
				s.score.Security -= 5
				s.recommend("Configure authentication on HTTP Request node %q", node.Name)
			}
		case models.IsType(node.Type, models.NodeTypeWebhook):
			if !hasAllowedOrigins(node.Parameters) {
				s.score.Security -= 10
				s.recommend("Restrict allowed origins on webhook %q", node.Name)
			}
		}
	}
}

func (s *scoring) maintainability() {
	hasIf := s.doc.CountType(models.NodeTypeIf) > 0
	mentionsError := false
	httpNodes := 0
	commented := false

	for _, node := range s.doc.Nodes {
		if node == nil {
			continue
		}

		if genericName(node) {
			s.score.Maintainability -= 5
			s.recommend("Give node %q a descriptive name", node.Name)
		}

		text := parameterText(node.Parameters)
		if strings.Contains(strings.ToLower(text), "error") {
			mentionsError = true
		}

		if models.IsType(node.Type, models.NodeTypeHTTPRequest) {
			httpNodes++
		}

		if models.IsType(node.Type, models.NodeTypeCode) {
			if script, ok := node.Parameters["jsCode"].(string); ok && commentMarker.MatchString(script) {
				commented = true
			}
		}
	}

	nodes := len(s.doc.Nodes) - len(s.doc.NullNodes())
	if extra := nodes - nodeAllowance; extra > 0 {
		s.score.Maintainability -= 2 * extra
		s.recommend("Split this %d-node workflow into smaller sub-workflows", nodes)
	}

	if httpNodes > 0 && !hasIf && !mentionsError {
		s.score.Maintainability -= 15
		s.recommend("Add error handling around HTTP requests")
	}

	if commented {
		s.score.Maintainability += 10
	}
}

func genericName(node *models.DocumentNode) bool {
	name := strings.TrimSpace(node.Name)

	return strings.EqualFold(name, models.ShortName(node.Type)) || genericNodeName.MatchString(name)
}

func hardcodedSecret(parameters map[string]any) bool {
	text := strings.ToLower(parameterText(parameters))

	for _, term := range sensitiveTerms {
		if strings.Contains(text, term) {
			return !expressionMarker.MatchString(text)
		}
	}

	return false
}

func hasAllowedOrigins(parameters map[string]any) bool {
	options, ok := parameters["options"].(map[string]any)
	if !ok {
		return false
	}

	origins, ok := options["allowedOrigins"].(string)

	return ok && origins != "" && origins != "*"
}

func parameterText(parameters map[string]any) string {
	if len(parameters) == 0 {
		return ""
	}

	data, err := json.Marshal(parameters)
	if err != nil {
		return ""
	}

	return string(data)
}

func clamp(v int) int {
	return max(0, min(maxScore, v))
}
