package pipeline

import (
	"sort"
	"strings"

	"research-pilot/models"
)

// Relevance scoring weights and bounds.
const (
	titleTokenWeight    = 10
	abstractTokenWeight = 5
	distinctTokenBonus  = 3
	domainHintBonus     = 15
	minRelevanceScore   = 5
	maxRetainedPapers   = 12
)

// ScoredPaper pairs a candidate with its relevance score. Output order is
// significant downstream: later stages slice the first entries as the most
// salient ones.
type ScoredPaper struct {
	Paper *models.Paper
	Score int
}

// FilterByRelevance scores candidates against the topic text and detected
// domain, drops everything scoring minRelevanceScore or below, sorts by
// descending score (stable, so equal scores keep their original order) and
// truncates to the top maxRetainedPapers.
func FilterByRelevance(candidates []*models.Paper, topic, domain string) []ScoredPaper {
	tokens := topicTokens(topic)

	var retained []ScoredPaper
	for _, p := range candidates {
		score := scorePaper(p, tokens, domain)
		if score > minRelevanceScore {
			retained = append(retained, ScoredPaper{Paper: p, Score: score})
		}
	}

	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Score > retained[j].Score
	})
	if len(retained) > maxRetainedPapers {
		retained = retained[:maxRetainedPapers]
	}
	return retained
}

// topicTokens splits the topic into lowercase whitespace tokens longer than
// two characters.
func topicTokens(topic string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(topic)) {
		if len(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func scorePaper(p *models.Paper, tokens []string, domain string) int {
	title := strings.ToLower(p.Title)
	abstract := strings.ToLower(p.Abstract)

	score := 0
	distinct := 0
	for _, tok := range tokens {
		inTitle := strings.Contains(title, tok)
		inAbstract := strings.Contains(abstract, tok)
		if inTitle {
			score += titleTokenWeight
		}
		if inAbstract {
			score += abstractTokenWeight
		}
		if inTitle || inAbstract {
			distinct++
		}
	}
	score += distinctTokenBonus * distinct

	if sharesPrefix(p.DomainHint, domain) {
		score += domainHintBonus
	}
	return score
}

// sharesPrefix reports whether one tag is a prefix of the other, so
// "machine-learning" still matches a hint of "machine-learning" refined
// further by the provider.
func sharesPrefix(hint, domain string) bool {
	if hint == "" || domain == "" || hint == DefaultDomain {
		return false
	}
	return strings.HasPrefix(hint, domain) || strings.HasPrefix(domain, hint)
}
