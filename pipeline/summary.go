package pipeline

import (
	"fmt"
	"strings"
)

// Summary section caps.
const (
	maxSummaryProblems    = 5
	maxSummaryMethods     = 5
	maxSummaryDataTypes   = 5
	maxSummaryFindings    = 4
	maxSummaryLimitations = 5
)

// summaryNotFound is the single sentence emitted when no papers survived
// the relevance filter.
const summaryNotFound = "No relevant papers were found for %q. Consider broadening the topic or rephrasing it with more common terminology."

const summaryHeader = "# Literature Summary\n\n**Domain:** %s\n**Topic:** %s\n"

const summaryLandscape = "\nThe current research landscape comprises %d relevant papers with an average relevance score of %.1f.\n"

// ComposeSummary renders the analyzed set into a fixed-section markdown
// document. Pure function; the only branch is the zero-analyses case.
func ComposeSummary(analyses []Analysis, topic, domain string) string {
	if len(analyses) == 0 {
		return fmt.Sprintf(summaryNotFound, topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, summaryHeader, domain, topic)
	fmt.Fprintf(&b, summaryLandscape, len(analyses), averageScore(analyses))

	b.WriteString("\n## Problems Addressed\n")
	for i, a := range analyses {
		if i >= maxSummaryProblems {
			break
		}
		fmt.Fprintf(&b, "- %s\n", a.Problem)
	}

	b.WriteString("\n## Methodologies\n")
	for i, a := range analyses {
		if i >= maxSummaryMethods {
			break
		}
		fmt.Fprintf(&b, "- %s\n", a.Methodology)
	}

	b.WriteString("\n## Data Types\n")
	for _, dt := range dedupeInOrder(collect(analyses, func(a Analysis) string { return a.DataType }), maxSummaryDataTypes) {
		fmt.Fprintf(&b, "- %s\n", dt)
	}

	b.WriteString("\n## Empirical Findings\n")
	for i, a := range analyses {
		if i >= maxSummaryFindings {
			break
		}
		fmt.Fprintf(&b, "- %s\n", a.KeyResults)
	}

	b.WriteString("\n## Limitations\n")
	for _, l := range dedupeInOrder(collect(analyses, func(a Analysis) string { return a.Limitations }), maxSummaryLimitations) {
		fmt.Fprintf(&b, "- %s\n", l)
	}

	return b.String()
}

func averageScore(analyses []Analysis) float64 {
	total := 0
	for _, a := range analyses {
		total += a.RelevanceScore
	}
	return float64(total) / float64(len(analyses))
}

func collect(analyses []Analysis, field func(Analysis) string) []string {
	out := make([]string, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, field(a))
	}
	return out
}

// dedupeInOrder keeps the first occurrence of each value, capped at max.
func dedupeInOrder(values []string, max int) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
