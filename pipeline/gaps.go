package pipeline

import (
	"fmt"

	"research-pilot/models"
)

// Gap statement templates. These are enumerated, not inferred: every run
// emits all seven, parameterized by the topic and two aggregate counts.
// Wording changes here must not change template ordering or priorities.
const (
	gapCrossDomain     = "Cross-domain generalization of %s remains underexplored; the surveyed studies rarely validate their findings outside the original application setting."
	gapMethodDiversity = "Only %d distinct methodologies appear across the retrieved literature on %s, indicating room for methodological diversification."
	gapScalability     = "Scalability of current approaches to %s under realistic resource and latency constraints is largely unexamined."
	gapDataBreadth     = "The evidence base spans %d distinct data types; research on %s would benefit from evaluation on broader, more heterogeneous data."
	gapReproducibility = "Standardized benchmarks and reproducibility protocols for %s are scarce in the surveyed work."
	gapLongitudinal    = "Longitudinal studies tracking %s outcomes over extended time horizons are absent from the current literature."
	gapSocietal        = "Ethical, societal, and deployment considerations of %s receive little systematic attention."
)

// gapWindows are the fixed supporting-paper slice windows, one per
// template. Windows are clamped to the available papers and may be empty.
var gapWindows = [7][2]int{{0, 3}, {2, 5}, {1, 4}, {3, 6}, {0, 2}, {4, 7}, {2, 6}}

// gapPriorities is the fixed priority sequence for the seven statements.
var gapPriorities = [7]string{
	models.PriorityHigh, models.PriorityHigh, models.PriorityHigh,
	models.PriorityMedium, models.PriorityMedium, models.PriorityMedium,
	models.PriorityLow,
}

// IdentifyGaps emits exactly seven templated gap statements for the topic.
// The returned records carry no IDs or topic references yet; the caller
// assigns those before persisting.
func IdentifyGaps(papers []ScoredPaper, analyses []Analysis, topic string) []models.ResearchGap {
	methodCount := distinctFieldCount(analyses, func(a Analysis) string { return a.Methodology })
	dataTypeCount := distinctFieldCount(analyses, func(a Analysis) string { return a.DataType })

	descriptions := [7]string{
		fmt.Sprintf(gapCrossDomain, topic),
		fmt.Sprintf(gapMethodDiversity, methodCount, topic),
		fmt.Sprintf(gapScalability, topic),
		fmt.Sprintf(gapDataBreadth, dataTypeCount, topic),
		fmt.Sprintf(gapReproducibility, topic),
		fmt.Sprintf(gapLongitudinal, topic),
		fmt.Sprintf(gapSocietal, topic),
	}

	gaps := make([]models.ResearchGap, 0, len(descriptions))
	for i, desc := range descriptions {
		g := models.ResearchGap{
			Description: desc,
			Priority:    gapPriorities[i],
		}
		g.SetSupportingPaperTitles(paperTitleWindow(papers, gapWindows[i]))
		gaps = append(gaps, g)
	}
	return gaps
}

func distinctFieldCount(analyses []Analysis, field func(Analysis) string) int {
	seen := make(map[string]bool, len(analyses))
	for _, a := range analyses {
		if v := field(a); v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// paperTitleWindow slices the retained papers by the given window, clamped
// to the available range. Fewer papers than the window spans is legitimate
// and yields a shorter (possibly empty) list.
func paperTitleWindow(papers []ScoredPaper, window [2]int) []string {
	start, end := window[0], window[1]
	if start > len(papers) {
		start = len(papers)
	}
	if end > len(papers) {
		end = len(papers)
	}
	titles := make([]string, 0, end-start)
	for _, sp := range papers[start:end] {
		titles = append(titles, sp.Paper.Title)
	}
	return titles
}
