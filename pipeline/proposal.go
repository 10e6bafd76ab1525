package pipeline

import (
	"fmt"
	"strings"

	"research-pilot/models"
)

// Proposal section headers, in document order. The first seven form the
// stable section set consumers parse the document back by.
const (
	sectionExecutiveSummary = "## 1. Executive Summary"
	sectionBackground       = "## 2. Background and Literature Review"
	sectionGaps             = "## 3. Identified Research Gaps"
	sectionObjectives       = "## 4. Research Objectives"
	sectionMethodology      = "## 5. Proposed Methodology"
	sectionContributions    = "## 6. Expected Contributions"
	sectionTimeline         = "## 7. Project Timeline"
	sectionReferences       = "## 8. References"
)

const proposalTitleTemplate = "Research Proposal: %s"

const executiveSummaryTemplate = "This proposal outlines a research program on %s within the %s domain. " +
	"It is grounded in a review of %d related publications and targets %d identified gaps in the current literature."

const methodologyBody = `The proposed research follows a phased methodology:

1. **Systematic literature consolidation** — extend the automated review underpinning this proposal with manual screening and citation chasing.
2. **Design and prototyping** — develop candidate approaches addressing the high-priority gaps above.
3. **Empirical evaluation** — evaluate the prototypes on established and newly collected data, with ablations against published baselines.
4. **Analysis and dissemination** — consolidate findings, release artifacts, and submit results for peer review.`

const contributionsBody = `- A consolidated, reproducible map of the current literature and its gaps.
- Novel approaches targeting the high-priority gaps identified above.
- Openly released evaluation artifacts enabling follow-up studies.
- Peer-reviewed publications disseminating the findings.`

const timelineBody = `| Phase | Months | Focus |
|---|---|---|
| 1 | 1-3 | Literature consolidation |
| 2 | 4-9 | Design and prototyping |
| 3 | 10-15 | Empirical evaluation |
| 4 | 16-18 | Analysis and dissemination |`

// ComposeProposal renders the topic, retained papers, gaps, and summary
// into a multi-section markdown proposal. Returns the proposal title and
// document body. Pure function over its inputs.
func ComposeProposal(topic, domain string, papers []ScoredPaper, gaps []models.ResearchGap, summary string) (string, string) {
	title := fmt.Sprintf(proposalTitleTemplate, topic)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString(sectionExecutiveSummary + "\n\n")
	fmt.Fprintf(&b, executiveSummaryTemplate+"\n", topic, domain, len(papers), len(gaps))

	b.WriteString("\n" + sectionBackground + "\n\n")
	b.WriteString(summary)
	b.WriteString("\n")

	b.WriteString("\n" + sectionGaps + "\n\n")
	for _, g := range gaps {
		fmt.Fprintf(&b, "- **[%s]** %s\n", g.Priority, g.Description)
	}

	b.WriteString("\n" + sectionObjectives + "\n\n")
	for i, g := range highPriorityGaps(gaps) {
		fmt.Fprintf(&b, "%d. Address the gap: %s\n", i+1, g.Description)
	}

	b.WriteString("\n" + sectionMethodology + "\n\n")
	b.WriteString(methodologyBody + "\n")

	b.WriteString("\n" + sectionContributions + "\n\n")
	b.WriteString(contributionsBody + "\n")

	b.WriteString("\n" + sectionTimeline + "\n\n")
	b.WriteString(timelineBody + "\n")

	b.WriteString("\n" + sectionReferences + "\n\n")
	if len(papers) == 0 {
		b.WriteString("No references were retained for this topic.\n")
	}
	for i, sp := range papers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, FormatReference(sp.Paper))
	}

	return title, b.String()
}

func highPriorityGaps(gaps []models.ResearchGap) []models.ResearchGap {
	var out []models.ResearchGap
	for _, g := range gaps {
		if g.Priority == models.PriorityHigh {
			out = append(out, g)
		}
	}
	return out
}

// FormatReference renders a single paper into a compact reference string.
func FormatReference(p *models.Paper) string {
	authors := strings.Join(p.AuthorList(), ", ")
	if authors == "" {
		authors = "Unknown Authors"
	}
	year := "n.d."
	if p.PublishedDate != nil {
		year = fmt.Sprintf("%d", p.PublishedDate.Year())
	}
	title := p.Title
	if title == "" {
		title = "Untitled"
	}
	if p.URL != "" {
		return fmt.Sprintf("%s (%s). %s. %s. %s", authors, year, title, p.Source, p.URL)
	}
	return fmt.Sprintf("%s (%s). %s. %s", authors, year, title, p.Source)
}
