package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"research-pilot/config"
	"research-pilot/models"
)

// categoryHints maps arXiv category prefixes to the coarse domain tags the
// relevance filter scores against. First matching prefix wins.
var categoryHints = []struct {
	prefix string
	domain string
}{
	{"cs.LG", "machine-learning"},
	{"stat.ML", "machine-learning"},
	{"cs.CL", "natural-language-processing"},
	{"cs.CV", "computer-vision"},
	{"cs.RO", "robotics"},
	{"cs.CR", "cybersecurity"},
	{"quant-ph", "quantum-computing"},
	{"q-bio", "bioinformatics"},
	{"cs.DB", "data-science"},
	{"cs.HC", "human-computer-interaction"},
	{"cs.SE", "software-engineering"},
}

// Fetcher wraps the interaction with the arXiv query API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	client *http.Client
}

// NewFetcher creates a new arXiv fetcher with a bounded per-request timeout.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	timeout := time.Duration(cfg.SearchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		Config: cfg,
		Logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (f *Fetcher) Name() string {
	return "arxiv"
}

// Search runs one relevance-sorted query against the arXiv Atom API.
func (f *Fetcher) Search(ctx context.Context, query string) ([]*models.Paper, error) {
	log := f.Logger.With(zap.String("query", query))

	searchURL := f.buildQueryURL(query)
	log.Debug("Calling arXiv API", zap.String("url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn("arXiv API returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("arxiv search failed: status %d", resp.StatusCode)
	}

	var f2 feed
	if err := xml.NewDecoder(resp.Body).Decode(&f2); err != nil {
		return nil, fmt.Errorf("arxiv feed decode: %w", err)
	}

	papers := make([]*models.Paper, 0, len(f2.Entries))
	for i := range f2.Entries {
		papers = append(papers, mapEntryToModel(&f2.Entries[i]))
	}
	log.Debug("arXiv search finished", zap.Int("found_papers", len(papers)))
	return papers, nil
}

// buildQueryURL assembles the query URL with a fixed result cap.
func (f *Fetcher) buildQueryURL(query string) string {
	max := f.Config.ArxivMaxResults
	if max <= 0 {
		max = 10
	}
	return fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		f.Config.ArxivBaseURL, url.QueryEscape("all:"+query), max)
}

// mapEntryToModel converts one Atom entry into our Paper model.
func mapEntryToModel(e *entry) *models.Paper {
	p := &models.Paper{
		Title:    collapseWhitespace(e.Title),
		Abstract: collapseWhitespace(e.Summary),
		URL:      strings.TrimSpace(e.ID),
		Source:   "arxiv",
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	p.SetAuthorList(authors)

	for _, l := range e.Links {
		if l.Title == "pdf" && l.Href != "" {
			p.PDFURL = l.Href
			break
		}
	}

	// Published timestamps come back as RFC3339; only the date part is kept.
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		p.PublishedDate = &d
	}

	term := e.PrimaryCategory.Term
	if term == "" && len(e.Categories) > 0 {
		term = e.Categories[0].Term
	}
	p.DomainHint = domainHint(term)

	return p
}

// domainHint maps an arXiv category term to a coarse domain tag.
func domainHint(term string) string {
	for _, h := range categoryHints {
		if strings.HasPrefix(term, h.prefix) {
			return h.domain
		}
	}
	return "general"
}

// collapseWhitespace trims and folds the newline-wrapped text arXiv returns.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
