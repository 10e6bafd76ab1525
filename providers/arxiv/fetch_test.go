package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"research-pilot/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Deep   Learning
      for   Robots</title>
    <summary>We propose a
      method for robot learning.</summary>
    <published>2023-01-05T18:30:00Z</published>
    <author><name>Alice Example</name></author>
    <author><name>Bob Sample</name></author>
    <link href="http://arxiv.org/abs/2301.00001v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.00001v1" rel="related" title="pdf" type="application/pdf"/>
    <arxiv:primary_category term="cs.LG"/>
    <category term="cs.LG"/>
    <category term="cs.RO"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.00002v1</id>
    <title>Ancient History of Mathematics</title>
    <summary>A historical account.</summary>
    <published>not-a-date</published>
    <category term="math.HO"/>
  </entry>
</feed>`

func testFetcher(baseURL string) *Fetcher {
	cfg := &config.Config{
		ArxivBaseURL:         baseURL,
		ArxivMaxResults:      10,
		SearchTimeoutSeconds: 5,
	}
	return NewFetcher(cfg, zap.NewNop())
}

func TestSearchMapsFeedEntries(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	papers, err := f.Search(context.Background(), "robot learning")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "all:robot learning" {
		t.Errorf("search_query = %q, want all:robot learning", gotQuery)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}

	p := papers[0]
	if p.Title != "Deep Learning for Robots" {
		t.Errorf("title not whitespace-collapsed: %q", p.Title)
	}
	if p.Abstract != "We propose a method for robot learning." {
		t.Errorf("abstract = %q", p.Abstract)
	}
	if p.URL != "http://arxiv.org/abs/2301.00001v1" {
		t.Errorf("url = %q", p.URL)
	}
	if p.PDFURL != "http://arxiv.org/pdf/2301.00001v1" {
		t.Errorf("pdf url = %q", p.PDFURL)
	}
	if p.Source != "arxiv" {
		t.Errorf("source = %q", p.Source)
	}

	authors := p.AuthorList()
	if len(authors) != 2 || authors[0] != "Alice Example" || authors[1] != "Bob Sample" {
		t.Errorf("authors = %v", authors)
	}

	if p.PublishedDate == nil {
		t.Fatal("published date missing")
	}
	want := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	if !p.PublishedDate.Equal(want) {
		t.Errorf("published date = %v, want %v (date only)", p.PublishedDate, want)
	}

	if p.DomainHint != "machine-learning" {
		t.Errorf("domain hint = %q, want machine-learning", p.DomainHint)
	}

	// Second entry: unparseable date, unmapped category.
	p2 := papers[1]
	if p2.PublishedDate != nil {
		t.Errorf("unparseable date should be dropped, got %v", p2.PublishedDate)
	}
	if p2.DomainHint != "general" {
		t.Errorf("unmapped category hint = %q, want general", p2.DomainHint)
	}
	if p2.PDFURL != "" {
		t.Errorf("pdf url without pdf link = %q", p2.PDFURL)
	}
}

func TestSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	if _, err := f.Search(context.Background(), "anything"); err == nil {
		t.Fatal("want error on non-200 response")
	}
}

func TestSearchMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml"))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	if _, err := f.Search(context.Background(), "anything"); err == nil {
		t.Fatal("want error on malformed feed")
	}
}

func TestDomainHintPrefixes(t *testing.T) {
	cases := map[string]string{
		"cs.LG":    "machine-learning",
		"stat.ML":  "machine-learning",
		"cs.CL":    "natural-language-processing",
		"quant-ph": "quantum-computing",
		"q-bio.GN": "bioinformatics",
		"math.CO":  "general",
		"":         "general",
	}
	for term, want := range cases {
		if got := domainHint(term); got != want {
			t.Errorf("domainHint(%q) = %q, want %q", term, got, want)
		}
	}
}
