// Package arxiv implements the Provider interface against the arXiv Atom API.
package arxiv

import "encoding/xml"

// feed is the top-level Atom document returned by the query endpoint.
type feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []entry  `xml:"entry"`
}

// entry is a single result in the Atom feed.
type entry struct {
	ID              string     `xml:"id"`
	Title           string     `xml:"title"`
	Summary         string     `xml:"summary"`
	Published       string     `xml:"published"`
	Authors         []author   `xml:"author"`
	Links           []link     `xml:"link"`
	PrimaryCategory category   `xml:"primary_category"`
	Categories      []category `xml:"category"`
}

type author struct {
	Name string `xml:"name"`
}

// link carries the abstract page and PDF URLs; the PDF variant is tagged
// with title="pdf".
type link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type category struct {
	Term string `xml:"term,attr"`
}
