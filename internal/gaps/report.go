package gaps

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Search-assistance link bases. Pure string templates, never fetched.
const (
	webSearchBase      = "https://www.google.com/search?q="
	registrySearchBase = "https://www.crunchbase.com/textsearch?q="
)

// DefaultPriorityLimit caps the cross-cutting priority view.
const DefaultPriorityLimit = 30

// SearchLinks returns the two manual-lookup URLs for a company name.
func SearchLinks(name string) (web, registry string) {
	return webSearchBase + url.QueryEscape(name+" funding"),
		registrySearchBase + url.QueryEscape(name)
}

var moneyPrinter = message.NewPrinter(language.English)

func formatFunding(amount *int64) string {
	if amount == nil {
		return "-"
	}
	return moneyPrinter.Sprintf("$%d", *amount)
}

// Render writes the human-readable gap report: one ranked table per
// non-empty bucket section, the top-N priority view, and the closing
// bucket counts.
func Render(w io.Writer, entries []Entry, priorityLimit int) error {
	if priorityLimit <= 0 {
		priorityLimit = DefaultPriorityLimit
	}

	var covered int
	byReason := map[Reason][]Entry{}
	var missingFunding, missingDate []Entry
	for _, e := range entries {
		switch e.Bucket {
		case FullyCovered:
			covered++
		case MissingFunding:
			missingFunding = append(missingFunding, e)
			byReason[e.Reason] = append(byReason[e.Reason], e)
		case MissingDateOnly:
			missingDate = append(missingDate, e)
		}
	}

	var b strings.Builder
	b.WriteString("COVERAGE GAP REPORT\n")
	b.WriteString(strings.Repeat("=", 80) + "\n")

	sections := []struct {
		title  string
		reason Reason
	}{
		{"Missing funding: international (no filing coverage)", ReasonInternational},
		{"Missing funding: low-confidence filing match", ReasonLowConfidence},
		{"Missing funding: no filing match", ReasonFilingMiss},
	}
	for _, s := range sections {
		rows := byReason[s.reason]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
		writeSection(&b, s.title, rows)
	}

	// Ranked by funding, descending: within this bucket the amount is the
	// only signal of how much a missing date matters.
	sort.SliceStable(missingDate, func(i, j int) bool {
		return fundingOf(missingDate[i]) > fundingOf(missingDate[j])
	})
	writeSection(&b, "Missing date only (funding known)", missingDate)

	writePriorityView(&b, missingDate, priorityLimit)

	b.WriteString("\n--- totals ---\n")
	fmt.Fprintf(&b, "fully_covered:     %d\n", covered)
	fmt.Fprintf(&b, "missing_funding:   %d\n", len(missingFunding))
	fmt.Fprintf(&b, "missing_date_only: %d\n", len(missingDate))

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "gaps: write report")
}

func writeSection(b *strings.Builder, title string, rows []Entry) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d)\n", title, len(rows))
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, e := range rows {
		writeRow(b, e)
	}
}

// writePriorityView renders the top-N missing-date records that do carry a
// funding amount, descending by amount: the highest-value remaining gaps.
func writePriorityView(b *strings.Builder, missingDate []Entry, limit int) {
	var priority []Entry
	for _, e := range missingDate {
		if e.Funding != nil && *e.Funding > 0 {
			priority = append(priority, e)
		}
	}
	if len(priority) > limit {
		priority = priority[:limit]
	}
	if len(priority) == 0 {
		return
	}

	fmt.Fprintf(b, "\nPriority: top %d by funding, date still unknown\n", len(priority))
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for i, e := range priority {
		fmt.Fprintf(b, "%3d. ", i+1)
		writeRow(b, e)
	}
}

// writeRow renders one report row. Every row carries both search links so a
// human can jump straight to manual follow-up.
func writeRow(b *strings.Builder, e Entry) {
	web, registry := SearchLinks(e.Name)
	fmt.Fprintf(b, "%-40s %-3s %14s  %s  %s\n",
		truncate(e.Name, 40), countryOrDefault(e.Country), formatFunding(e.Funding), web, registry)
}

func countryOrDefault(country string) string {
	if country == "" {
		return DefaultHomeCountry
	}
	return country
}

func fundingOf(e Entry) int64 {
	if e.Funding == nil {
		return 0
	}
	return *e.Funding
}

// truncate shortens s to at most max characters, counting runes so a
// multibyte name is never cut mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
