package quicker

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/codeGROOVE-dev/quickerstat/pkg/htmlutil"
	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
)

// actionsTableSelector matches the shared-actions table by its full
// class set, as rendered on user pages.
const actionsTableSelector = "table.table.table-bordered.table-sm.table-hover"

// actionColumns is the minimum cell count of a data row. Columns:
// icon, name+description, applicable, author, size, likes, downloads,
// frequency.
const actionColumns = 8

//nolint:gosmopolitan // header labels from the site markup
var headerKeywords = []string{"名称", "适用于", "分享人"}

// Actions retrieves all shared actions for a user, walking pages until an
// empty page or the page cap. Returns the actions in site order and the
// number of pages that yielded rows.
//
// A fetch or parse failure on the first page is an error; on later pages
// it ends the walk and the accumulated rows are returned. The next page is
// requested only after the current one proved non-empty.
func (c *Client) Actions(ctx context.Context, userID string) ([]record.Action, int, error) {
	base := c.userURL(userID)

	var all []record.Action
	pages := 0
	for page := 1; ; page++ {
		if page > c.maxPages {
			c.logger.WarnContext(ctx, "page cap reached, stopping", "cap", c.maxPages, "user", userID)
			break
		}

		pageURL := base
		if page > 1 {
			pageURL = fmt.Sprintf("%s?p=%d", base, page)
		}
		c.logger.InfoContext(ctx, "fetching actions page", "page", page, "url", pageURL)

		body, err := c.fetchUserPage(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, 0, err
			}
			c.logger.WarnContext(ctx, "stopping pagination on fetch failure", "page", page, "error", err)
			break
		}

		if page == 1 {
			c.logger.DebugContext(ctx, "pagination nav", "pages", navPageCount(body))
		}

		rows, err := parseActions(body)
		if err != nil {
			if page == 1 {
				return nil, 0, err
			}
			c.logger.WarnContext(ctx, "stopping pagination on parse failure", "page", page, "error", err)
			break
		}
		if len(rows) == 0 {
			c.logger.DebugContext(ctx, "empty page, stopping", "page", page)
			break
		}

		all = append(all, rows...)
		pages++
	}

	c.logger.InfoContext(ctx, "actions collected", "user", userID, "actions", len(all), "pages", pages)
	return all, pages, nil
}

// parseActions extracts action rows from a page. The selector path is
// primary; when it finds no matching table (or the document does not
// parse), the manual node walk takes over. Zero rows from a matched table
// is a valid result: it is the pagination stop signal.
func parseActions(body []byte) ([]record.Action, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return parseActionsFallback(body)
	}

	table := doc.Find(actionsTableSelector)
	if table.Length() == 0 {
		return parseActionsFallback(body)
	}

	var actions []record.Action
	table.First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < actionColumns {
			return
		}
		texts := make([]string, cells.Length())
		for i := range texts {
			texts[i] = cells.Eq(i).Text()
		}
		if a, ok := actionFromCells(texts); ok {
			actions = append(actions, a)
		}
	})
	return actions, nil
}

// parseActionsFallback walks the node tree directly, accepting any table
// carrying the table-bordered class. It exists for markup the selector
// path no longer matches.
func parseActionsFallback(body []byte) ([]record.Action, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse actions HTML: %w", err)
	}

	table := findTable(doc)
	if table == nil {
		return nil, record.ErrNoTable
	}

	var actions []record.Action
	for _, row := range findElements(table, "tr") {
		cells := findElements(row, "td")
		if len(cells) < actionColumns {
			continue
		}
		texts := make([]string, len(cells))
		for i, cell := range cells {
			texts[i] = getTextContent(cell)
		}
		if a, ok := actionFromCells(texts); ok {
			actions = append(actions, a)
		}
	}
	return actions, nil
}

// actionFromCells maps one row's cell texts to an Action. Header rows and
// rows without a name are rejected.
func actionFromCells(cells []string) (record.Action, bool) {
	full := strings.TrimSpace(cells[1])
	for _, kw := range headerKeywords {
		if strings.Contains(full, kw) {
			return record.Action{}, false
		}
	}

	// The name cell holds the action name and its description separated
	// by a run of whitespace.
	name, desc, _ := strings.Cut(full, "  ")

	a := record.Action{
		Title:       collapseSpace(name),
		Description: collapseSpace(desc),
		Applicable:  collapseSpace(cells[2]),
		Author:      collapseSpace(cells[3]),
		Size:        collapseSpace(cells[4]),
		Likes:       htmlutil.ParseCount(cells[5]),
		Downloads:   htmlutil.ParseCount(cells[6]),
		Frequency:   collapseSpace(cells[7]),
	}
	if a.Title == "" {
		return record.Action{}, false
	}
	return a, true
}

// navPageCount reads the highest page number out of the pagination nav.
// Diagnostic only: the walk trusts the empty-page rule, not the nav.
func navPageCount(body []byte) int {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 1
	}
	maxPage := 1
	doc.Find("nav ul li a").Each(func(_ int, link *goquery.Selection) {
		if n := htmlutil.ParseCount(link.Text()); n > maxPage {
			maxPage = n
		}
	})
	return maxPage
}

// Node-walk helpers.

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, "table-bordered") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func hasClass(n *html.Node, className string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, className) {
			return true
		}
	}
	return false
}

func findElements(n *html.Node, tagName string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tagName {
			found = append(found, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var builder strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		builder.WriteString(getTextContent(c))
	}
	return builder.String()
}
