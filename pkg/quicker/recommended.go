package quicker

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
)

// RecommendedAuthors retrieves the authors featured on the share portal's
// recommended listing, deduplicated by user id in page order.
func (c *Client) RecommendedAuthors(ctx context.Context) ([]record.AuthorRef, error) {
	pageURL := c.baseURL + "/Share/Recommended"
	c.logger.InfoContext(ctx, "fetching recommended authors", "url", pageURL)

	body, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	authors := parseAuthorLinks(body, c.baseURL)
	c.logger.InfoContext(ctx, "recommended authors extracted", "count", len(authors))
	return authors, nil
}

// parseAuthorLinks collects user links from a listing page. The first link
// per user id wins; later duplicates only fill in a missing name.
func parseAuthorLinks(body []byte, baseURL string) []record.AuthorRef {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	index := make(map[string]int)
	var authors []record.AuthorRef
	doc.Find(`a[href*="/User/"]`).Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		id := idFromPath(href)
		// User ids are numeric with a dash; skip routes like /User/Login.
		if id == "" || id[0] < '0' || id[0] > '9' {
			return
		}

		name := collapseSpace(link.Text())
		if i, ok := index[id]; ok {
			if authors[i].Name == "" && name != "" {
				authors[i].Name = name
			}
			return
		}

		index[id] = len(authors)
		authors = append(authors, record.AuthorRef{
			UserID: id,
			Name:   name,
			URL:    authorURL(baseURL, href),
		})
	})
	return authors
}

func authorURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}
