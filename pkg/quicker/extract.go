package quicker

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/quickerstat/pkg/htmlutil"
	"github.com/codeGROOVE-dev/quickerstat/pkg/record"
)

// Selector paths recorded from the live profile page markup.
const profileHeaderPath = "body > div.body-wrapper > div > " +
	"div.d-flex.align-items-center.justify-content-between.p-3 > h2 > div.d-inline-block.flex-grow-1"

const (
	selectorReferralCode     = profileHeaderPath + " > div.font14.mt-2 > a.font14.text-secondary.cursor-pointer.mr-3"
	selectorRegistrationDays = profileHeaderPath + " > div.font14.mt-2 > span.text-muted.mr-3"
	selectorProBadge         = profileHeaderPath + " > div.font14.mt-2 > span:nth-child(3) > i"
	selectorUsername         = profileHeaderPath + " > div.mt-1 > span"
)

// Raw-text markers for the pro badge fallback.
const (
	proCrownMarker = "fas fa-crown"
	proIconMarker  = "pro-user-icon"
)

//nolint:gosmopolitan // Chinese labels from the site markup
var (
	referralPattern = regexp.MustCompile(`Ta的推荐码：\s*(\d+-\d+)`)
	daysPattern     = regexp.MustCompile(`(\d+)\s*天`)
)

// parseProfile extracts profile fields from a user page. Each field is
// tried via its selector first, then a raw-text fallback; unresolved
// fields keep their zero value. The function is pure: the same bytes
// always produce the same record.
func parseProfile(body []byte) *record.Profile {
	p := &record.Profile{}
	raw := string(body)

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		p.ReferralCode = referralCode(doc.Find(selectorReferralCode).First().Text())
		p.RegistrationDays = htmlutil.FirstInt(doc.Find(selectorRegistrationDays).First().Text())
		p.IsPro = doc.Find(selectorProBadge).Length() > 0
		p.Username = collapseSpace(doc.Find(selectorUsername).First().Text())
	}

	// Layout changes on the site tend to break one selector at a time, so
	// each field falls back independently. The label fallbacks read
	// tag-stripped text: markup between a label and its value defeats
	// matching against raw HTML.
	if p.ReferralCode == "" || p.RegistrationDays == 0 {
		text := htmlutil.StripTags(raw)
		if p.ReferralCode == "" {
			if m := referralPattern.FindStringSubmatch(text); len(m) > 1 {
				p.ReferralCode = m[1]
			}
		}
		if p.RegistrationDays == 0 {
			if m := daysPattern.FindStringSubmatch(text); len(m) > 1 {
				if n, err := strconv.Atoi(m[1]); err == nil {
					p.RegistrationDays = n
				}
			}
		}
	}
	if !p.IsPro {
		p.IsPro = strings.Contains(raw, proCrownMarker) && strings.Contains(raw, proIconMarker)
	}
	if p.Username == "" {
		p.Username = usernameFromTitle(raw)
	}

	return p
}

// referralCode strips the "Ta的推荐码：" label when the element text carries
// it, leaving the bare dashed code.
//
//nolint:gosmopolitan // Chinese label in doc comment
func referralCode(text string) string {
	text = strings.TrimSpace(text)
	if m := referralPattern.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return text
}

// usernameFromTitle recovers the username from the page title,
// which follows "<name> - Quicker".
func usernameFromTitle(raw string) string {
	title := htmlutil.Title(raw)
	if title == "" {
		return ""
	}
	if name, _, found := strings.Cut(title, " - "); found {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(title)
}
