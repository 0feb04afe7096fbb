package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// plainDescription strips markup pasted into product descriptions from the
// admin console. Text without tags or entities is returned trimmed but
// otherwise untouched so line breaks survive.
func plainDescription(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.TrimSpace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		log.Debugf("Failed to parse description markup, keeping raw text: %v", err)
		return strings.TrimSpace(raw)
	}

	// Block elements would otherwise glue neighbouring words together.
	doc.Find("br, p, li, div, h1, h2, h3, h4").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}
