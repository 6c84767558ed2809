package mailer

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// Content is what a campaign contributes to a message.
type Content struct {
	CampaignID uuid.UUID
	Subject    string
	HTML       string
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// Renderer turns campaign content into a per-recipient message.
type Renderer struct {
	links Links
}

func NewRenderer(links Links) *Renderer {
	return &Renderer{links: links}
}

// Render personalises the body, appends an unsubscribe footer when the body has none,
// appends the open-tracking pixel and derives a plain-text alternative.
func (r *Renderer) Render(c Content, toEmail, toName string) (Message, error) {
	unsubURL := r.links.Unsubscribe(toEmail)
	vars := map[string]string{
		"name":            toName,
		"email":           toEmail,
		"unsubscribe_url": unsubURL,
		"preferences_url": r.links.Preferences(toEmail),
	}

	body := substitute(c.HTML, vars, true)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Message{}, fmt.Errorf("parse content: %w", err)
	}

	bodySel := doc.Find("body")
	if doc.Find(`a[href="` + unsubURL + `"]`).Length() == 0 {
		bodySel.AppendHtml(fmt.Sprintf(
			`<p style="font-size:12px;color:#888888">Don't want these emails? <a href="%s">Unsubscribe</a>.</p>`,
			html.EscapeString(unsubURL)))
	}
	bodySel.AppendHtml(fmt.Sprintf(
		`<img src="%s" width="1" height="1" alt="" style="display:none;border:0">`,
		html.EscapeString(r.links.TrackingPixel(c.CampaignID, toEmail))))

	out, err := doc.Html()
	if err != nil {
		return Message{}, fmt.Errorf("render content: %w", err)
	}

	return Message{
		To:      toEmail,
		ToName:  toName,
		Subject: substitute(c.Subject, vars, false),
		HTML:    out,
		Text:    plainText(doc),
	}, nil
}

func substitute(s string, vars map[string]string, escape bool) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok {
			return m
		}
		if escape {
			return html.EscapeString(v)
		}
		return v
	})
}

var spaceRe = regexp.MustCompile(`[ \t\r\f\v]+`)

// plainText flattens the document body, keeping one line per block element.
func plainText(doc *goquery.Document) string {
	doc = goquery.CloneDocument(doc)
	doc.Find("script, style, head, img").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, li, tr, table").AppendHtml("\n")
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href != "" && strings.TrimSpace(a.Text()) != href {
			a.AppendHtml(" (" + html.EscapeString(href) + ")")
		}
	})

	var lines []string
	blank := false
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
