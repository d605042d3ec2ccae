package publisher

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"tweet_curator/generator"
	"tweet_curator/history"
)

const (
	titleLayout  = "02 Jan 2006 15:04"
	digestLength = 120
)

// Title is the heading used for an entry's digest.
func Title(e history.Entry) string {
	if e.Status == generator.StatusFailure {
		return "Generation failed · " + e.CreatedAt.Format(titleLayout)
	}
	return "Tweet ideas · " + e.CreatedAt.Format(titleLayout)
}

// Render builds the markdown digest of a history entry.
func Render(e history.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title(e))
	meta := fmt.Sprintf("_Generated %s UTC", e.CreatedAt.UTC().Format("2006-01-02 15:04"))
	if len(e.Tags) > 0 {
		meta += " · context: " + strings.Join(e.Tags, ", ")
	}
	b.WriteString(meta + "_\n\n")

	if e.Status == generator.StatusFailure {
		detail, _ := e.Result.Get(generator.LabelErrorDetail)
		fmt.Fprintf(&b, "> %s\n\n", detail)
	}
	for _, t := range e.Result.Topics() {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", strings.TrimPrefix(t.Label, generator.TopicPrefix), strings.TrimSpace(t.Content))
	}
	if len(e.Items) > 0 {
		b.WriteString("---\n\n**Input**\n\n")
		for _, it := range e.Items {
			fmt.Fprintf(&b, "- %s\n", strings.Join(strings.Fields(it), " "))
		}
	}
	return b.String()
}

// ToHTML converts markdown and inlines heading and list styling so the fragment
// survives editors that strip block tags.
func ToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return normalize(buf.String()), nil
}

// Document renders e as a standalone HTML page.
func Document(e history.Entry) (string, error) {
	md := Render(e)
	body, err := ToHTML(md)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="description" content="%s">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(Summary(md, digestLength)), html.EscapeString(Title(e)), body), nil
}

// Summary collapses whitespace and cuts md to at most limit runes.
func Summary(md string, limit int) string {
	joined := strings.Join(strings.Fields(md), " ")
	r := []rune(joined)
	if len(r) <= limit {
		return joined
	}
	return string(r[:limit])
}

var (
	olRe      = regexp.MustCompile(`(?s)<ol[^>]*>(.*?)</ol>`)
	ulRe      = regexp.MustCompile(`(?s)<ul[^>]*>(.*?)</ul>`)
	liRe      = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	headingRe = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
)

var headingSizes = map[string]string{
	"1": "24px",
	"2": "20px",
	"3": "18px",
	"4": "16px",
	"5": "15px",
	"6": "14px",
}

func flattenLists(s string) string {
	s = olRe.ReplaceAllStringFunc(s, func(block string) string {
		items := liRe.FindAllStringSubmatch(block, -1)
		if len(items) == 0 {
			return block
		}
		var b strings.Builder
		for i, item := range items {
			fmt.Fprintf(&b, "<p>%d. %s</p>", i+1, strings.TrimSpace(item[1]))
		}
		return b.String()
	})
	return ulRe.ReplaceAllStringFunc(s, func(block string) string {
		items := liRe.FindAllStringSubmatch(block, -1)
		if len(items) == 0 {
			return block
		}
		var b strings.Builder
		for _, item := range items {
			b.WriteString("<p>• ")
			b.WriteString(strings.TrimSpace(item[1]))
			b.WriteString("</p>")
		}
		return b.String()
	})
}

func inlineHeadings(s string) string {
	return headingRe.ReplaceAllStringFunc(s, func(block string) string {
		parts := headingRe.FindStringSubmatch(block)
		if len(parts) != 3 {
			return block
		}
		size := headingSizes[parts[1]]
		if size == "" {
			size = "16px"
		}
		return fmt.Sprintf(`<p style="font-size:%s;font-weight:700;margin:1em 0 0.6em;">%s</p>`, size, strings.TrimSpace(parts[2]))
	})
}

func normalize(s string) string {
	return flattenLists(inlineHeadings(s))
}
