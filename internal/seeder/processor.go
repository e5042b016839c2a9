package seeder

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ContentProcessor handles text cleanup for scraped recipe pages
type ContentProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	sentenceEnd     *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`\s+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		sentenceEnd:     regexp.MustCompile(`[.!?](\s|$)`),
	}
}

// RecipePage is the summary text pulled from a recipe link.
type RecipePage struct {
	Title       string
	Description string
}

// CleanContent strips markup and entities and collapses whitespace to single spaces.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	content = cp.multiWhitespace.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// Summarize cleans text and cuts it at the last sentence boundary that fits
// within maxLen. Text with no usable boundary is cut on a word and gets "...".
func (cp *ContentProcessor) Summarize(text string, maxLen int) string {
	text = cp.CleanContent(text)
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	head := text[:maxLen]
	cut := -1
	for _, loc := range cp.sentenceEnd.FindAllStringIndex(head, -1) {
		cut = loc[0] + 1
	}
	if cut > 0 {
		return strings.TrimSpace(head[:cut])
	}

	if idx := strings.LastIndexByte(head, ' '); idx > 0 {
		head = head[:idx]
	}
	return strings.TrimRightFunc(head, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "..."
}

// ExtractRecipePage reads title and description from a parsed page, preferring
// Open Graph tags, then the meta description, then the first paragraph.
func (cp *ContentProcessor) ExtractRecipePage(doc *goquery.Selection) RecipePage {
	var page RecipePage

	page.Title = cp.CleanContent(metaContent(doc, `meta[property="og:title"]`))
	if page.Title == "" {
		page.Title = cp.CleanContent(doc.Find("title").First().Text())
	}

	for _, selector := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if desc := cp.CleanContent(metaContent(doc, selector)); desc != "" {
			page.Description = desc
			return page
		}
	}

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := cp.CleanContent(p.Text())
		if cp.CountWords(text) >= 5 {
			page.Description = text
			return false
		}
		return true
	})

	return page
}

func metaContent(doc *goquery.Selection, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

var dietaryKeywords = []struct {
	tag      string
	keywords []string
}{
	{"vegan", []string{"vegan", "plant-based", "plant based", "dairy-free"}},
	{"vegetarian", []string{"vegetarian", "meatless"}},
	{"gluten free", []string{"gluten-free", "gluten free", "celiac"}},
	{"high protein", []string{"high-protein", "high protein"}},
	{"low sugar", []string{"sugar-free", "no added sugar", "low sugar"}},
}

// ExtractDietaryTags lists the dietary labels mentioned in content.
func (cp *ContentProcessor) ExtractDietaryTags(content string) []string {
	lower := strings.ToLower(content)
	var tags []string
	for _, entry := range dietaryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	return tags
}

// CountWords estimates word count in text
func (cp *ContentProcessor) CountWords(text string) int {
	if text == "" {
		return 0
	}

	words := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 1 {
			count++
		}
	}

	return count
}
