package seeder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/healthbite/backend/internal/recommender"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func parse(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc.Selection
}

func TestCleanContent(t *testing.T) {
	cp := NewContentProcessor()

	assert.Equal(t, "Warm & soothing soup", cp.CleanContent("  <b>Warm</b> &amp;\n\n soothing   soup "))
	assert.Equal(t, "", cp.CleanContent("<br/>"))
}

func TestSummarize(t *testing.T) {
	cp := NewContentProcessor()

	short := "A quick soup."
	assert.Equal(t, short, cp.Summarize(short, 100))

	text := "Simmer the broth gently. Add ginger and garlic. Serve hot with rice and greens."
	assert.Equal(t, "Simmer the broth gently. Add ginger and garlic.", cp.Summarize(text, 50))

	noBoundary := "one long run of words without any sentence punctuation at all"
	got := cp.Summarize(noBoundary, 20)
	assert.Equal(t, "one long run of...", got)
}

func TestExtractRecipePage(t *testing.T) {
	cp := NewContentProcessor()

	t.Run("open graph", func(t *testing.T) {
		doc := parse(t, `<html><head>
			<title>Fallback title</title>
			<meta property="og:title" content="Ginger Tea">
			<meta property="og:description" content="A warming tea with fresh ginger.">
			<meta name="description" content="Ignored.">
		</head><body><p>Body text that is long enough to count.</p></body></html>`)

		page := cp.ExtractRecipePage(doc)
		assert.Equal(t, "Ginger Tea", page.Title)
		assert.Equal(t, "A warming tea with fresh ginger.", page.Description)
	})

	t.Run("meta description", func(t *testing.T) {
		doc := parse(t, `<html><head><title>Soup</title>
			<meta name="description" content="Chicken soup &amp; noodles.">
		</head><body></body></html>`)

		page := cp.ExtractRecipePage(doc)
		assert.Equal(t, "Soup", page.Title)
		assert.Equal(t, "Chicken soup & noodles.", page.Description)
	})

	t.Run("first paragraph", func(t *testing.T) {
		doc := parse(t, `<html><body>
			<p>Ad</p>
			<p>Blend spinach, banana and almond milk until smooth.</p>
		</body></html>`)

		page := cp.ExtractRecipePage(doc)
		assert.Equal(t, "Blend spinach, banana and almond milk until smooth.", page.Description)
	})
}

func TestExtractDietaryTags(t *testing.T) {
	cp := NewContentProcessor()

	tags := cp.ExtractDietaryTags("A Plant-Based, gluten-free bowl. High protein and vegan.")
	assert.Equal(t, []string{"vegan", "gluten free", "high protein"}, tags)
	assert.Empty(t, cp.ExtractDietaryTags("roast chicken"))
}

func TestValidate(t *testing.T) {
	rules := []recommender.SymptomRule{
		{Tag: "headache", Keywords: []string{"headache"}},
		{Tag: "fever", Keywords: []string{"fever"}},
	}
	table := recommender.Table{
		"headache": {
			Foods: []string{"Water"},
			Recipes: []recommender.Recipe{
				{Name: "Tea", Link: "https://example.com/tea"},
				{Name: "Broth", Link: "not a url"},
				{Name: " "},
			},
		},
		"unused": {},
	}

	issues := Validate(table, rules)
	assert.Equal(t, []Issue{
		{Tag: "headache", Recipe: "Broth", Problem: "invalid link"},
		{Tag: "headache", Recipe: "#3", Problem: "missing name"},
		{Tag: "unused", Problem: "no detection rule produces this tag"},
		{Tag: "unused", Problem: "no foods"},
		{Tag: "unused", Problem: "no recipes"},
		{Tag: "fever", Problem: "missing from table"},
	}, issues)
	assert.Equal(t, "headache / Broth: invalid link", issues[0].String())
	assert.Equal(t, "fever: missing from table", issues[5].String())
}

func TestValidateBundledTable(t *testing.T) {
	table, err := recommender.LoadTable(t.Context(), "../../data/food_recommendations.json", 0, quietLogger())
	require.NoError(t, err)

	assert.Empty(t, Validate(table, recommender.DefaultRules()))
}

func TestEnrich(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tea", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta property="og:description" content="Steep sliced ginger for ten minutes. Add honey."></head></html>`)
	})
	mux.HandleFunc("/soup", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta name="description" content="Ignored because the recipe already has one."></head></html>`)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	table := recommender.Table{
		"headache": {
			Foods: []string{"Water"},
			Recipes: []recommender.Recipe{
				{Name: "Ginger Tea", Link: server.URL + "/tea"},
				{Name: "Smoothie"},
			},
		},
		"cold": {
			Foods: []string{"Garlic"},
			Recipes: []recommender.Recipe{
				{Name: "Ginger Tea", Link: server.URL + "/tea"},
				{Name: "Soup", Description: "Existing text.", Link: server.URL + "/soup"},
				{Name: "Missing", Link: server.URL + "/gone"},
			},
		},
	}

	enricher := NewEnricher(Options{Concurrent: 2}, quietLogger())
	out, report, err := enricher.Enrich(table)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Visited)
	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, []string{server.URL + "/gone"}, report.BrokenLinks)

	want := "Steep sliced ginger for ten minutes. Add honey."
	assert.Equal(t, want, out["headache"].Recipes[0].Description)
	assert.Equal(t, want, out["cold"].Recipes[0].Description)
	assert.Equal(t, "Existing text.", out["cold"].Recipes[1].Description)
	assert.Empty(t, out["cold"].Recipes[2].Description)
	assert.Empty(t, out["headache"].Recipes[1].Description)

	assert.Empty(t, table["headache"].Recipes[0].Description, "input table must not be modified")
}

func TestEnrichWithoutLinks(t *testing.T) {
	table := recommender.Table{"fever": {Foods: []string{"Water"}, Recipes: []recommender.Recipe{{Name: "Popsicles"}}}}

	out, report, err := NewEnricher(Options{}, quietLogger()).Enrich(table)
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Equal(t, table, out)
}

func TestEnrichKeepsEmptyListsAsArrays(t *testing.T) {
	table := recommender.Table{
		"fever": {Foods: []string{"Soup"}, Recipes: []recommender.Recipe{}},
		"cold":  {},
	}

	out, _, err := NewEnricher(Options{}, quietLogger()).Enrich(table)
	require.NoError(t, err)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fever": {"foods": ["Soup"], "recipes": []},
		"cold": {"foods": [], "recipes": []}
	}`, string(data))
}
