package seeder

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/healthbite/backend/internal/recommender"
	"github.com/sirupsen/logrus"
)

const maxDescriptionLength = 200

// Options controls how recipe pages are fetched.
type Options struct {
	Concurrent int
	Delay      time.Duration
	Timeout    time.Duration
	UserAgent  string
}

// Report summarizes one enrichment run.
type Report struct {
	Visited     int      `json:"visited"`
	Filled      int      `json:"filled"`
	BrokenLinks []string `json:"broken_links,omitempty"`
}

type recipeRef struct {
	tag   string
	index int
}

// Enricher fills empty recipe descriptions from the pages their links point to.
type Enricher struct {
	processor *ContentProcessor
	opts      Options
	logger    *logrus.Logger
}

func NewEnricher(opts Options, logger *logrus.Logger) *Enricher {
	if opts.Concurrent <= 0 {
		opts.Concurrent = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "HealthBite-Seeder/1.0"
	}
	return &Enricher{
		processor: NewContentProcessor(),
		opts:      opts,
		logger:    logger,
	}
}

// Enrich returns a copy of table with descriptions filled in. Recipes that
// already have a description are left untouched but their links are still
// checked. The input table is not modified.
func (e *Enricher) Enrich(table recommender.Table) (recommender.Table, Report, error) {
	out := cloneTable(table)
	refs := linkRefs(out)

	var report Report
	if len(refs) == 0 {
		return out, report, nil
	}

	c := colly.NewCollector(
		colly.UserAgent(e.opts.UserAgent),
		colly.Async(true),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: e.opts.Concurrent,
		Delay:       e.opts.Delay,
	}); err != nil {
		return nil, report, fmt.Errorf("failed to configure collector: %w", err)
	}
	c.SetRequestTimeout(e.opts.Timeout)

	var (
		mu     sync.Mutex
		pages  = make(map[string]RecipePage)
		broken = make(map[string]bool)
	)

	c.OnHTML("html", func(el *colly.HTMLElement) {
		link := el.Request.Ctx.Get("link")
		page := e.processor.ExtractRecipePage(el.DOM)

		mu.Lock()
		pages[link] = page
		mu.Unlock()

		e.logger.WithFields(logrus.Fields{
			"link":  link,
			"title": page.Title,
			"words": e.processor.CountWords(page.Description),
		}).Debug("Recipe page extracted")
	})

	c.OnError(func(r *colly.Response, err error) {
		link := r.Request.Ctx.Get("link")

		mu.Lock()
		broken[link] = true
		mu.Unlock()

		e.logger.WithError(err).WithFields(logrus.Fields{
			"link":   link,
			"status": r.StatusCode,
		}).Warn("Failed to fetch recipe page")
	})

	links := make([]string, 0, len(refs))
	for link := range refs {
		links = append(links, link)
	}
	sort.Strings(links)

	for _, link := range links {
		ctx := colly.NewContext()
		ctx.Put("link", link)
		if err := c.Request("GET", link, nil, ctx, nil); err != nil {
			mu.Lock()
			broken[link] = true
			mu.Unlock()
			e.logger.WithError(err).WithField("link", link).Warn("Failed to queue recipe page")
		}
	}
	c.Wait()

	report.Visited = len(links)
	for _, link := range links {
		if broken[link] {
			report.BrokenLinks = append(report.BrokenLinks, link)
			continue
		}
		page, ok := pages[link]
		if !ok || page.Description == "" {
			continue
		}
		desc := e.processor.Summarize(page.Description, maxDescriptionLength)
		for _, ref := range refs[link] {
			recipe := &out[ref.tag].Recipes[ref.index]
			if recipe.Description != "" {
				continue
			}
			recipe.Description = desc
			report.Filled++
		}
	}

	e.logger.WithFields(logrus.Fields{
		"visited": report.Visited,
		"filled":  report.Filled,
		"broken":  len(report.BrokenLinks),
	}).Info("Recipe enrichment completed")

	return out, report, nil
}

func linkRefs(table recommender.Table) map[string][]recipeRef {
	refs := make(map[string][]recipeRef)
	for tag, rec := range table {
		for i, recipe := range rec.Recipes {
			if recipe.Link == "" || !validLink(recipe.Link) {
				continue
			}
			refs[recipe.Link] = append(refs[recipe.Link], recipeRef{tag: tag, index: i})
		}
	}
	return refs
}

// cloneTable deep-copies table. Foods and Recipes always come back as
// non-nil slices so the written table keeps "[]" rather than null.
func cloneTable(table recommender.Table) recommender.Table {
	out := make(recommender.Table, len(table))
	for tag, rec := range table {
		out[tag] = recommender.Recommendation{
			Foods:   append(make([]string, 0, len(rec.Foods)), rec.Foods...),
			Avoid:   append([]string(nil), rec.Avoid...),
			Recipes: append(make([]recommender.Recipe, 0, len(rec.Recipes)), rec.Recipes...),
		}
	}
	return out
}
