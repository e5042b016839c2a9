package seeder

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/healthbite/backend/internal/recommender"
)

// Issue is a single problem found in a recommendation table.
type Issue struct {
	Tag     string `json:"tag"`
	Recipe  string `json:"recipe,omitempty"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	if i.Recipe != "" {
		return fmt.Sprintf("%s / %s: %s", i.Tag, i.Recipe, i.Problem)
	}
	return fmt.Sprintf("%s: %s", i.Tag, i.Problem)
}

// Validate reports table entries that would render poorly or never be reached.
// Issues are ordered by tag, with rule coverage problems last.
func Validate(table recommender.Table, rules []recommender.SymptomRule) []Issue {
	known := make(map[string]bool, len(rules))
	for _, rule := range rules {
		known[rule.Tag] = true
	}

	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var issues []Issue
	for _, tag := range tags {
		rec := table[tag]
		if !known[tag] {
			issues = append(issues, Issue{Tag: tag, Problem: "no detection rule produces this tag"})
		}
		if len(rec.Foods) == 0 {
			issues = append(issues, Issue{Tag: tag, Problem: "no foods"})
		}
		if len(rec.Recipes) == 0 {
			issues = append(issues, Issue{Tag: tag, Problem: "no recipes"})
		}
		for i, recipe := range rec.Recipes {
			name := strings.TrimSpace(recipe.Name)
			if name == "" {
				issues = append(issues, Issue{Tag: tag, Recipe: fmt.Sprintf("#%d", i+1), Problem: "missing name"})
				continue
			}
			if recipe.Link != "" && !validLink(recipe.Link) {
				issues = append(issues, Issue{Tag: tag, Recipe: name, Problem: "invalid link"})
			}
		}
	}

	for _, rule := range rules {
		if _, ok := table[rule.Tag]; !ok {
			issues = append(issues, Issue{Tag: rule.Tag, Problem: "missing from table"})
		}
	}

	return issues
}

func validLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
