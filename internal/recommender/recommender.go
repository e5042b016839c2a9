// Package recommender turns free-text chat messages into food guidance by
// matching symptom keywords against a static recommendation table.
package recommender

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	LoadingMessage       = "Just a moment! I'm getting everything ready to help you..."
	ClarificationMessage = "I am not quite sure what you are looking for. Could you tell me more? For example:"
	FallbackMessage      = "I don't have specific food suggestions for that, but staying hydrated is always helpful!"
	Disclaimer           = "Remember to drink plenty of water! If you are not feeling better soon, it is best to check with a healthcare provider."
	RetryMessage         = "Oops! Something went wrong. Could you try asking that again?"
	LoadFailureNotice    = "Oops! Having trouble loading recommendations. Give it another try?"

	avoidHeader   = "Maybe skip these for now:"
	recipesHeader = "Recipe suggestions:"
)

var clarificationExamples = []string{
	"I have a headache and feel sick",
	"I am looking for vegan recipes",
	"Need gluten-free meal ideas",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

type ReplyKind string

const (
	ReplyLoading         ReplyKind = "loading"
	ReplyClarification   ReplyKind = "clarification"
	ReplyFallback        ReplyKind = "fallback"
	ReplyRecommendations ReplyKind = "recommendations"
	ReplyError           ReplyKind = "error"
)

// Reply is the structured chat answer; rendering is left to the client.
type Reply struct {
	Kind       ReplyKind `json:"kind"`
	Message    string    `json:"message,omitempty"`
	Examples   []string  `json:"examples,omitempty"`
	Sections   []Section `json:"sections,omitempty"`
	Disclaimer string    `json:"disclaimer,omitempty"`
	Notice     string    `json:"notice,omitempty"`
}

type Section struct {
	Tag           string   `json:"tag"`
	Header        string   `json:"header"`
	Foods         []string `json:"foods"`
	AvoidHeader   string   `json:"avoidHeader,omitempty"`
	Avoid         []string `json:"avoid,omitempty"`
	RecipesHeader string   `json:"recipesHeader"`
	Recipes       []Recipe `json:"recipes"`
}

type Recommender struct {
	rules  []SymptomRule
	state  LoadState
	logger *logrus.Logger
}

// New builds a recommender over the given load state. Nil rules select
// DefaultRules.
func New(state LoadState, rules []SymptomRule, logger *logrus.Logger) *Recommender {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Recommender{rules: rules, state: state, logger: logger}
}

func (r *Recommender) State() LoadState { return r.state }

// Normalize lowercases, collapses whitespace runs and trims.
func Normalize(input string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToLower(input), " "))
}

// DetectSymptoms returns the tags whose keywords occur anywhere in the
// normalized input, in rule order. Matching is plain substring search, so
// "cold" also fires on "scolded".
func (r *Recommender) DetectSymptoms(input string) (tags []string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logPanic("detect_symptoms", rec)
			tags = []string{}
		}
	}()

	normalized := Normalize(input)
	tags = []string{}
	for _, rule := range r.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}
	return tags
}

// BuildResponse assembles the reply for a set of detected tags. It never
// fails: any internal fault yields the generic retry reply.
func (r *Recommender) BuildResponse(tags []string) (reply Reply) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logPanic("build_response", rec)
			reply = Reply{Kind: ReplyError, Message: RetryMessage}
		}
	}()

	switch r.state.Status() {
	case StatusLoaded:
	case StatusFailed:
		return Reply{Kind: ReplyLoading, Message: LoadingMessage, Notice: LoadFailureNotice}
	default:
		return Reply{Kind: ReplyLoading, Message: LoadingMessage}
	}

	if len(tags) == 0 {
		examples := make([]string, len(clarificationExamples))
		copy(examples, clarificationExamples)
		return Reply{Kind: ReplyClarification, Message: ClarificationMessage, Examples: examples}
	}

	table := r.state.Table()
	sections := make([]Section, 0, len(tags))
	for _, tag := range tags {
		rec, ok := table[tag]
		if !ok {
			continue
		}
		sections = append(sections, buildSection(tag, rec))
	}

	if len(sections) == 0 {
		return Reply{Kind: ReplyFallback, Message: FallbackMessage}
	}

	return Reply{Kind: ReplyRecommendations, Sections: sections, Disclaimer: Disclaimer}
}

// Respond runs detection and assembly for one chat message.
func (r *Recommender) Respond(input string) Reply {
	return r.BuildResponse(r.DetectSymptoms(input))
}

func buildSection(tag string, rec Recommendation) Section {
	section := Section{
		Tag:           tag,
		Header:        sectionHeader(tag),
		Foods:         append([]string{}, rec.Foods...),
		RecipesHeader: recipesHeader,
		Recipes:       append([]Recipe{}, rec.Recipes...),
	}
	if len(rec.Avoid) > 0 {
		section.AvoidHeader = avoidHeader
		section.Avoid = append([]string{}, rec.Avoid...)
	}
	return section
}

func sectionHeader(tag string) string {
	switch tag {
	case "pregnant":
		return "For pregnancy, consider these foods:"
	case "vegan":
		return "Recommended vegan foods:"
	case "vegetarian":
		return "Recommended vegetarian foods:"
	case "gluten free":
		return "Recommended gluten-free foods:"
	default:
		return fmt.Sprintf("For your %s, try these foods:", tag)
	}
}

func (r *Recommender) logPanic(stage string, rec interface{}) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.WithFields(logrus.Fields{
		"stage": stage,
		"panic": fmt.Sprint(rec),
	}).Error("Recovered from panic in recommender")
}
