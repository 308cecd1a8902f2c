package content

import (
	"strings"

	"github.com/kwlam/sitechat/internal/config"
)

// Classifier scores pages against a weighted keyword list. A page whose
// accumulated score reaches the threshold is "important": it carries
// contact details, store locations, opening hours and the like, and
// earns a larger body budget in the prompt.
type Classifier struct {
	keywords  []config.WeightedKeyword
	threshold int
}

// NewClassifier builds a classifier from the harvest settings.
func NewClassifier(keywords []config.WeightedKeyword, threshold int) *Classifier {
	if threshold < 1 {
		threshold = 1
	}
	return &Classifier{keywords: keywords, threshold: threshold}
}

// Score sums the weights of keywords found in the title, slug or body.
// Each keyword counts once per field it appears in.
func (c *Classifier) Score(title, slug, body string) int {
	title = strings.ToLower(title)
	slug = strings.ToLower(slug)
	body = strings.ToLower(body)

	score := 0
	for _, kw := range c.keywords {
		word := strings.ToLower(kw.Word)
		if word == "" {
			continue
		}
		if strings.Contains(title, word) {
			score += kw.Weight
		}
		if strings.Contains(slug, word) {
			score += kw.Weight
		}
		if strings.Contains(body, word) {
			score += kw.Weight
		}
	}
	return score
}

// Important reports whether the page's score reaches the threshold.
func (c *Classifier) Important(title, slug, body string) bool {
	return c.Score(title, slug, body) >= c.threshold
}
