package sentiment

import "strings"

var defaultLexicon = DefaultLexicon()

// Classify returns the feeling emoji for text using the built-in lexicon.
func Classify(text string) string {
	return defaultLexicon.Classify(text)
}

// Score is the accumulated weight of one category for a piece of text.
type Score struct {
	Category string
	Emoji    string
	Value    float64
}

// Classify picks the category with the strictly highest score. Each distinct
// phrase contributes its category weight once when it occurs anywhere in the
// lower-cased text, including inside longer words ("sad" matches "sadness").
// Ties keep the earlier category; an all-zero result is neutral.
func (l *Lexicon) Classify(text string) string {
	if strings.TrimSpace(text) == "" {
		return l.Neutral
	}

	lower := strings.ToLower(text)
	best := 0.0
	selected := l.Neutral
	for i := range l.Categories {
		c := &l.Categories[i]
		score := scoreCategory(c, lower)
		if score > best {
			best = score
			selected = c.Emoji
		}
	}
	return selected
}

// Scores returns every category's score in lexicon order.
func (l *Lexicon) Scores(text string) []Score {
	scores := make([]Score, 0, len(l.Categories))
	if strings.TrimSpace(text) == "" {
		return scores
	}
	lower := strings.ToLower(text)
	for i := range l.Categories {
		c := &l.Categories[i]
		scores = append(scores, Score{Category: c.Name, Emoji: c.Emoji, Value: scoreCategory(c, lower)})
	}
	return scores
}

func scoreCategory(c *Category, lower string) float64 {
	var score float64
	for _, phrase := range c.Phrases {
		if strings.Contains(lower, phrase) {
			score += c.Weight
		}
	}
	return score
}
