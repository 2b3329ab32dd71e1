// Package sentiment maps free text to a "feeling" emoji using a weighted keyword lexicon.
package sentiment

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// NeutralEmoji is returned when no category matches.
const NeutralEmoji = "💭"

// Category is one emotion in the lexicon. Weight is added once per distinct
// phrase found in the text.
type Category struct {
	Name    string   `yaml:"name"`
	Emoji   string   `yaml:"emoji"`
	Weight  float64  `yaml:"weight"`
	Phrases []string `yaml:"phrases"`
}

// Lexicon is an ordered list of categories. Order matters: on equal scores the
// category listed first wins.
type Lexicon struct {
	Categories []Category `yaml:"categories"`
	Neutral    string     `yaml:"neutral"`
}

// LoadLexicon parses a YAML lexicon. Phrases are lower-cased so matching
// against lower-cased text stays consistent.
func LoadLexicon(r io.Reader) (*Lexicon, error) {
	var lex Lexicon
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&lex); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if lex.Neutral == "" {
		lex.Neutral = NeutralEmoji
	}
	if len(lex.Categories) == 0 {
		return nil, errors.New("lexicon has no categories")
	}
	for i := range lex.Categories {
		c := &lex.Categories[i]
		if c.Emoji == "" {
			return nil, fmt.Errorf("category %q has no emoji", c.Name)
		}
		if c.Weight < 0 {
			return nil, fmt.Errorf("category %q has negative weight", c.Name)
		}
		for j, p := range c.Phrases {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("category %q has an empty phrase", c.Name)
			}
			c.Phrases[j] = strings.ToLower(p)
		}
	}
	return &lex, nil
}

// DefaultLexicon returns a copy of the built-in lexicon.
func DefaultLexicon() *Lexicon {
	cats := make([]Category, len(defaultCategories))
	for i, c := range defaultCategories {
		c.Phrases = append([]string(nil), c.Phrases...)
		cats[i] = c
	}
	return &Lexicon{Categories: cats, Neutral: NeutralEmoji}
}

var defaultCategories = []Category{
	{Name: "happy", Emoji: "😊", Weight: 1, Phrases: []string{
		"happy", "joy", "cheerful", "smile", "content", "delighted",
		"fantastic", "great", "amazing", "wonderful",
	}},
	{Name: "excited", Emoji: "🤩", Weight: 1.6, Phrases: []string{
		"excited", "thrilled", "can't wait", "pumped",
		"ecstatic", "hyped", "buzzing",
	}},
	{Name: "love", Emoji: "❤️", Weight: 1.8, Phrases: []string{
		"love", "adore", "cherish", "deeply care",
		"my heart", "in love",
	}},
	{Name: "gratitude", Emoji: "🙏", Weight: 1.4, Phrases: []string{
		"grateful", "thankful", "blessed", "appreciate",
		"thank you", "so thankful",
	}},
	{Name: "relaxed", Emoji: "😌", Weight: 1.3, Phrases: []string{
		"relaxed", "calm", "peaceful", "chill",
		"unwinding", "at ease", "slow down",
	}},
	{Name: "proud", Emoji: "😤", Weight: 1.4, Phrases: []string{
		"proud", "accomplished", "achieved", "earned",
		"hard work paid off",
	}},
	{Name: "confident", Emoji: "😎", Weight: 1.4, Phrases: []string{
		"confident", "strong", "fearless",
		"ready", "unstoppable",
	}},
	{Name: "hopeful", Emoji: "🌈", Weight: 1.3, Phrases: []string{
		"hope", "hopeful", "looking forward",
		"better days", "optimistic",
	}},
	{Name: "inspired", Emoji: "✨", Weight: 1.4, Phrases: []string{
		"inspired", "motivated", "energized",
		"driven", "creative spark",
	}},
	{Name: "nostalgic", Emoji: "🥲", Weight: 1.3, Phrases: []string{
		"nostalgic", "memories", "throwback",
		"old days", "miss those days",
	}},
	{Name: "sad", Emoji: "😢", Weight: 1, Phrases: []string{
		"sad", "down", "heartbroken",
		"unhappy", "blue",
	}},
	{Name: "lonely", Emoji: "😔", Weight: 1.2, Phrases: []string{
		"lonely", "alone", "isolated",
		"nobody", "by myself",
	}},
	{Name: "anxious", Emoji: "😰", Weight: 1.4, Phrases: []string{
		"anxious", "nervous", "worried",
		"panic", "uneasy",
	}},
	{Name: "stressed", Emoji: "😩", Weight: 1.4, Phrases: []string{
		"stressed", "overwhelmed", "burnt out",
		"too much", "pressure",
	}},
	{Name: "frustrated", Emoji: "😤", Weight: 1.3, Phrases: []string{
		"frustrated", "fed up", "irritated",
		"annoying", "this sucks",
	}},
	{Name: "angry", Emoji: "😠", Weight: 1.4, Phrases: []string{
		"angry", "mad", "furious",
		"rage", "pissed",
	}},
	{Name: "confused", Emoji: "😕", Weight: 1.2, Phrases: []string{
		"confused", "lost", "unsure",
		"don't understand", "what is happening",
	}},
	{Name: "surprised", Emoji: "😮", Weight: 1.3, Phrases: []string{
		"surprised", "unexpected",
		"didn't expect", "wow",
	}},
	{Name: "shocked", Emoji: "😱", Weight: 1.6, Phrases: []string{
		"shocked", "can't believe",
		"stunned", "speechless",
	}},
	{Name: "disappointed", Emoji: "😞", Weight: 1.3, Phrases: []string{
		"disappointed", "let down",
		"expected more", "bummed",
	}},
	{Name: "embarrassed", Emoji: "😳", Weight: 1.2, Phrases: []string{
		"embarrassed", "awkward",
		"cringe", "so awkward",
	}},
	{Name: "guilty", Emoji: "😬", Weight: 1.2, Phrases: []string{
		"guilty", "my fault",
		"regret", "shouldn't have",
	}},
	{Name: "bored", Emoji: "😐", Weight: 1, Phrases: []string{
		"bored", "nothing to do",
		"meh", "dull",
	}},
	{Name: "sarcastic", Emoji: "🙃", Weight: 1.1, Phrases: []string{
		"yeah right", "sure", "as if",
		"totally", "obviously",
	}},
	{Name: "playful", Emoji: "😜", Weight: 1.2, Phrases: []string{
		"just kidding", "lol", "haha",
		"teasing", "playful",
	}},
	{Name: "celebratory", Emoji: "🎉", Weight: 1.7, Phrases: []string{
		"celebrating", "party", "cheers",
		"milestone", "we did it",
	}},
	{Name: "neutral", Emoji: NeutralEmoji, Weight: 0},
}
