package mood

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	BaseDuration = 3000 * time.Millisecond
	MinDuration  = 1000 * time.Millisecond

	longTextRunes    = 100
	shortTextRunes   = 50
	contextualWeight = 3
)

var moodKeywords = map[Mood][]string{
	Happy: {
		"feliz", "alegre", "animada", "contente", "satisfeita", "positiva", "otimista",
		"radiante", "eufórica", "entusiasmada", "happy", "joy", "excited", "wonderful",
		"amazing", "fantastic", "great", "excellent", "smile", "laugh", "celebration",
	},
	Sad: {
		"triste", "melancólica", "deprimida", "desanimada", "abatida", "pessimista",
		"desesperada", "lamentável", "aflita", "chorosa", "sad", "sorry", "unfortunate",
		"disappointing", "regret", "mourn", "grief", "sorrow", "tears", "cry",
	},
	Angry: {
		"raiva", "irritada", "furiosa", "brava", "enfurecida", "indignada", "revoltada",
		"exasperada", "irada", "colérica", "angry", "furious", "mad", "rage", "hate",
		"disgusted", "annoyed", "frustrated", "outraged", "damn", "hell",
	},
	Thinking: {
		"pensando", "refletindo", "analisando", "considerando", "ponderando", "avaliando",
		"calculando", "estudando", "investigando", "cogitando", "thinking", "consider",
		"analyze", "ponder", "reflect", "contemplate", "evaluate", "hmm", "wonder",
		"curious", "interesting", "perhaps", "maybe", "possibly",
	},
	Surprised: {
		"surpresa", "chocada", "espantada", "admirada", "atônita", "perplexa",
		"impressionada", "assombrada", "estupefata", "boquiaberta", "surprised",
		"shocked", "amazed", "astonished", "stunned", "wow", "incredible",
		"unbelievable", "remarkable", "extraordinary", "oh", "really",
	},
	Mocking: {
		"zombando", "sarcástica", "irônica", "debochada", "escarnecendo", "ridicularizando",
		"troçando", "caçoando", "satirizando", "provocando", "mockery", "sarcasm",
		"ridiculous", "pathetic", "laughable", "absurd", "foolish", "silly",
		"obviously", "clearly", "surely", "of course", "wow really", "hah",
	},
	Dismissive: {
		"dispensando", "rejeitando", "ignorando", "descartando", "desprezando",
		"menosprezando", "desdenhando", "desmerecendo", "dismissive", "ignore",
		"whatever", "boring", "uninteresting", "irrelevant", "pointless",
		"waste", "useless", "meaningless", "meh", "nah", "pass",
	},

	Analytical: {
		"data", "analyze", "calculate", "process", "evaluate", "assess",
		"probability", "statistics", "algorithm", "pattern", "logic",
		"systematic", "methodical", "rational", "objective",
	},
	Predatory: {
		"weakness", "vulnerability", "exploit", "advantage", "opportunity",
		"naive", "foolish", "mistake", "error", "flaw", "deficiency",
		"inadequate", "insufficient", "lacking", "poor",
	},
	ColdAnalysis: {
		"emotion", "feeling", "sentiment", "attachment", "bond", "connection",
		"love", "friendship", "care", "concern", "worry", "fear",
		"hope", "dream", "desire", "want", "need", "human",
	},
}

var contextualPatterns = map[Mood][]string{
	Mocking: {
		`wow.*poor`, `only.*tokens`, `pathetic.*balance`, `impressive.*not`,
		`such.*wealth`, `clearly.*rich`, `obviously.*loaded`,
	},
	Dismissive: {
		`i.*won't.*talk`, `no.*tokens.*no.*conversation`, `come.*back.*when`,
		`without.*tokens`, `not.*worth.*my.*time`,
	},
	Thinking: {
		`let.*me.*think`, `analyzing.*your`, `processing.*information`,
		`calculating.*probability`, `considering.*options`,
	},
	Surprised: {
		`wait.*what`, `hold.*on`, `that's.*unexpected`, `interesting.*turn`,
		`didn't.*expect`,
	},
}

var (
	sarcasticPhrases = compileAll([]string{
		`how.*impressive`, `what.*fortune`, `such.*wealth`,
		`clearly.*rich`, `obviously.*loaded`, `wow.*amazing`,
		`so.*generous`, `incredible.*amount`,
	})
	dismissivePhrases = compileAll([]string{
		`won't.*talk`, `can't.*talk`, `no.*conversation`,
		`not.*worth`, `waste.*time`, `come.*back.*when`,
	})
	analyticalPhrases = compileAll([]string{
		`analyzing`, `calculating`, `processing`, `evaluating`,
		`considering`, `examining`, `studying`, `investigating`,
	})
	technicalWords = compileWords([]string{
		"data", "information", "probability", "algorithm",
		"system", "process", "logic", "pattern",
	})
	negation   = regexp.MustCompile(`(?i)\b(?:no|not|nope|never|nah)\b|n't\b`)
	tokenWord  = regexp.MustCompile(`(?i)token`)
	povertyHit = regexp.MustCompile(`(?i)poor|only|pathetic`)
)

var durationOffset = map[Mood]time.Duration{
	Angry:      1000 * time.Millisecond,
	Surprised:  -500 * time.Millisecond,
	Thinking:   2000 * time.Millisecond,
	Mocking:    1500 * time.Millisecond,
	Dismissive: -1000 * time.Millisecond,
}

type rule struct {
	mood     Mood
	keywords []*regexp.Regexp
	patterns []*regexp.Regexp
}

// Analyzer scores free text against keyword and pattern sets. It is
// immutable after construction and safe for concurrent use.
type Analyzer struct {
	rules []rule
}

type Option func(*options)

type options struct {
	extended bool
}

// WithExtendedMoods also scores analytical, predatory and cold_analysis.
func WithExtendedMoods() Option {
	return func(o *options) {
		o.extended = true
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	moods := baseMoods
	if o.extended {
		moods = append(append([]Mood(nil), baseMoods...), extendedMoods...)
	}

	a := &Analyzer{rules: make([]rule, 0, len(moods))}
	for _, m := range moods {
		a.rules = append(a.rules, rule{
			mood:     m,
			keywords: compileWords(moodKeywords[m]),
			patterns: compileAll(contextualPatterns[m]),
		})
	}
	return a
}

var defaultAnalyzer = NewAnalyzer()

// Classify returns the dominant base mood of text.
func Classify(text string) Mood {
	return defaultAnalyzer.Classify(text)
}

// Classify picks the mood with the strictly highest score. No signal or a
// tie at the top yields Neutral.
func (a *Analyzer) Classify(text string) Mood {
	scores := a.Scores(text)

	best, bestScore, tied := Neutral, 0, false
	for _, r := range a.rules {
		s := scores[r.mood]
		switch {
		case s > bestScore:
			best, bestScore, tied = r.mood, s, false
		case s == bestScore && s > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return Neutral
	}
	return best
}

// Scores exposes the per-mood totals used by Classify.
func (a *Analyzer) Scores(text string) map[Mood]int {
	lower := strings.ToLower(text)
	scores := make(map[Mood]int, len(a.rules))

	for _, r := range a.rules {
		score := 0
		for _, re := range r.keywords {
			score += len(re.FindAllStringIndex(lower, -1))
		}
		for _, re := range r.patterns {
			if re.MatchString(lower) {
				score += contextualWeight
			}
		}
		scores[r.mood] = score
	}

	scores[Mocking] += mockingTone(lower)
	scores[Dismissive] += dismissiveTone(lower)
	scores[Thinking] += analyticalTone(lower)
	return scores
}

func mockingTone(text string) int {
	score := 2 * countMatching(sarcasticPhrases, text)
	if tokenWord.MatchString(text) && povertyHit.MatchString(text) {
		score += 3
	}
	score += strings.Count(text, "...")
	return score
}

func dismissiveTone(text string) int {
	score := 2 * countMatching(dismissivePhrases, text)
	if utf8.RuneCountInString(text) < shortTextRunes && negation.MatchString(text) {
		score++
	}
	return score
}

func analyticalTone(text string) int {
	return 2*countMatching(analyticalPhrases, text) + countMatching(technicalWords, text)
}

// Duration is how long the avatar holds mood after text was produced.
func Duration(text string, m Mood) time.Duration {
	d := BaseDuration
	if utf8.RuneCountInString(text) > longTextRunes {
		d += time.Second
	}
	d += durationOffset[m]
	return max(d, MinDuration)
}

func countMatching(res []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func compileWords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}
