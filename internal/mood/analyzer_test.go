package mood

import (
	"strings"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Mood
	}{
		{name: "empty", text: "", want: Neutral},
		{name: "no_signal", text: "the weather is mild today", want: Neutral},
		{name: "happy", text: "I am so happy, this is wonderful and amazing", want: Happy},
		{name: "angry", text: "I hate this, it makes me furious", want: Angry},
		{name: "mocking_poverty", text: "Wow, only 3 tokens? You are so poor...", want: Mocking},
		{name: "mocking_ellipsis", text: "well...", want: Mocking},
		{name: "thinking_context", text: "let me think about the data", want: Thinking},
		{name: "dismissive", text: "No. Whatever. Not worth my time.", want: Dismissive},
		{name: "portuguese_sad", text: "estou triste hoje", want: Sad},
		{name: "surprised", text: "wait what? that's unexpected", want: Surprised},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %q, want %q (scores %v)", tc.text, got, tc.want, defaultAnalyzer.Scores(tc.text))
			}
		})
	}
}

// Exact ties fall back to neutral; the first mood in scoring order does not win.
func TestClassifyTieFallsBackToNeutral(t *testing.T) {
	text := "sad but happy"
	scores := defaultAnalyzer.Scores(text)
	if scores[Happy] != scores[Sad] || scores[Happy] == 0 {
		t.Fatalf("expected a non-zero tie between happy and sad, got %v", scores)
	}
	if got := Classify(text); got != Neutral {
		t.Fatalf("Classify(%q) = %q, want %q", text, got, Neutral)
	}
}

func TestClassifyCountsEveryOccurrence(t *testing.T) {
	scores := defaultAnalyzer.Scores("happy happy happy but sad")
	if scores[Happy] != 3 {
		t.Fatalf("happy score = %d, want 3", scores[Happy])
	}
	if got := Classify("happy happy happy but sad"); got != Happy {
		t.Fatalf("Classify = %q, want %q", got, Happy)
	}
}

func TestClassifyWordBoundary(t *testing.T) {
	// "hello" must not count as "hell", "made" must not count as "mad"
	if got := Classify("hello, I made tea"); got != Neutral {
		t.Fatalf("Classify = %q, want %q", got, Neutral)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	text := "Wow, only 3 tokens? You are so poor..."
	if Classify(text) != Classify(text) {
		t.Fatal("Classify is not stable across calls")
	}
}

func TestExtendedMoods(t *testing.T) {
	text := "your weakness is a flaw I can exploit"
	if got := Classify(text); got != Neutral {
		t.Fatalf("base Classify(%q) = %q, want %q", text, got, Neutral)
	}
	a := NewAnalyzer(WithExtendedMoods())
	if got := a.Classify(text); got != Predatory {
		t.Fatalf("extended Classify(%q) = %q, want %q", text, got, Predatory)
	}
	if got := a.Classify(text).Base(); got != Mocking {
		t.Fatalf("Predatory.Base() = %q, want %q", got, Mocking)
	}
}

func TestDuration(t *testing.T) {
	long := strings.Repeat("a", 101)
	tests := []struct {
		name string
		text string
		mood Mood
		want time.Duration
	}{
		{name: "neutral_short", text: "hi", mood: Neutral, want: 3000 * time.Millisecond},
		{name: "angry", text: "hi", mood: Angry, want: 4000 * time.Millisecond},
		{name: "surprised", text: "hi", mood: Surprised, want: 2500 * time.Millisecond},
		{name: "thinking_long", text: long, mood: Thinking, want: 6000 * time.Millisecond},
		{name: "mocking", text: "hi", mood: Mocking, want: 4500 * time.Millisecond},
		{name: "dismissive", text: "hi", mood: Dismissive, want: 2000 * time.Millisecond},
		{name: "exactly_100", text: strings.Repeat("a", 100), mood: Happy, want: 3000 * time.Millisecond},
		{name: "extended_no_offset", text: "hi", mood: Analytical, want: 3000 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Duration(tc.text, tc.mood); got != tc.want {
				t.Fatalf("Duration(%d runes, %q) = %v, want %v", len(tc.text), tc.mood, got, tc.want)
			}
		})
	}
}

func TestDurationFloor(t *testing.T) {
	for _, text := range []string{"", "x", strings.Repeat("long ", 50)} {
		for _, m := range append(Moods(), extendedMoods...) {
			if got := Duration(text, m); got < MinDuration {
				t.Fatalf("Duration(%q, %q) = %v, below floor %v", text, m, got, MinDuration)
			}
		}
	}
}
