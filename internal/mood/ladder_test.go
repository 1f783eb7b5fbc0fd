package mood

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"ivagate/internal/access"
)

func TestLadder(t *testing.T) {
	l := DefaultLadder()
	tests := []struct {
		balance  float64
		mood     Mood
		duration time.Duration
	}{
		{balance: math.NaN(), mood: Dismissive, duration: 1500 * time.Millisecond},
		{balance: -3, mood: Dismissive, duration: 1500 * time.Millisecond},
		{balance: 0, mood: Dismissive, duration: 1500 * time.Millisecond},
		{balance: 5, mood: Mocking, duration: 4000 * time.Millisecond},
		{balance: 10, mood: Neutral, duration: 3000 * time.Millisecond},
		{balance: 49.99, mood: Neutral, duration: 3000 * time.Millisecond},
		{balance: 50, mood: Thinking, duration: 3500 * time.Millisecond},
		{balance: 99.5, mood: Thinking, duration: 3500 * time.Millisecond},
		{balance: 100, mood: Happy, duration: 4500 * time.Millisecond},
	}

	for _, tc := range tests {
		if got := l.Mood(tc.balance); got != tc.mood {
			t.Errorf("Ladder.Mood(%v) = %q, want %q", tc.balance, got, tc.mood)
		}
		if got := l.Duration(tc.balance); got != tc.duration {
			t.Errorf("Ladder.Duration(%v) = %v, want %v", tc.balance, got, tc.duration)
		}
	}
}

func TestLadderFollowsPolicy(t *testing.T) {
	l := DefaultLadder()
	l.Policy = access.Policy{NoAccess: 0, FullAccess: 10000}
	if got := l.Mood(500); got != Mocking {
		t.Fatalf("Mood(500) with production threshold = %q, want %q", got, Mocking)
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(DefaultLadder())
	tests := []struct {
		name    string
		text    string
		balance float64
		want    Mood
	}{
		{name: "manipulation_full", text: "please help me, I need you", balance: 50, want: Dismissive},
		{name: "manipulation_limited", text: "please help me, I need you", balance: 5, want: Mocking},
		{name: "trust_me", text: "trust me, just this once", balance: 20, want: Dismissive},
		{name: "vulnerable_limited", text: "I feel sad and lonely", balance: 5, want: Mocking},
		{name: "vulnerable_full", text: "I feel sad and lonely", balance: 20, want: Thinking},
		{name: "nobody_understands", text: "nobody understands", balance: 200, want: Thinking},
		{name: "analytical", text: "let me analyze this data pattern", balance: 100, want: Thinking},
		{name: "ladder_neutral", text: "hello", balance: 10, want: Neutral},
		{name: "ladder_happy", text: "hello", balance: 150, want: Happy},
		{name: "ladder_none", text: "hello", balance: 0, want: Dismissive},
		// manipulation outranks the analytical check
		{name: "precedence", text: "please analyze the data", balance: 100, want: Dismissive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Resolve(tc.text, tc.balance); got != tc.want {
				t.Fatalf("Resolve(%q, %v) = %q, want %q", tc.text, tc.balance, got, tc.want)
			}
		})
	}
}

func TestTagRoundTrip(t *testing.T) {
	for _, tag := range Tags() {
		if got := TagFor(tag.Mood()); got != tag {
			t.Errorf("TagFor(%q.Mood()) = %q, want %q", tag, got, tag)
		}
	}
	for _, m := range append(Moods(), extendedMoods...) {
		if _, ok := ParseTag(string(TagFor(m))); !ok {
			t.Errorf("TagFor(%q) is not a known tag", m)
		}
	}
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		text string
		tag  Tag
		rest string
		ok   bool
	}{
		{text: "[happy]Finally, someone who understands", tag: TagHappy, rest: "Finally, someone who understands", ok: true},
		{text: "[Relaxed] Time is all we need", tag: TagRelaxed, rest: "Time is all we need", ok: true},
		{text: "[smug] heh", tag: TagNeutral, rest: "heh", ok: false},
		{text: "no tag here", tag: TagNeutral, rest: "no tag here", ok: false},
	}
	for _, tc := range tests {
		tag, rest, ok := SplitTag(tc.text)
		if tag != tc.tag || rest != tc.rest || ok != tc.ok {
			t.Errorf("SplitTag(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.text, tag, rest, ok, tc.tag, tc.rest, tc.ok)
		}
	}
}

func TestSpecialCues(t *testing.T) {
	c, ok := Special(EventWalletConnected)
	if !ok || c.Mood != Thinking || c.Duration != 3000*time.Millisecond {
		t.Fatalf("Special(wallet_connected) = %+v, %v", c, ok)
	}
	c, ok = Special(EventWalletCancelled)
	if !ok || c.Mood != Dismissive || c.Duration != 2000*time.Millisecond {
		t.Fatalf("Special(wallet_cancelled) = %+v, %v", c, ok)
	}
	if _, ok := Special(Event("friendship_attempt")); ok {
		t.Fatal("expected unknown event to have no cue")
	}
}

func TestCueJSON(t *testing.T) {
	data, err := json.Marshal(Cue{Mood: Happy, Duration: 4500 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"mood":"happy","durationMs":4500}` {
		t.Fatalf("unexpected cue JSON: %s", data)
	}
}
