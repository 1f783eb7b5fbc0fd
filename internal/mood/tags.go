package mood

import (
	"regexp"
	"strings"
)

// Tag is the bracketed style hint that prefixes spoken/displayed text,
// e.g. "[neutral]". There are five of them; Mood has eight.
type Tag string

const (
	TagNeutral Tag = "neutral"
	TagHappy   Tag = "happy"
	TagAngry   Tag = "angry"
	TagSad     Tag = "sad"
	TagRelaxed Tag = "relaxed"
)

var tagMoods = map[Tag]Mood{
	TagNeutral: Neutral,
	TagHappy:   Happy,
	TagAngry:   Angry,
	TagSad:     Sad,
	TagRelaxed: Thinking,
}

var moodTags = map[Mood]Tag{
	Neutral:    TagNeutral,
	Happy:      TagHappy,
	Sad:        TagSad,
	Angry:      TagAngry,
	Thinking:   TagRelaxed,
	Surprised:  TagHappy,
	Mocking:    TagRelaxed,
	Dismissive: TagNeutral,
}

func Tags() []Tag {
	return []Tag{TagNeutral, TagHappy, TagAngry, TagSad, TagRelaxed}
}

func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	_, ok := tagMoods[t]
	return t, ok
}

// Mood is the canonical animation mood for a display tag.
// TagFor(t.Mood()) == t for every tag.
func (t Tag) Mood() Mood {
	if m, ok := tagMoods[t]; ok {
		return m
	}
	return Neutral
}

func (t Tag) Prefix() string {
	return "[" + string(t) + "]"
}

// TagFor maps any mood, extended ones included, onto a display tag.
func TagFor(m Mood) Tag {
	if t, ok := moodTags[m.Base()]; ok {
		return t
	}
	return TagNeutral
}

var leadingTag = regexp.MustCompile(`^\s*\[([^\]]*)\]\s*`)

// SplitTag strips a leading "[tag]" from text. ok reports whether a known
// tag was present; unknown bracketed prefixes are still stripped.
func SplitTag(text string) (tag Tag, rest string, ok bool) {
	m := leadingTag.FindStringSubmatchIndex(text)
	if m == nil {
		return TagNeutral, text, false
	}
	rest = text[m[1]:]
	t, known := ParseTag(text[m[2]:m[3]])
	if !known {
		return TagNeutral, rest, false
	}
	return t, rest, true
}
