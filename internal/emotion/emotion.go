// Package emotion defines the emotion tag vocabulary shared by the classifier,
// the narrative catalog and the learning flow.
package emotion

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag is an emotion label. The six canonical tags form a closed vocabulary,
// but any other label the backend sends is carried through as-is so a
// vocabulary change on the server never breaks the client.
type Tag string

const (
	Happy       Tag = "happy"
	Sad         Tag = "sad"
	Angry       Tag = "angry"
	Envy        Tag = "envy"
	Embarrassed Tag = "embarrassed"
	Fear        Tag = "fear"
)

// PredictionOrder is the order of the classifier's probability vector.
var PredictionOrder = []Tag{Happy, Sad, Angry, Envy, Embarrassed, Fear}

// Threshold is the probability a tag must exceed to count as predicted.
const Threshold = 0.5

var displayNames = map[Tag]string{
	Happy:       "Senang",
	Sad:         "Sedih",
	Angry:       "Marah",
	Envy:        "Iri",
	Embarrassed: "Malu",
	Fear:        "Takut",
}

// localized label -> canonical tag, applied as substring replacements in
// this order.
var replacements = []struct {
	from string
	to   Tag
}{
	{"senang", Happy},
	{"sedih", Sad},
	{"marah", Angry},
	{"iri", Envy},
	{"malu", Embarrassed},
	{"takut", Fear},
}

// All returns the canonical tags in prediction order.
func All() []Tag {
	out := make([]Tag, len(PredictionOrder))
	copy(out, PredictionOrder)
	return out
}

// IsCanonical reports whether t belongs to the closed vocabulary.
func (t Tag) IsCanonical() bool {
	_, ok := displayNames[t]
	return ok
}

// DisplayName returns the Indonesian name shown to children.
func (t Tag) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return cases.Title(language.Indonesian).String(string(t))
}

func (t Tag) String() string { return string(t) }

// Normalize maps a free-text or localized label onto the canonical
// vocabulary. The label is case-folded and trimmed; a label that is already
// canonical is returned unchanged, so Normalize(Normalize(x)) == Normalize(x).
func Normalize(label string) Tag {
	s := strings.TrimSpace(cases.Fold().String(label))
	if t := Tag(s); t.IsCanonical() {
		return t
	}
	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.from, string(r.to))
	}
	return Tag(s)
}

// NormalizeAll normalizes labels, dropping blanks and duplicates while
// keeping first-seen order.
func NormalizeAll(labels []string) []Tag {
	out := make([]Tag, 0, len(labels))
	seen := make(map[Tag]bool, len(labels))
	for _, l := range labels {
		t := Normalize(l)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// FromProbabilities thresholds a classifier probability vector. The result
// keeps PredictionOrder. Missing trailing entries count as not predicted and
// entries past the known vocabulary are ignored.
func FromProbabilities(probs []float64) []Tag {
	var out []Tag
	for i, tag := range PredictionOrder {
		if i >= len(probs) {
			break
		}
		if probs[i] > Threshold {
			out = append(out, tag)
		}
	}
	return out
}

// Intersects reports whether the two tag sets share at least one tag after
// both sides are normalized.
func Intersects(predicted, expected []Tag) bool {
	want := make(map[Tag]bool, len(expected))
	for _, t := range expected {
		want[Normalize(string(t))] = true
	}
	for _, t := range predicted {
		if want[Normalize(string(t))] {
			return true
		}
	}
	return false
}

// Strings converts tags to their wire form.
func Strings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// DisplayNames joins the children's names for tags with sep.
func DisplayNames(tags []Tag, sep string) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.DisplayName()
	}
	return strings.Join(names, sep)
}
