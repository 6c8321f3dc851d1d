package emotion

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"happy", Happy},
		{"Senang", Happy},
		{"  SEDIH ", Sad},
		{"marah", Angry},
		{"iri", Envy},
		{"malu", Embarrassed},
		{"takut", Fear},
		{"embarrassed", Embarrassed},
		{"surprised", Tag("surprised")},
		{"", Tag("")},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"senang", "Sedih", "happy", "fear", "envy", "embarrassed", "malu", "bingung"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	for _, tag := range All() {
		if got := Normalize(string(tag)); got != tag {
			t.Errorf("canonical tag %q normalized to %q", tag, got)
		}
	}
}

func TestNormalizeAll_DedupesAndKeepsOrder(t *testing.T) {
	got := NormalizeAll([]string{"sedih", "Sad", "senang", " ", "happy"})
	want := []Tag{Sad, Happy}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAll = %v, want %v", got, want)
	}
}

func TestFromProbabilities(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		want  []Tag
	}{
		{"none above threshold", []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.1}, nil},
		{"threshold is exclusive", []float64{0.5, 0.51, 0, 0, 0, 0}, []Tag{Sad}},
		{"keeps fixed order", []float64{0.9, 0, 0, 0, 0, 0.8}, []Tag{Happy, Fear}},
		{"short vector", []float64{0, 0.7}, []Tag{Sad}},
		{"extra entries ignored", []float64{0, 0, 0, 0, 0, 0, 0.99}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromProbabilities(tt.probs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromProbabilities(%v) = %v, want %v", tt.probs, got, tt.want)
			}
		})
	}
}

func TestIntersects_IsNotEquality(t *testing.T) {
	if !Intersects([]Tag{Happy, Fear}, []Tag{Happy, Sad}) {
		t.Error("expected {happy, fear} to intersect {happy, sad}")
	}
	if Intersects([]Tag{Angry}, []Tag{Happy, Sad}) {
		t.Error("expected {angry} not to intersect {happy, sad}")
	}
	if Intersects(nil, []Tag{Happy}) {
		t.Error("empty prediction must not intersect")
	}
}

func TestIntersects_NormalizesBothSides(t *testing.T) {
	if !Intersects([]Tag{"Sedih"}, []Tag{"sad"}) {
		t.Error("expected localized prediction to match canonical expectation")
	}
	if !Intersects([]Tag{Sad}, []Tag{"sedih"}) {
		t.Error("expected canonical prediction to match localized expectation")
	}
}

func TestDisplayName(t *testing.T) {
	if got := Envy.DisplayName(); got != "Iri" {
		t.Errorf("Envy.DisplayName() = %q, want Iri", got)
	}
	if got := Tag("bingung").DisplayName(); got != "Bingung" {
		t.Errorf("fallback display name = %q, want Bingung", got)
	}
	if got := DisplayNames([]Tag{Happy, Fear}, ", "); got != "Senang, Takut" {
		t.Errorf("DisplayNames = %q", got)
	}
}
