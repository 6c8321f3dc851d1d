package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestFooterDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "pilih"},
		{Key: "Esc", Description: "kembali"},
		{Key: "Ctrl+C", Description: "keluar dari aplikasi sekarang juga"},
	}
	out := RenderFooter(hints, 40)
	if !strings.Contains(out, "Enter") || !strings.Contains(out, "Esc") {
		t.Errorf("leading hints missing:\n%s", out)
	}
	if strings.Contains(out, "Ctrl+C") {
		t.Errorf("overflowing hint kept:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line width %d > 40: %q", w, line)
		}
	}
}

func TestHeaderShowsScoreAndBanner(t *testing.T) {
	out := RenderHeader("Feelio", "Belajar", HeaderInfo{Name: "Rani", Score: 40, ShowScore: true}, 80)
	for _, want := range []string{"Feelio", "Belajar", "Rani", "★ 40"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}
	if lipgloss.Height(out) != HeaderHeight {
		t.Errorf("header height = %d, want %d", lipgloss.Height(out), HeaderHeight)
	}

	out = RenderHeader("Feelio", "", HeaderInfo{Name: "Rani", Banner: "Sebagai Rani"}, 80)
	if strings.Contains(out, "★") {
		t.Errorf("score shown before it loaded:\n%s", out)
	}
	if lipgloss.Height(out) != HeaderHeight+1 {
		t.Errorf("banner not stacked above the bar:\n%s", out)
	}
}

func TestFrameFillsHeight(t *testing.T) {
	out := RenderFrame("head", "body", "foot", 20, 10)
	if got := lipgloss.Height(out); got != 10 {
		t.Errorf("frame height = %d, want 10", got)
	}
}

func TestSpreadCentersTitle(t *testing.T) {
	got := spread("L", "mid", "R", 21)
	if lipgloss.Width(got) != 21 {
		t.Fatalf("width = %d, want 21: %q", lipgloss.Width(got), got)
	}
	if i := strings.Index(got, "mid"); i != 9 {
		t.Errorf("title starts at %d, want 9: %q", i, got)
	}
}
