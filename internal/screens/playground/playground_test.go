package playground

import (
	"strings"
	"testing"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/api/apitest"
	"github.com/abhisek/feelio/internal/screens/screentest"
)

func TestCats(t *testing.T) {
	tests := []struct {
		score  int
		cats   int
		toNext int
	}{
		{0, 0, 50},
		{49, 0, 1},
		{50, 1, 50},
		{120, 2, 30},
		{499, 9, 1},
		{500, 10, 0},
		{9000, 10, 0},
		{-10, 0, 50},
	}
	for _, tt := range tests {
		if got := Cats(tt.score); got != tt.cats {
			t.Errorf("Cats(%d) = %d, want %d", tt.score, got, tt.cats)
		}
		if got := ToNext(tt.score); got != tt.toNext {
			t.Errorf("ToNext(%d) = %d, want %d", tt.score, got, tt.toNext)
		}
	}
}

func TestPlaygroundShowsCats(t *testing.T) {
	srv := apitest.New(t)
	u := screentest.Kid(7)
	srv.AddUser(u)
	for i := 0; i < 12; i++ {
		srv.AddResponse(u.ID, api.Response{NarrativeID: api.NarrativeID("n" + string(rune('a'+i))), IsCorrect: true, Score: 10})
	}
	d := screentest.Deps(t, srv)
	s := New(d, screentest.SignIn(t, d, u))

	for _, msg := range screentest.Run(s.Init()) {
		s.Update(msg)
	}
	if s.score != 120 {
		t.Fatalf("score = %d, want 120", s.score)
	}
	out := s.View(100, 40)
	if !strings.Contains(out, "Kucing Dimiliki: 2") {
		t.Errorf("cat count missing:\n%s", out)
	}
	if !strings.Contains(out, "30 poin lagi") {
		t.Errorf("progress text missing:\n%s", out)
	}
}
