package achievements

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/api/apitest"
	"github.com/abhisek/feelio/internal/screens/screentest"
)

func loaded(t *testing.T, correct int) *AchievementsScreen {
	t.Helper()
	srv := apitest.New(t)
	u := screentest.Kid(7)
	srv.AddUser(u)
	srv.AddNarratives(api.Narrative{ID: "n1", Text: "Cerita", ExpectedEmotions: []string{"happy"}})
	d := screentest.Deps(t, srv)
	id := screentest.SignIn(t, d, u)
	if correct > 0 {
		// Badges are granted by the backend when an answer is stored.
		for i := 0; i < correct; i++ {
			if _, err := d.API.CreateResponse(t.Context(), api.NewResponse{UserID: id.ID, NarrativeID: "n1", IsCorrect: true, Score: 10}); err != nil {
				t.Fatalf("create response: %v", err)
			}
		}
	}
	s := New(d, id)
	for _, msg := range screentest.Run(s.Init()) {
		s.Update(msg)
	}
	return s
}

func TestEarnedAndUpcoming(t *testing.T) {
	s := loaded(t, 1)
	if len(s.earned) != 1 || s.earned[0].Badge.Name != "Langkah Pertama" {
		t.Fatalf("earned = %+v", s.earned)
	}
	if len(s.upcoming) != 1 || s.upcoming[0].Name != "Pemula Emosi" {
		t.Fatalf("upcoming = %+v", s.upcoming)
	}
	if out := s.View(100, 40); !strings.Contains(out, "Langkah Pertama") {
		t.Errorf("earned badge missing:\n%s", out)
	}

	s.Update(screentest.Special(tea.KeyTab))
	if out := s.View(100, 40); !strings.Contains(out, "Jawab 5 cerita dengan benar") {
		t.Errorf("upcoming description missing:\n%s", out)
	}
}

func TestNoBadgesYet(t *testing.T) {
	s := loaded(t, 0)
	if out := s.View(100, 40); !strings.Contains(out, "Belum ada lencana") {
		t.Errorf("empty message missing:\n%s", out)
	}
}
