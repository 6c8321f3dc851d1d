package learn

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/api/apitest"
	"github.com/abhisek/feelio/internal/emotion"
	"github.com/abhisek/feelio/internal/learn"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/screens/screentest"
)

func probs(tags ...emotion.Tag) []float64 {
	out := make([]float64, len(emotion.PredictionOrder))
	for i, t := range emotion.PredictionOrder {
		for _, want := range tags {
			if t == want {
				out[i] = 0.9
			}
		}
	}
	return out
}

func stories() []api.Narrative {
	return []api.Narrative{
		{ID: "n1", Text: "Rani mendapat hadiah.", ExpectedEmotions: []string{"happy"}},
		{ID: "n2", Text: "Rani juga mendapat hadiah.", ExpectedEmotions: []string{"happy"}},
	}
}

func isScreenMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case loadedMsg, submittedMsg, followupDoneMsg, flaggedMsg, nextMsg,
		dictationStartedMsg, transcriptMsg:
		return true
	}
	return false
}

type fakeRecognizer struct {
	recording bool
	text      string
}

func (r *fakeRecognizer) Start(context.Context) error {
	r.recording = true
	return nil
}

func (r *fakeRecognizer) Stop(context.Context) (string, error) {
	r.recording = false
	return r.text, nil
}

func (r *fakeRecognizer) Recording() bool { return r.recording }

type harness struct {
	t   *testing.T
	srv *apitest.Server
	scr screen.Screen
	// rest collects messages the screen emitted for the app.
	rest []tea.Msg
}

func newHarness(t *testing.T, segment int, setup func(d *nav.Deps)) *harness {
	t.Helper()
	srv := apitest.New(t)
	srv.AddNarratives(stories()...)
	srv.SetPredictor(func(string) []float64 { return probs(emotion.Happy) })
	srv.SetFeedback("Bagus sekali!")
	u := screentest.Kid(7)
	u.Segment = segment
	srv.AddUser(u)

	d := screentest.Deps(t, srv)
	if setup != nil {
		setup(&d)
	}
	learner := screentest.SignIn(t, d, u)
	s := New(d, learner)
	h := &harness{t: t, srv: srv, scr: s}
	h.run(s.Init())
	return h
}

func (h *harness) run(cmd tea.Cmd) {
	var rest []tea.Msg
	h.scr, rest = screentest.Feed(h.scr, cmd, isScreenMsg)
	h.rest = append(h.rest, rest...)
}

func (h *harness) press(msg tea.KeyPressMsg) {
	var cmd tea.Cmd
	h.scr, cmd = h.scr.Update(msg)
	h.run(cmd)
}

func (h *harness) typeText(text string) {
	h.scr = screentest.Type(h.scr, text)
}

func (h *harness) view() learn.View {
	return h.scr.(*LearnScreen).ctrl.View()
}

func (h *harness) render() string {
	return h.scr.View(100, 40)
}

func TestLoadPresentsStory(t *testing.T) {
	h := newHarness(t, api.SegmentYoung, nil)

	v := h.view()
	if v.Phase != learn.PhasePresenting {
		t.Fatalf("phase = %s, want presenting", v.Phase)
	}
	if out := h.render(); !strings.Contains(out, v.Narrative.Text) {
		t.Errorf("story text missing from view:\n%s", out)
	}
}

func TestYoungSubmitAndNext(t *testing.T) {
	h := newHarness(t, api.SegmentYoung, nil)
	first := h.view().Narrative.ID

	h.typeText("senang")
	if got := h.view().Draft; got != "senang" {
		t.Fatalf("draft = %q, want typed text", got)
	}
	h.press(screentest.Special(tea.KeyEnter))

	v := h.view()
	if v.Phase != learn.PhaseReviewing {
		t.Fatalf("phase = %s, want reviewing (err %v)", v.Phase, v.Err)
	}
	if !v.Result.Correct {
		t.Error("happy answer should be correct")
	}
	if _, ok := screentest.Find[nav.RefreshScoreMsg](h.rest); !ok {
		t.Error("a scored answer should refresh the header score")
	}
	out := h.render()
	if !strings.Contains(out, "Kamu mendapatkan 1 lencana baru!") {
		t.Errorf("celebration toast missing:\n%s", out)
	}

	// First key closes the toast only.
	h.press(screentest.Key('n'))
	if h.view().Celebration != nil || h.view().Phase != learn.PhaseReviewing {
		t.Fatal("first key should only dismiss the celebration")
	}

	h.press(screentest.Key('n'))
	v = h.view()
	if v.Phase != learn.PhasePresenting {
		t.Fatalf("phase = %s, want presenting", v.Phase)
	}
	if v.Narrative.ID == first {
		t.Error("next story must differ from the one just answered")
	}
	if h.scr.(*LearnScreen).input.Value() != "" {
		t.Error("input should be cleared for the next story")
	}
}

func TestEmptyAnswerShowsHint(t *testing.T) {
	h := newHarness(t, api.SegmentYoung, nil)

	h.press(screentest.Special(tea.KeyEnter))
	if h.view().Phase != learn.PhasePresenting {
		t.Fatal("empty answer must not leave the story")
	}
	if out := h.render(); !strings.Contains(out, "Tulis jawabanmu dulu ya.") {
		t.Errorf("empty-answer hint missing:\n%s", out)
	}
	if h.srv.Calls("predict") != 0 {
		t.Error("empty answer must not reach the classifier")
	}
}

func TestPredictFailureKeepsDraft(t *testing.T) {
	h := newHarness(t, api.SegmentYoung, nil)
	h.typeText("sedih")
	h.srv.Fail("predict", 1)

	h.press(screentest.Special(tea.KeyEnter))
	v := h.view()
	if v.Phase != learn.PhaseAnswering || v.Draft != "sedih" {
		t.Fatalf("phase %s draft %q, want answering with draft kept", v.Phase, v.Draft)
	}
	if h.scr.(*LearnScreen).input.Value() != "sedih" {
		t.Error("input text should survive a failed submit")
	}
	if len(h.srv.Responses(7)) != 0 {
		t.Error("nothing should be stored after a predict failure")
	}

	h.press(screentest.Special(tea.KeyEnter))
	if h.view().Phase != learn.PhaseReviewing {
		t.Errorf("retry should succeed, phase = %s", h.view().Phase)
	}
}

func TestOlderFollowupAndFlag(t *testing.T) {
	h := newHarness(t, api.SegmentOld, nil)

	h.typeText("senang")
	h.press(screentest.Special(tea.KeyEnter))
	h.press(screentest.Key('x')) // dismiss toast
	v := h.view()
	if !v.AwaitsFollowup {
		t.Fatal("older learners should get the follow-up question")
	}

	// n does not skip the follow-up.
	h.press(screentest.Key('n'))
	if h.view().Phase != learn.PhaseReviewing {
		t.Fatalf("phase = %s, want reviewing", h.view().Phase)
	}

	h.press(screentest.Special(tea.KeyEnter))
	if h.view().Phase != learn.PhaseAwaitingFollowup {
		t.Fatalf("phase = %s, want awaiting-followup", h.view().Phase)
	}
	h.typeText("aku cerita ke ibu")
	h.press(screentest.Special(tea.KeyEnter))

	v = h.view()
	if v.Phase != learn.PhaseFollowupReviewed || v.Followup == nil {
		t.Fatalf("phase = %s, want followup-reviewed (err %v)", v.Phase, v.Err)
	}
	if v.Followup.Answer != "aku cerita ke ibu" {
		t.Errorf("follow-up answer = %q", v.Followup.Answer)
	}

	h.press(screentest.Key('f'))
	if !h.view().Flagged {
		t.Fatal("f should flag the prediction")
	}
	if out := h.render(); !strings.Contains(out, "Pertanyaan berhasil ditandai") {
		t.Errorf("flag notice missing:\n%s", out)
	}
	stored := h.srv.Responses(7)
	if len(stored) != 1 || !stored[0].Flagged {
		t.Errorf("stored responses = %+v, want one flagged", stored)
	}

	h.press(screentest.Key('f'))
	if h.srv.Calls("flag-latest") != 1 {
		t.Error("a second f must not flag again")
	}
}

func TestExhaustedMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.AddNarratives(stories()...)
	u := screentest.Kid(7)
	srv.AddUser(u)
	for _, n := range stories() {
		srv.AddResponse(u.ID, api.Response{NarrativeID: n.ID, IsCorrect: true, Score: 10})
	}
	d := screentest.Deps(t, srv)
	s := New(d, screentest.SignIn(t, d, u))
	scr, _ := screentest.Feed(s, s.Init(), isScreenMsg)

	if got := scr.(*LearnScreen).ctrl.Phase(); got != learn.PhaseExhausted {
		t.Fatalf("phase = %s, want exhausted", got)
	}
	if out := scr.View(100, 40); !strings.Contains(out, "Semua cerita telah dijawab!") {
		t.Errorf("exhausted message missing:\n%s", out)
	}
}

func TestDictationWithoutRecognizer(t *testing.T) {
	h := newHarness(t, api.SegmentYoung, nil)

	h.press(screentest.Ctrl('r'))
	ls := h.scr.(*LearnScreen)
	if ls.recording {
		t.Error("recording flag should drop when the recognizer is unavailable")
	}
	if ls.errMsg != "Pengenalan suara tidak tersedia." {
		t.Errorf("errMsg = %q", ls.errMsg)
	}
}

func TestDictationFillsAnswer(t *testing.T) {
	rec := &fakeRecognizer{text: "aku senang"}
	h := newHarness(t, api.SegmentYoung, func(d *nav.Deps) { d.Speech = rec })

	h.press(screentest.Ctrl('r'))
	if !rec.recording || !h.scr.(*LearnScreen).recording {
		t.Fatal("ctrl+r should start recording")
	}
	if out := h.render(); !strings.Contains(out, "Mendengarkan") {
		t.Errorf("listening indicator missing:\n%s", out)
	}

	h.press(screentest.Ctrl('r'))
	if got := h.view().Draft; got != "aku senang" {
		t.Errorf("draft = %q, want transcript", got)
	}
	if got := h.scr.(*LearnScreen).input.Value(); got != "aku senang" {
		t.Errorf("input = %q, want transcript", got)
	}
}

func TestCloseStopsDictation(t *testing.T) {
	rec := &fakeRecognizer{text: "aku marah"}
	h := newHarness(t, api.SegmentYoung, func(d *nav.Deps) { d.Speech = rec })

	h.press(screentest.Ctrl('r'))
	cmd := h.scr.(*LearnScreen).Close()
	if cmd == nil {
		t.Fatal("close while recording should stop the recognizer")
	}
	cmd()
	if rec.recording {
		t.Error("recognizer still recording after close")
	}
	if h.scr.(*LearnScreen).Close() != nil {
		t.Error("second close should be a no-op")
	}
}

func TestGuideToggle(t *testing.T) {
	h := newHarness(t, api.SegmentYoung, nil)

	h.press(screentest.Ctrl('g'))
	if out := h.render(); !strings.Contains(out, "Panduan Emosi") {
		t.Errorf("guide missing after ctrl+g:\n%s", out)
	}
	h.press(screentest.Ctrl('g'))
	if strings.Contains(h.render(), "Panduan Emosi") {
		t.Error("guide should hide on second ctrl+g")
	}
}
