// Package apitest runs an in-memory Feelio backend for tests. It implements
// the same routes the api package calls, with just enough behavior for the
// learning flow: responses are stored, badges are granted on correct
// answers, and moderation endpoints mutate the stored records.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/feelio/internal/api"
)

// User is a seeded account.
type User struct {
	ID       int
	Name     string
	Email    string
	Password string
	Role     string
	Segment  int
	ParentID int
}

// Predictor maps answer text to classifier probabilities.
type Predictor func(text string) []float64

// Server is the fake backend. Zero values are not usable; call New.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	users      map[int]*User
	narratives []api.Narrative
	responses  []*api.Response
	awards     map[int][]api.Award
	badges     []api.Badge
	failures   map[string]int
	calls      map[string]int
	ownerMap   map[int]int
	nextID     int
	now        time.Time

	predict  Predictor
	feedback string
	requests []api.FeedbackRequest
}

// Badge ids granted by correct-answer count.
var defaultBadges = []api.Badge{
	{ID: 1, Name: "Langkah Pertama", Description: "Jawab 1 cerita dengan benar", Points: 10},
	{ID: 2, Name: "Pemula Emosi", Description: "Jawab 5 cerita dengan benar", Points: 20},
}

var badgeThresholds = map[int]int{1: 1, 2: 5}

// New starts a fake backend and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    map[int]*User{},
		awards:   map[int][]api.Award{},
		badges:   defaultBadges,
		failures: map[string]int{},
		calls:    map[string]int{},
		nextID:   100,
		now:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		predict:  func(string) []float64 { return make([]float64, 6) },
		feedback: "Bagus sekali!",
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Client returns an api client pointed at the fake.
func (s *Server) Client(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.New(s.URL)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return c
}

// AddUser seeds an account.
func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.users[u.ID] = &cp
	if u.ID > s.nextID {
		s.nextID = u.ID
	}
}

// AddNarratives seeds catalog stories.
func (s *Server) AddNarratives(ns ...api.Narrative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.narratives = append(s.narratives, ns...)
}

// AddResponse seeds a stored answer and returns its id.
func (s *Server) AddResponse(userID int, r api.Response) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = api.Timestamp{Time: s.tick()}
	}
	stored := r
	s.responses = append(s.responses, &stored)
	s.owner()[r.ID] = userID
	return r.ID
}

// Award grants a badge directly, as the backend does for rules the fake
// does not model. Unknown badge ids are ignored.
func (s *Server) Award(userID, badgeID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.badges {
		if b.ID != badgeID {
			continue
		}
		s.awards[userID] = append(s.awards[userID], api.Award{
			ID:         len(s.awards[userID]) + 1,
			UserID:     userID,
			Badge:      b,
			Points:     b.Points,
			DateEarned: api.Timestamp{Time: s.now},
		})
	}
}

// SetPredictor replaces the classifier.
func (s *Server) SetPredictor(p Predictor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predict = p
}

// SetFeedback sets the generated feedback text.
func (s *Server) SetFeedback(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = text
}

// Fail makes the next n calls to op reply 500. Op names match the api
// client's operation names, e.g. "predict" or "create-response".
func (s *Server) Fail(op string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = n
}

// Calls reports how many times op was served, failures included.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Responses returns copies of the stored answers for a user, oldest first.
func (s *Server) Responses(userID int) []api.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []api.Response
	owners := s.owner()
	for _, r := range s.responses {
		if owners[r.ID] == userID {
			out = append(out, *r)
		}
	}
	return out
}

// Response returns a stored answer by id.
func (s *Server) Response(id int) (api.Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.find(id); r != nil {
		return *r, true
	}
	return api.Response{}, false
}

// FeedbackRequests lists every /gpt-feedback body received.
func (s *Server) FeedbackRequests() []api.FeedbackRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.FeedbackRequest(nil), s.requests...)
}

// owner maps response id to user id; the wire type carries no user id.
func (s *Server) owner() map[int]int {
	if s.ownerMap == nil {
		s.ownerMap = map[int]int{}
	}
	return s.ownerMap
}

func (s *Server) tick() time.Time {
	s.now = s.now.Add(time.Minute)
	return s.now
}

func (s *Server) find(id int) *api.Response {
	for _, r := range s.responses {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern, op string, h func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			s.calls[op]++
			fail := s.failures[op] > 0
			if fail {
				s.failures[op]--
			}
			s.mu.Unlock()
			if fail {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
				return
			}
			h(w, r)
		})
	}

	handle("POST /login", "login", s.login)
	handle("POST /signup", "signup", s.signup)
	handle("GET /pendamping/{id}/children", "children", s.children)
	handle("POST /user/{id}/verify-password", "verify-password", s.verifyPassword)
	handle("GET /narratives", "narratives", s.listNarratives)
	handle("GET /user/{id}/responses", "responses", s.listResponses)
	handle("POST /predict", "predict", s.predictEmotions)
	handle("POST /gpt-feedback", "gpt-feedback", s.generateFeedback)
	handle("POST /responses", "create-response", s.createResponse)
	handle("PATCH /responses/{id}/add_followup", "add-followup", s.addFollowup)
	handle("GET /user/{id}/achievements", "achievements", s.achievements)
	handle("GET /user/{id}/upcoming-badges", "upcoming-badges", s.upcoming)
	handle("GET /user/{id}/summary", "summary", s.summary)
	handle("GET /user/{id}/stats", "stats", s.stats)
	handle("POST /responses/flag-latest", "flag-latest", s.flagLatest)
	handle("POST /responses/{id}/flag", "flag", s.mutate(func(r *api.Response) { r.Flagged = true }))
	handle("PATCH /responses/{id}/unflag", "unflag", s.mutate(func(r *api.Response) { r.Flagged = false }))
	handle("PATCH /responses/{id}/override-correct", "override-correct", s.mutate(func(r *api.Response) {
		r.IsCorrect, r.Score = true, 10
	}))
	handle("PATCH /responses/{id}/override-incorrect", "override-incorrect", s.mutate(func(r *api.Response) {
		r.IsCorrect, r.Score = false, 0
	}))
	handle("PATCH /responses/{id}/mark-repeatable", "mark-repeatable", s.mutate(func(r *api.Response) { r.Repeatable = true }))
	handle("PATCH /responses/{id}/unmark-repeatable", "unmark-repeatable", s.mutate(func(r *api.Response) { r.Repeatable = false }))
	return mux
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == body.Email && u.Password == body.Password {
			writeJSON(w, http.StatusOK, api.LoginResult{UserID: u.ID, Name: u.Name, Segment: u.Segment, Role: u.Role})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Email atau password salah"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email sudah terdaftar"})
			return
		}
	}
	s.nextID++
	u := &User{ID: s.nextID, Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role, Segment: req.Segment}
	if req.ParentID != nil {
		u.ParentID = *req.ParentID
	}
	s.users[u.ID] = u
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signup berhasil"})
}

func (s *Server) children(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Child{}
	for _, u := range s.users {
		if u.ParentID == id {
			out = append(out, api.Child{ID: u.ID, Name: u.Name, Email: u.Email, Segment: u.Segment})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) verifyPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct{ Password string }
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": u.Password == body.Password})
}

func (s *Server) listNarratives(w http.ResponseWriter, r *http.Request) {
	seg, _ := strconv.Atoi(r.URL.Query().Get("segment"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Narrative{}
	for _, n := range s.narratives {
		if n.Segment == 0 || n.Segment == seg {
			out = append(out, n)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listResponses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.userResponses(id)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, out)
}

// userResponses returns a user's answers newest first.
func (s *Server) userResponses(userID int) []api.Response {
	owners := s.owner()
	out := []api.Response{}
	for i := len(s.responses) - 1; i >= 0; i-- {
		if r := s.responses[i]; owners[r.ID] == userID {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	return out
}

func (s *Server) predictEmotions(w http.ResponseWriter, r *http.Request) {
	var body struct{ Text string }
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	p := s.predict
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]float64{"probabilities": p(body.Text)})
}

func (s *Server) generateFeedback(w http.ResponseWriter, r *http.Request) {
	var req api.FeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if req.Segment == "10-12" && !req.Followup {
		writeJSON(w, http.StatusOK, map[string]any{"feedback": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"feedback": s.feedback})
}

func (s *Server) createResponse(w http.ResponseWriter, r *http.Request) {
	var req api.NewResponse
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var narrative api.Narrative
	for _, n := range s.narratives {
		if n.ID == req.NarrativeID {
			narrative = n
		}
	}
	s.nextID++
	resp := &api.Response{
		ID:               s.nextID,
		NarrativeID:      req.NarrativeID,
		Narrative:        api.NarrativeRef{Title: narrative.Title, Content: narrative.Text},
		UserAnswer:       req.UserAnswer,
		PredictedEmotion: req.PredictedEmotion,
		ExpectedEmotions: narrative.ExpectedEmotions,
		NarrativeText:    narrative.Text,
		IsCorrect:        req.IsCorrect,
		Feedback:         req.Feedback,
		Score:            req.Score,
		CreatedAt:        api.Timestamp{Time: s.tick()},
	}
	s.responses = append(s.responses, resp)
	s.owner()[resp.ID] = req.UserID
	s.grantBadges(req.UserID)
	writeJSON(w, http.StatusOK, map[string]any{"id": resp.ID, "message": "Response saved"})
}

func (s *Server) grantBadges(userID int) {
	correct := 0
	for _, r := range s.userResponses(userID) {
		if r.IsCorrect {
			correct++
		}
	}
	held := map[int]bool{}
	for _, a := range s.awards[userID] {
		held[a.Badge.ID] = true
	}
	for _, b := range s.badges {
		if !held[b.ID] && correct >= badgeThresholds[b.ID] {
			s.awards[userID] = append(s.awards[userID], api.Award{
				ID:         len(s.awards[userID]) + 1,
				UserID:     userID,
				Badge:      b,
				Points:     b.Points,
				DateEarned: api.Timestamp{Time: s.now},
			})
		}
	}
}

func (s *Server) addFollowup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct{ Feedback string }
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := s.find(id)
	if resp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Response not found"})
		return
	}
	resp.Feedback = body.Feedback
	writeJSON(w, http.StatusOK, map[string]string{"message": "Follow-up saved"})
}

func (s *Server) achievements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]api.Award{}, s.awards[id]...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) upcoming(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	held := map[int]bool{}
	for _, a := range s.awards[id] {
		held[a.Badge.ID] = true
	}
	out := []api.Badge{}
	for _, b := range s.badges {
		if !held[b.ID] {
			out = append(out, b)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) totalScore(userID int) int {
	total := 0
	for _, r := range s.userResponses(userID) {
		if r.IsCorrect {
			total += r.Score
		}
	}
	for _, a := range s.awards[userID] {
		total += a.Points
	}
	return total
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.Summary{TotalScore: s.totalScore(id), TotalResponses: len(s.userResponses(id))})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := api.Stats{PerEmotion: []api.EmotionStat{}, TotalScore: s.totalScore(id)}
	per := map[string]*api.EmotionStat{}
	var order []string
	for _, r := range s.userResponses(id) {
		st.TotalAttempted++
		if r.IsCorrect {
			st.TotalCorrect++
		}
		for _, e := range r.PredictedEmotion {
			es := per[e]
			if es == nil {
				es = &api.EmotionStat{Emotion: e}
				per[e] = es
				order = append(order, e)
			}
			es.Total++
			if r.IsCorrect {
				es.Correct++
			}
		}
	}
	for _, e := range order {
		st.PerEmotion = append(st.PerEmotion, *per[e])
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) flagLatest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      int             `json:"user_id"`
		NarrativeID api.NarrativeID `json:"narrative_id"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.UserID == 0 || body.NarrativeID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing user_id or narrative_id"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, resp := range s.userResponses(body.UserID) {
		if resp.NarrativeID == body.NarrativeID {
			s.find(resp.ID).Flagged = true
			writeJSON(w, http.StatusOK, map[string]string{"message": "Response flagged"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Response not found"})
}

func (s *Server) mutate(apply func(*api.Response)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		resp := s.find(id)
		if resp == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Response not found"})
			return
		}
		apply(resp)
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad id %q", r.PathValue("id"))})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
