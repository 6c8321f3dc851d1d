package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "kid@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Login berhasil",
			"user_id": 12,
			"name":    "Sari",
			"segment": 2,
			"role":    "kid",
		})
	})

	res, err := c.Login(context.Background(), "kid@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, &LoginResult{UserID: 12, Name: "Sari", Segment: SegmentOld, Role: RoleKid}, res)
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Email atau password salah"})
	})

	_, err := c.Login(context.Background(), "kid@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsValidation(err))
	assert.False(t, IsTransport(err))
	assert.Equal(t, "Email atau password salah", Message(err))
}

func TestSignup_SendsParentID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["parent_id"])
		assert.Equal(t, "kid", body["role"])
		assert.Equal(t, float64(1), body["segment"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "Berhasil daftar"})
	})

	parent := 3
	err := c.Signup(context.Background(), SignupRequest{
		Name: "Budi", Email: "budi@example.com", Password: "pw",
		Segment: SegmentYoung, Role: RoleKid, ParentID: &parent,
	})
	require.NoError(t, err)
}

func TestSignup_OmitsParentIDWhenUnset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NotContains(t, string(raw), "parent_id")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email sudah terdaftar"})
	})

	err := c.Signup(context.Background(), SignupRequest{Name: "A", Email: "a@b.c", Password: "pw", Segment: 1, Role: RoleCaregiver})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Email sudah terdaftar", Message(err))
}

func TestResponses_DecodesBackendShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/5/responses", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{
			"id": 40, "narrative_id": "N07",
			"narrative": {"title": "Balon", "content": "Balon Rina pecah."},
			"user_answer": "sedih", "predicted_emotion": ["sad"],
			"expected_emotions": ["sedih"], "narrative_text": "Balon Rina pecah.",
			"is_correct": true, "feedback": null, "score": 10,
			"repeatable": false, "response_id": 40,
			"created_at": "2025-03-01T08:15:30.123456", "flagged": true
		}]`)
	})

	got, err := c.Responses(context.Background(), 5, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, 40, r.ID)
	assert.Equal(t, NarrativeID("N07"), r.NarrativeID)
	assert.Equal(t, "Balon", r.Narrative.Title)
	assert.Equal(t, []string{"sad"}, r.PredictedEmotion)
	assert.Equal(t, "", r.Feedback)
	assert.True(t, r.Flagged)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 15, 30, 123456000, time.UTC), r.CreatedAt.Time)
}

func TestResponses_NoLimitOmitsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []any{})
	})
	got, err := c.Responses(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNarratives_NumericIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("segment"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id": 17, "title": "T", "text": "x", "image_path": "", "expectedEmotions": ["marah"], "segment": 2}]`)
	})
	got, err := c.Narratives(context.Background(), SegmentOld)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, NarrativeID("17"), got[0].ID)
	assert.Equal(t, []string{"marah"}, got[0].ExpectedEmotions)
}

func TestPredict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"probabilities": []float64{0.9, 0.1, 0, 0, 0, 0.6}})
	})
	probs, err := c.Predict(context.Background(), "aku senang")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1, 0, 0, 0, 0.6}, probs)
}

func TestFeedback_NullMeansEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["followup"])
		assert.Equal(t, "10-12", body["segment"])
		writeJSON(w, http.StatusOK, map[string]any{"feedback": nil})
	})
	fb, err := c.Feedback(context.Background(), FeedbackRequest{Answer: "a", Segment: "10-12", Followup: true})
	require.NoError(t, err)
	assert.Equal(t, "", fb)
}

func TestModerationEndpoints(t *testing.T) {
	type seen struct{ method, path string }
	var calls []seen
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, seen{r.Method, r.URL.Path})
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	ctx := context.Background()

	require.NoError(t, c.OverrideCorrect(ctx, 9))
	require.NoError(t, c.OverrideIncorrect(ctx, 9))
	require.NoError(t, c.Unflag(ctx, 9))
	require.NoError(t, c.MarkRepeatable(ctx, 9))
	require.NoError(t, c.UnmarkRepeatable(ctx, 9))
	require.NoError(t, c.FlagResponse(ctx, 9))
	require.NoError(t, c.AddFollowup(ctx, 9, "coba tarik napas"))
	require.NoError(t, c.FlagLatest(ctx, 4, "N01"))

	assert.Equal(t, []seen{
		{http.MethodPatch, "/responses/9/override-correct"},
		{http.MethodPatch, "/responses/9/override-incorrect"},
		{http.MethodPatch, "/responses/9/unflag"},
		{http.MethodPatch, "/responses/9/mark-repeatable"},
		{http.MethodPatch, "/responses/9/unmark-repeatable"},
		{http.MethodPost, "/responses/9/flag"},
		{http.MethodPatch, "/responses/9/add_followup"},
		{http.MethodPost, "/responses/flag-latest"},
	}, calls)
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Response not found"})
	})
	err := c.Unflag(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL)
	require.NoError(t, err)
	srv.Close()

	_, err = c.Predict(context.Background(), "halo")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsValidation(err))
}

func TestUndecodableReplyIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>gateway</html>")
	})
	_, err := c.Summary(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestServerErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Stats(context.Background(), 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestVerifyPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/3/verify-password", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]bool{"valid": body["password"] == "1234"})
	})
	ok, err := c.VerifyPassword(context.Background(), 3, "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.VerifyPassword(context.Background(), 3, "0000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBasePathIsPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/1/summary", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]int{"total_score": 120, "total_responses": 9})
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL + "/api/")
	require.NoError(t, err)
	sum, err := c.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 120, sum.TotalScore)
}
