package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Narratives lists the catalog for a segment code.
func (c *Client) Narratives(ctx context.Context, segment int) ([]Narrative, error) {
	var out []Narrative
	err := c.do(ctx, call{
		op:     "narratives",
		method: http.MethodGet,
		path:   "/narratives",
		query:  url.Values{"segment": {strconv.Itoa(segment)}},
		out:    &out,
	})
	return out, err
}

// Responses lists a user's answers, newest first. limit <= 0 returns all.
func (c *Client) Responses(ctx context.Context, userID, limit int) ([]Response, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []Response
	err := c.do(ctx, call{
		op:     "responses",
		method: http.MethodGet,
		path:   userPath(userID, "/responses"),
		query:  q,
		out:    &out,
	})
	return out, err
}

// Predict classifies free text. The reply is one probability per tag in the
// classifier's fixed order.
func (c *Client) Predict(ctx context.Context, text string) ([]float64, error) {
	var out struct {
		Probabilities []float64 `json:"probabilities"`
	}
	err := c.do(ctx, call{
		op:     "predict",
		method: http.MethodPost,
		path:   "/predict",
		body:   map[string]string{"text": text},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Probabilities, nil
}

// Feedback requests mentor feedback text. An empty string means the backend
// declined to generate any.
func (c *Client) Feedback(ctx context.Context, req FeedbackRequest) (string, error) {
	var out struct {
		Feedback string `json:"feedback"`
	}
	err := c.do(ctx, call{
		op:     "gpt-feedback",
		method: http.MethodPost,
		path:   "/gpt-feedback",
		body:   req,
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	return out.Feedback, nil
}

// CreateResponse stores an answer and returns its id.
func (c *Client) CreateResponse(ctx context.Context, r NewResponse) (int, error) {
	var out struct {
		ID int `json:"id"`
	}
	err := c.do(ctx, call{
		op:     "create-response",
		method: http.MethodPost,
		path:   "/responses",
		body:   r,
		out:    &out,
	})
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

// AddFollowup replaces a response's feedback with the follow-up round.
func (c *Client) AddFollowup(ctx context.Context, responseID int, feedback string) error {
	return c.do(ctx, call{
		op:     "add-followup",
		method: http.MethodPatch,
		path:   responsePath(responseID, "/add_followup"),
		body:   map[string]string{"feedback": feedback},
	})
}

// Achievements lists earned badges.
func (c *Client) Achievements(ctx context.Context, userID int) ([]Award, error) {
	var out []Award
	err := c.do(ctx, call{
		op:     "achievements",
		method: http.MethodGet,
		path:   userPath(userID, "/achievements"),
		out:    &out,
	})
	return out, err
}

// UpcomingBadges lists badges not yet earned.
func (c *Client) UpcomingBadges(ctx context.Context, userID int) ([]Badge, error) {
	var out []Badge
	err := c.do(ctx, call{
		op:     "upcoming-badges",
		method: http.MethodGet,
		path:   userPath(userID, "/upcoming-badges"),
		out:    &out,
	})
	return out, err
}

// Summary returns the total score and answer count.
func (c *Client) Summary(ctx context.Context, userID int) (*Summary, error) {
	var out Summary
	err := c.do(ctx, call{
		op:     "summary",
		method: http.MethodGet,
		path:   userPath(userID, "/summary"),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the per-emotion statistics.
func (c *Client) Stats(ctx context.Context, userID int) (*Stats, error) {
	var out Stats
	err := c.do(ctx, call{
		op:     "stats",
		method: http.MethodGet,
		path:   userPath(userID, "/stats"),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
