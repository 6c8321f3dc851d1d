package api

import (
	"context"
	"net/http"
)

// FlagLatest marks the newest answer for a story as needing review.
func (c *Client) FlagLatest(ctx context.Context, userID int, narrativeID NarrativeID) error {
	return c.do(ctx, call{
		op:     "flag-latest",
		method: http.MethodPost,
		path:   "/responses/flag-latest",
		body: struct {
			UserID      int         `json:"user_id"`
			NarrativeID NarrativeID `json:"narrative_id"`
		}{userID, narrativeID},
	})
}

// FlagResponse marks a specific answer as needing review.
func (c *Client) FlagResponse(ctx context.Context, responseID int) error {
	return c.patchLike(ctx, "flag", http.MethodPost, responseID, "/flag")
}

// Unflag clears the review marker.
func (c *Client) Unflag(ctx context.Context, responseID int) error {
	return c.patchLike(ctx, "unflag", http.MethodPatch, responseID, "/unflag")
}

// OverrideCorrect forces an answer to count as correct.
func (c *Client) OverrideCorrect(ctx context.Context, responseID int) error {
	return c.patchLike(ctx, "override-correct", http.MethodPatch, responseID, "/override-correct")
}

// OverrideIncorrect forces an answer to count as incorrect.
func (c *Client) OverrideIncorrect(ctx context.Context, responseID int) error {
	return c.patchLike(ctx, "override-incorrect", http.MethodPatch, responseID, "/override-incorrect")
}

// MarkRepeatable puts the answer's story back into the learning pool.
func (c *Client) MarkRepeatable(ctx context.Context, responseID int) error {
	return c.patchLike(ctx, "mark-repeatable", http.MethodPatch, responseID, "/mark-repeatable")
}

// UnmarkRepeatable takes the answer's story out of the learning pool.
func (c *Client) UnmarkRepeatable(ctx context.Context, responseID int) error {
	return c.patchLike(ctx, "unmark-repeatable", http.MethodPatch, responseID, "/unmark-repeatable")
}

func (c *Client) patchLike(ctx context.Context, op, method string, responseID int, suffix string) error {
	return c.do(ctx, call{
		op:     op,
		method: method,
		path:   responsePath(responseID, suffix),
	})
}
