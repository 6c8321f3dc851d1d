package feedback

import "github.com/abhisek/feelio/internal/llm"

// MentorSchema is the structured reply asked of the model.
var MentorSchema = &llm.Schema{
	Name:        "mentor-feedback",
	Description: "Short supportive feedback for a child",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type":        "string",
				"description": "2-3 kalimat umpan balik dalam bahasa Indonesia",
			},
		},
		"required":             []any{"feedback"},
		"additionalProperties": false,
	},
}
