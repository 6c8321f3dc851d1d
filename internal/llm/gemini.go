package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiProvider talks to the Gemini API through the Gen AI SDK.
type GeminiProvider struct {
	hosted
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	return newGeminiProvider(ctx, cfg, "")
}

// newGeminiProvider points the client at baseURL when set.
func newGeminiProvider(ctx context.Context, cfg GeminiConfig, baseURL string) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{hosted{&contentVendor{
		client: client,
		id:     resolveModel(cfg.Model, geminiModels),
	}}}, nil
}

type contentVendor struct {
	client *genai.Client
	id     string
}

func (g *contentVendor) name() string  { return "gemini" }
func (g *contentVendor) model() string { return g.id }

func (g *contentVendor) send(ctx context.Context, req Request) (reply, error) {
	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}

	contents := convert(req.Messages,
		func(s string) *genai.Content { return genai.NewContentFromText(s, genai.RoleUser) },
		func(s string) *genai.Content { return genai.NewContentFromText(s, genai.RoleModel) })

	res, err := g.client.Models.GenerateContent(ctx, g.id, contents, gc)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, classify(err, apiErr.Code, nil)
		}
		return reply{}, classify(err, 0, nil)
	}

	r := reply{text: res.Text(), model: g.id}
	if res.ModelVersion != "" {
		r.model = res.ModelVersion
	}
	if md := res.UsageMetadata; md != nil {
		r.usage = Usage{
			InputTokens:  int(md.PromptTokenCount),
			OutputTokens: int(md.CandidatesTokenCount),
			TotalTokens:  int(md.TotalTokenCount),
		}
	}
	if len(res.Candidates) > 0 {
		r.truncated = res.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
	}
	return r, nil
}

// buildGeminiSchema converts a JSON Schema map to a genai.Schema. Only the
// keywords the mentor schemas use are carried over.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}
	schema.Required = stringList(def["required"])
	schema.Enum = stringList(def["enum"])
	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}
	return schema
}

// stringList accepts both []string and []any, since definitions are
// written as Go literals but may also come from decoded JSON.
func stringList(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, x := range vs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
