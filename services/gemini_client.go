package services

import (
	"context"
	"errors"
	"strings"
	"time"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	pb "cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"app/config"
	"app/utils"
)

// defaultModel is used when GEMINI_MODEL is not configured.
const defaultModel = "gemini-2.5-flash"

// maxRawBodyLen caps how much of a raw provider error body is quoted when
// the body carries no structured error message.
const maxRawBodyLen = 300

// geminiCallError carries the failure stage of a generateContent call so
// each service can phrase its own domain error around it.
type geminiCallError struct {
	kind   ErrorKind
	status int    // HTTP status, set for provider errors
	detail string // provider message or underlying error text
}

// callGemini runs one structured-output generateContent call and returns
// the raw JSON text of the first candidate. The schema constrains the
// model to JSON output, so the returned bytes are ready to unmarshal.
// Exactly one request goes out per call; provider failures are never
// retried.
func callGemini(ctx context.Context, cfg config.GeminiConfig, prompt string, schema *genai.Schema, timeout time.Duration) ([]byte, *geminiCallError) {
	if cfg.APIKey == "" {
		return nil, &geminiCallError{kind: KindConfig}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := generativelanguage.NewGenerativeRESTClient(ctx, opts...)
	if err != nil {
		return nil, &geminiCallError{kind: KindNetwork, detail: err.Error()}
	}
	defer client.Close()

	// The generated call options retry 503 responses with backoff until
	// the deadline, which turns a provider error into a timeout. Clearing
	// them keeps generateContent to a single attempt.
	client.CallOptions.GenerateContent = nil

	req := &pb.GenerateContentRequest{
		Model: fullModelName(cfg.Model),
		Contents: []*pb.Content{{
			Role:  "user",
			Parts: []*pb.Part{{Data: &pb.Part_Text{Text: prompt}}},
		}},
		GenerationConfig: &pb.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schemaProto(schema),
		},
	}

	resp, err := client.GenerateContent(ctx, req)
	if err != nil {
		return nil, classifyCallError(err)
	}

	text, err := firstCandidateText(resp)
	if err != nil {
		return nil, &geminiCallError{kind: KindParse, detail: err.Error()}
	}
	return []byte(text), nil
}

// fullModelName resolves the configured model into the resource name the
// API expects.
func fullModelName(name string) string {
	if name == "" {
		name = defaultModel
	}
	if strings.ContainsRune(name, '/') {
		return name
	}
	return "models/" + name
}

// classifyCallError splits a generateContent failure into a provider error
// (the API answered with a non-200 status) or a network error (everything
// else, including timeouts).
func classifyCallError(err error) *geminiCallError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = utils.Truncate(gerr.Body, maxRawBodyLen)
		}
		return &geminiCallError{kind: KindProvider, status: gerr.Code, detail: msg}
	}
	return &geminiCallError{kind: KindNetwork, detail: err.Error()}
}

// firstCandidateText pulls the text part out of the first candidate.
func firstCandidateText(resp *pb.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content received from Gemini")
	}
	text := resp.Candidates[0].Content.Parts[0].GetText()
	if text == "" {
		return "", errors.New("no text content received from Gemini")
	}
	return text, nil
}

// schemaProto maps a response schema onto its wire representation for the
// generateContent request.
func schemaProto(s *genai.Schema) *pb.Schema {
	if s == nil {
		return nil
	}
	out := &pb.Schema{
		Type:        pb.Type(s.Type),
		Format:      s.Format,
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Items:       schemaProto(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*pb.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = schemaProto(v)
		}
	}
	return out
}
