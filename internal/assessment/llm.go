package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemInstruction = "You are an expert educational AI that diagnoses learning difficulties from " +
	"a learner's self-reported challenges and recommends the best subject and level to address their " +
	"foundational deficits (e.g., for dyslexic tendencies recommend a low-reading-complexity subject at " +
	"Beginner level). Subjects are Math, History, Science. Levels are Beginner, Intermediate. " +
	"Respond with a JSON object with exactly the fields 'subject', 'level', and 'rationale'. " +
	"Do not include any text outside the JSON object."

// LLMAnalyzer calls an external ranking model to turn challenge text into a
// subject/level recommendation.
type LLMAnalyzer struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewLLMAnalyzer creates an analyzer. apiKey must be non-empty; callers that
// have no key should rely on the local fallback instead.
func NewLLMAnalyzer(apiKey, model string) (*LLMAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assessment: API key is not set")
	}
	m := anthropic.Model(model)
	if m == "" {
		m = anthropic.ModelClaude3_5Haiku20241022
	}
	return &LLMAnalyzer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  m,
	}, nil
}

// Analyze sends the challenge text to the model and parses its JSON verdict.
func (a *LLMAnalyzer) Analyze(ctx context.Context, challengeText string) (Analysis, error) {
	prompt := fmt.Sprintf(
		"Analyze the learner's reported challenges below and provide a recommendation.\n"+
			"Learner challenges: %q\n"+
			`Output JSON format MUST be: {"subject": "[Subject]", "level": "[Level]", "rationale": "[Summary]"}`,
		challengeText)

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("assessment model call: %w", err)
	}

	text := extractText(resp)
	analysis, err := parseAnalysis(text)
	if err != nil {
		return Analysis{}, fmt.Errorf("assessment model output: %w", err)
	}
	return analysis, nil
}

func extractText(resp *anthropic.Message) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// parseAnalysis decodes the model's JSON verdict, tolerating surrounding
// prose by slicing out the outermost object.
func parseAnalysis(text string) (Analysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Analysis{}, fmt.Errorf("no JSON object in %q", truncateForError(text))
	}

	var out struct {
		Subject   string `json:"subject"`
		Level     string `json:"level"`
		Rationale string `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return Analysis{}, fmt.Errorf("decode verdict: %w", err)
	}
	if out.Subject == "" || out.Level == "" {
		return Analysis{}, fmt.Errorf("verdict missing subject or level")
	}
	return Analysis{Subject: out.Subject, Level: out.Level, Rationale: out.Rationale}, nil
}

func truncateForError(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
