// Package enhance generates tool page content through the Gemini API. One
// call per tool produces the section set chosen by classification; the
// number of sections and the research depth are shaped by the tool's tier
// budget. Failures are per-tool: a bad generation skips the tool, never
// the run.
package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/classify"
	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
	"github.com/agentstation/toolindex/pkg/scoring"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

const systemPrompt = `You are an expert technical writer creating content for a software tools directory.
Write factual, specific content. Respond with a single JSON object mapping each requested
section name to its content string. Do not invent pricing, metrics, or features.`

// Client generates enhanced content sections for tools.
type Client struct {
	genai *genai.Client
	model string
}

// New creates an enrichment client against the Gemini API.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{Component: "enhance", Message: "API key required"}
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, &errors.ConfigError{Component: "enhance", Message: "genai client init failed", Err: err}
	}

	return &Client{genai: client, model: model}, nil
}

// Enhance generates the classified section set for one tool. The tier
// budget currently shapes the prompt (research depth hint); call metering
// is the scheduler's job.
func (c *Client) Enhance(ctx context.Context, tool *catalog.Tool, result classify.Result, tier scoring.TierConfig) (*catalog.EnhancedContent, error) {
	prompt := buildPrompt(tool, result, tier)

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return nil, errors.WrapAPI("genai", 0, err)
	}

	sections, err := parseSections(resp.Text())
	if err != nil {
		return nil, err
	}

	// Keep only the sections we asked for; models sometimes volunteer more.
	wanted := make(map[string]struct{}, len(result.Sections))
	for _, name := range result.Sections {
		wanted[name] = struct{}{}
	}
	for name := range sections {
		if _, ok := wanted[name]; !ok {
			delete(sections, name)
		}
	}
	if len(sections) == 0 {
		return nil, &errors.ParseError{Format: "json", Subject: tool.ID, Message: "no usable sections in response"}
	}

	logging.Ctx(ctx).Debug().Str("tool", tool.ID).Int("sections", len(sections)).Msg("generated content")

	return &catalog.EnhancedContent{
		Sections:    sections,
		Tier:        tier.Name,
		Model:       c.model,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func buildPrompt(tool *catalog.Tool, result classify.Result, tier scoring.TierConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", tool.Name)
	fmt.Fprintf(&b, "Type: %s (confidence %.2f)\n", result.Type, result.Confidence)
	if tool.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", tool.URL)
	}
	if tool.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", tool.Category)
	}
	if tool.Description != "" {
		fmt.Fprintf(&b, "Known description: %s\n", tool.Description)
	}
	writeExternalContext(&b, tool.External)

	fmt.Fprintf(&b, "\nWrite these sections: %s\n", strings.Join(result.Sections, ", "))
	if tier.WebSearches > 0 {
		fmt.Fprintf(&b, "Depth: thorough (up to %d supporting facts per section).\n", tier.WebSearches*2)
	} else {
		b.WriteString("Depth: concise (2-3 sentences per section).\n")
	}
	return b.String()
}

// writeExternalContext grounds the prompt in fetched metrics so generated
// text matches reality.
func writeExternalContext(b *strings.Builder, external *catalog.ExternalData) {
	if external == nil {
		return
	}
	if repo := external.Repo; repo != nil {
		fmt.Fprintf(b, "Repository: %s/%s, %d stars, language %s\n", repo.Owner, repo.Repo, repo.Stars, repo.Language)
	}
	if model := external.Model; model != nil {
		fmt.Fprintf(b, "Hosted %s: %s, %d downloads, %d likes\n", model.Kind, model.ModelID, model.Downloads, model.Likes)
	}
	if pkg := external.Package; pkg != nil {
		fmt.Fprintf(b, "Package: %s (%s), %d monthly downloads\n", pkg.Name, pkg.Registry, pkg.MonthlyDownloads)
	}
}

// parseSections decodes the model's JSON object, tolerating markdown code
// fences around it.
func parseSections(raw string) (map[string]string, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var sections map[string]string
	if err := json.Unmarshal([]byte(text), &sections); err != nil {
		return nil, &errors.ParseError{Format: "json", Subject: "generation response", Message: err.Error(), Err: err}
	}

	for name, content := range sections {
		if strings.TrimSpace(content) == "" {
			delete(sections, name)
		}
	}
	return sections, nil
}
