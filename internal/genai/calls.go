package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
)

// Chat answers message in the context of history. Roles other than "user"
// are sent as "model".
func (c *Client) Chat(ctx context.Context, message string, history []model.ChatMessage) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	contents := []content{userText(assistantPrimer), modelText(assistantPrimerReply)}
	for _, m := range history {
		if m.Role == "user" {
			contents = append(contents, userText(m.Content))
		} else {
			contents = append(contents, modelText(m.Content))
		}
	}
	contents = append(contents, userText(message))

	sys := content{Parts: []part{{Text: assistantSystemPrompt}}}
	return c.generate(ctx, generateRequest{Contents: contents, SystemInstruction: &sys})
}

// ExtractProject reads project header fields out of a document. fileBase64
// is the base64 file body; mimeType defaults to application/pdf.
func (c *Client) ExtractProject(ctx context.Context, fileBase64, mimeType string) (Extracted, error) {
	if c == nil {
		return Extracted{}, ErrNoAPIKey
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	req := generateRequest{Contents: []content{{
		Role: "user",
		Parts: []part{
			{Text: extractPrompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: fileBase64}},
		},
	}}}
	raw, err := c.generate(ctx, req)
	if err != nil {
		return Extracted{}, err
	}
	return decodeExtracted(raw)
}

// ExtractFile is ExtractProject for raw file bytes.
func (c *Client) ExtractFile(ctx context.Context, data []byte, mimeType string) (Extracted, error) {
	return c.ExtractProject(ctx, base64.StdEncoding.EncodeToString(data), mimeType)
}

func decodeExtracted(raw string) (Extracted, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(plan.StripFences(raw)), &m); err != nil {
		return Extracted{}, fmt.Errorf("genai: parsing extraction: %w", err)
	}
	e := Extracted{
		ProjectName: stringify(m["projectName"]),
		Budget:      stringify(m["budget"]),
		Duration:    stringify(m["duration"]),
		ProjectType: stringify(m["projectType"]),
		Objective:   stringify(m["objective"]),
		Constraints: stringify(m["constraints"]),
	}
	if e.Budget != "" {
		e.Budget = GroupThousands(e.Budget)
	}
	return e, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// GroupThousands keeps only the digits of s and inserts commas every three
// places, so "$1500000" becomes "1,500,000".
func GroupThousands(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	n := len(digits)
	if n == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(d)
	}
	return b.String()
}

// GenerateCharter makes three calls: the charter text, the risk register,
// and the phase/task breakdown. Only a failed charter call is an error; an
// unusable risk or breakdown reply is replaced by the fallback plan.
func (c *Client) GenerateCharter(ctx context.Context, b Brief) (plan.Generated, error) {
	charter, err := c.Generate(ctx, charterPrompt(b))
	if err != nil {
		return plan.Generated{}, err
	}
	out := plan.Generated{Charter: charter}

	if raw, err := c.Generate(ctx, riskPrompt(b)); err != nil {
		c.log.Warn("risk generation failed, using fallback", "error", err)
		out.Risks = plan.FallbackRisks()
	} else {
		var ok bool
		if out.Risks, ok = plan.RisksOrFallback(raw); !ok {
			c.log.Warn("risk reply was not valid JSON, using fallback")
		}
	}

	if raw, err := c.Generate(ctx, breakdownPrompt(b)); err != nil {
		c.log.Warn("breakdown generation failed, using fallback", "error", err)
		fb := plan.FallbackBreakdown()
		out.WBS, out.Tasks = fb.WBS, fb.Tasks
	} else {
		bd, ok := plan.BreakdownOrFallback(raw)
		if !ok {
			c.log.Warn("breakdown reply was not valid JSON, using fallback")
		}
		out.WBS, out.Tasks = bd.WBS, bd.Tasks
	}
	return out, nil
}
