package genai

import (
	"strings"

	"github.com/theirongolddev/pmx/internal/model"
)

// Wire types for the generateContent REST endpoint.

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// text joins the text parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func userText(s string) content {
	return content{Role: "user", Parts: []part{{Text: s}}}
}

func modelText(s string) content {
	return content{Role: "model", Parts: []part{{Text: s}}}
}

// Brief is the project description charter generation works from. Its JSON
// shape is the body the web form posts.
type Brief struct {
	ProjectName string      `json:"projectName"`
	Budget      string      `json:"budget"`
	Duration    model.Weeks `json:"duration"`
	ProjectType string      `json:"projectType"`
	Objective   string      `json:"objective"`
	Constraints string      `json:"constraints"`
}

// Extracted is the project header read out of a document. Every field is a
// string; fields the document does not mention are empty.
type Extracted struct {
	ProjectName string `json:"projectName"`
	Budget      string `json:"budget"`
	Duration    string `json:"duration"`
	ProjectType string `json:"projectType"`
	Objective   string `json:"objective"`
	Constraints string `json:"constraints"`
}
