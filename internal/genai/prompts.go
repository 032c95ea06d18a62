package genai

import (
	"fmt"
	"strings"
)

const assistantSystemPrompt = `You are PMX Assistant, an expert AI project management advisor built into the PMX project management platform.

Your capabilities:
- Help users plan, manage, and execute projects
- Advise on risk management, stakeholder engagement, and scope control
- Provide guidance on Agile, Waterfall, Hybrid, and other PM methodologies
- Help write project charters, WBS, risk registers, and status reports
- Answer questions about budgeting, scheduling, resource allocation, and quality management
- Suggest best practices and industry standards (PMBOK, PRINCE2, Agile frameworks)

Rules:
- Be concise but thorough
- Use bullet points and structured formatting when helpful
- If the user asks about a specific project, work with whatever context they provide
- Be practical and actionable: give specific advice, not generic platitudes
- Use markdown formatting for readability`

const (
	assistantPrimer      = "You are PMX Assistant. Acknowledge briefly."
	assistantPrimerReply = "I'm PMX Assistant, ready to help with your project management needs. What can I help you with?"
)

const extractPrompt = `You are a project management expert. Analyze this uploaded document and extract the following project details.

Return ONLY valid JSON (no backticks, no explanation) in this exact format:
{
  "projectName": "Name of the project",
  "budget": "Budget amount as a plain number string (no currency symbols, no commas)",
  "duration": "Duration in weeks as a plain number string",
  "projectType": "IT | Infrastructure | Construction | Other",
  "objective": "The project objective or business goal (1-3 sentences)",
  "constraints": "Key constraints mentioned in the document (1-3 sentences)"
}

Rules:
- Extract as much information as possible from the document.
- If a field is not mentioned in the document, use an empty string "".
- For budget, convert to a plain number (e.g., "$1,500,000" -> "1500000").
- For duration, estimate in weeks if given in months/years (e.g., "6 months" -> "24").
- For projectType, choose the closest match from: IT, Infrastructure, Construction, Other.
- Be concise but informative for objective and constraints.`

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

// context renders the brief as the shared block every charter prompt ends with.
func (b Brief) context() string {
	dur := ""
	if b.Duration > 0 {
		dur = fmt.Sprint(int(b.Duration))
	}
	return strings.Join([]string{
		"Project name: " + orNotSpecified(b.ProjectName),
		"Budget: " + orNotSpecified(b.Budget),
		"Duration (weeks): " + orNotSpecified(dur),
		"Objective / business goal: " + orNotSpecified(b.Objective),
		"Key constraints: " + orNotSpecified(b.Constraints),
	}, "\n")
}

func charterPrompt(b Brief) string {
	return `You are a professional project manager.

Using the inputs below, write a concise but structured project charter.
Include sections:
- Project Overview
- Objectives
- Scope (In Scope / Out of Scope)
- High-Level Timeline & Phases
- Key Stakeholders (generic roles)
- Key Risks & High-Level Responses
- Assumptions
- Constraints

` + b.context()
}

func riskPrompt(b Brief) string {
	return `You are a project risk management expert.

Based on the following project information, identify 5-8 key project risks (threats only).

` + b.context() + `

Return ONLY a valid JSON array (no backticks, no explanation) in this exact format:
[
  {
    "id": "R1",
    "description": "Short one-line risk description",
    "category": "Scope | Schedule | Cost | Quality | Resource | Stakeholder | Technical | Other",
    "impact": "Low | Medium | High",
    "probability": "Low | Medium | High",
    "response": "Short one-line recommended response strategy",
    "owner": "Role responsible (e.g., Project Manager, Sponsor, Tech Lead)"
  }
]`
}

func breakdownPrompt(b Brief) string {
	weeks := "12"
	if b.Duration > 0 {
		weeks = fmt.Sprint(int(b.Duration))
	}
	return `You are a project manager creating a Work Breakdown Structure and an initial task list.

Based on the project below, return ONLY valid JSON (no backticks, no prose) with this exact structure:

{
  "wbs": [
    {
      "id": "1",
      "name": "Phase name",
      "startWeek": 0,
      "durationWeeks": 2,
      "items": ["1.1 Deliverable or task", "1.2 Deliverable or task"]
    }
  ],
  "tasks": [
    { "id": 1, "title": "Short actionable task title" }
  ]
}

Rules:
- Generate 4-6 WBS phases that fit within ` + weeks + ` weeks total. startWeek and durationWeeks must be integers and must not exceed the total duration.
- Generate 6-10 Kanban tasks (the most important early actions). Start task IDs at 1.
- Make everything specific to the project described.
- Return ONLY the JSON object, nothing else.

` + b.context()
}
