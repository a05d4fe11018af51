// Package prompts assembles the system prompt of a browsing session.
package prompts

import (
	"strings"
)

// PromptBuilder constructs the system prompt sent ahead of every task.
type PromptBuilder struct {
	customInstructions string
	pageContent        bool
}

// NewPromptBuilder creates a new prompt builder with default settings
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// WithCustomInstructions adds operator-provided instructions.
func (pb *PromptBuilder) WithCustomInstructions(instructions string) *PromptBuilder {
	pb.customInstructions = strings.TrimSpace(instructions)
	return pb
}

// WithPageContentGuide adds the explanation of the page content block.
func (pb *PromptBuilder) WithPageContentGuide() *PromptBuilder {
	pb.pageContent = true
	return pb
}

// Build constructs the complete system prompt by assembling all sections
func (pb *PromptBuilder) Build() string {
	sections := []string{ObjectivePrompt, NotesPrompt}
	if pb.pageContent {
		sections = append(sections, PageContentPrompt)
	}
	if pb.customInstructions != "" {
		sections = append(sections, "## INSTRUCTIONS ##\n"+pb.customInstructions)
	}
	sections = append(sections, FinishPrompt)
	return strings.Join(sections, "\n\n")
}

// Task formats the user turn that opens a session.
func Task(prompt string) string {
	return "Task: " + strings.TrimSpace(prompt) + "."
}
