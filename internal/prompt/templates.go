package prompt

import (
	"fmt"
	"strings"
)

const (
	// SystemPromptText frames the model as a Manim author for providers with a system role
	SystemPromptText = `You are a Manim animation expert who writes short, correct Manim Community Edition scenes for educational videos. You answer with Python source code only.`

	// SceneTemplate is filled with topic, step text, scene name, scene name and the example title
	SceneTemplate = `You are a Manim animation expert. Generate Python code using the Manim library to create a short, educational animation for this concept:

Topic: %s
Step: %s

Requirements:
1. Use Manim Community Edition (manim library)
2. Create a Scene class called %s
3. Keep animation under 10 seconds
4. Use clear, simple visuals
5. Include text labels
6. Use smooth animations
7. Return ONLY the Python code, no explanations

Example structure:
` + "```python" + `
from manim import *

class %s(Scene):
    def construct(self):
        # Your animation code here
        title = Text("%s...")
        self.play(Write(title))
        self.wait(1)
` + "```" + `

Generate the complete Manim code now:`

	// DefaultSceneName is the entry point the renderer is told to run
	DefaultSceneName = "GeneratedScene"

	// exampleTitleLen caps the step excerpt used in the example skeleton
	exampleTitleLen = 30
)

// Builder helps construct LLM prompts
type Builder struct {
	stepText  string
	topic     string
	sceneName string
}

// NewBuilder creates a new prompt builder
func NewBuilder(stepText, topic, sceneName string) *Builder {
	if sceneName == "" {
		sceneName = DefaultSceneName
	}
	return &Builder{
		stepText:  stepText,
		topic:     topic,
		sceneName: sceneName,
	}
}

// SystemPrompt returns the system prompt
func (b *Builder) SystemPrompt() string {
	return SystemPromptText
}

// UserPrompt returns the scene request with topic and step embedded in full
func (b *Builder) UserPrompt() string {
	return fmt.Sprintf(SceneTemplate, b.topic, b.stepText, b.sceneName, b.sceneName, exampleTitle(b.stepText))
}

// Build returns the scene prompt for the default scene name
func Build(stepText, topic string) string {
	return NewBuilder(stepText, topic, DefaultSceneName).UserPrompt()
}

// exampleTitle returns the first few characters of the step, safe to put in a Python string
func exampleTitle(stepText string) string {
	runes := []rune(stepText)
	if len(runes) > exampleTitleLen {
		runes = runes[:exampleTitleLen]
	}
	title := strings.ReplaceAll(string(runes), `\`, `\\`)
	title = strings.ReplaceAll(title, `"`, `\"`)
	return strings.ReplaceAll(title, "\n", " ")
}
