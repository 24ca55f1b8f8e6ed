package services

import (
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// ReadlinePrompter shares one readline instance between the console loop and
// interactive providers. The previous prompt is restored after each question.
type ReadlinePrompter struct {
	mutex    sync.Mutex
	instance *readline.Instance
}

func NewReadlinePrompter(instance *readline.Instance) *ReadlinePrompter {
	return &ReadlinePrompter{instance: instance}
}

func (p *ReadlinePrompter) Prompt(prompt string) (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	previous := p.instance.Config.Prompt
	p.instance.SetPrompt(prompt)
	defer p.instance.SetPrompt(previous)

	line, err := p.instance.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
