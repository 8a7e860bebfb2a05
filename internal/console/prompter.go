package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned by a Prompter when the operator presses Ctrl+C.
var ErrAborted = errors.New("input aborted")

// Prompter reads one line of operator input per call.
type Prompter interface {
	Prompt(prompt string) (string, error)
	// PasswordPrompt reads a line without echoing it where the terminal
	// allows.
	PasswordPrompt(prompt string) (string, error)
	Close() error
}

// NewPrompter returns a line-editing prompter with history when stdin is a
// terminal and a plain line reader otherwise.
func NewPrompter() Prompter {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return newLinerPrompter()
	}
	return NewLinePrompter(os.Stdin, os.Stdout)
}

type linerPrompter struct {
	line *liner.State
}

func newLinerPrompter() *linerPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &linerPrompter{line: line}
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	input, err := p.line.Prompt(prompt)
	if err != nil {
		return "", linerErr(err)
	}

	if strings.TrimSpace(input) != "" {
		p.line.AppendHistory(input)
	}

	return input, nil
}

func (p *linerPrompter) PasswordPrompt(prompt string) (string, error) {
	input, err := p.line.PasswordPrompt(prompt)
	if err != nil {
		return "", linerErr(err)
	}
	return input, nil
}

func (p *linerPrompter) Close() error {
	return p.line.Close()
}

func linerErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return ErrAborted
	}
	return err
}

// LinePrompter reads newline-terminated input from any reader. Password
// prompts echo; it serves pipes and scripted sessions.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter over in, writing prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (p *LinePrompter) PasswordPrompt(prompt string) (string, error) {
	return p.Prompt(prompt)
}

func (p *LinePrompter) Close() error {
	return nil
}
