package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"smart-lights/internal/application"
)

const DefaultPrompt = "Enter prompt: "

// LineSource reads one command per line from a reader and writes each answer
// back to a writer. It backs both the interactive prompt and one-shot runs.
type LineSource struct {
	name   string
	in     io.Reader
	out    io.Writer
	prompt string
	limit  int

	mu      sync.Mutex
	scanner *bufio.Scanner
	served  int
}

// NewLineSource stops after limit commands; limit <= 0 reads until EOF.
func NewLineSource(name string, in io.Reader, out io.Writer, prompt string, limit int) *LineSource {
	return &LineSource{
		name:   name,
		in:     in,
		out:    out,
		prompt: prompt,
		limit:  limit,
	}
}

func NewStdinSource(once bool) *LineSource {
	limit := 0
	if once {
		limit = 1
	}
	return NewLineSource("stdin", os.Stdin, os.Stdout, DefaultPrompt, limit)
}

func (s *LineSource) Name() string {
	return s.name
}

func (s *LineSource) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.in)
	}
	return nil
}

func (s *LineSource) Stop() error {
	return nil
}

func (s *LineSource) NextCommand(ctx context.Context) (*application.CommandRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanner == nil {
		return nil, fmt.Errorf("source %s not started", s.name)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.limit > 0 && s.served >= s.limit {
			return nil, io.EOF
		}

		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", s.name, err)
			}
			return nil, io.EOF
		}

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}

		s.served++
		return &application.CommandRequest{Text: text, Reply: s.reply}, nil
	}
}

func (s *LineSource) reply(answer string, err error) {
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, answer)
}
