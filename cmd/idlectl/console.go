package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// submitter is the part of session.Session the console needs.
type submitter interface {
	Submit(cmd domain.Command) bool
}

// console turns stdin lines into session commands.
type console struct {
	in      io.Reader
	out     io.Writer
	session submitter
}

func newConsole(in io.Reader, out io.Writer, s submitter) *console {
	return &console{in: in, out: out, session: s}
}

// Run reads lines until EOF, quit, or ctx is done.
func (c *console) Run(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if h := strings.TrimSpace(line); h == "help" || h == "?" {
				fmt.Fprintln(c.out, consoleHelp)
				continue
			}
			cmds, quit, err := parseLine(line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
				continue
			}
			if quit {
				return
			}
			for _, cmd := range cmds {
				if !c.session.Submit(cmd) {
					return
				}
			}
		}
	}
}

const consoleHelp = `commands: shutdown [min] | screen [min] | apply <shutdown|screen> <min> | status | quit`

// parseLine maps one input line to commands. Blank lines produce none.
func parseLine(line string) ([]domain.Command, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch verb := strings.ToLower(fields[0]); verb {
	case "quit", "exit", "q":
		return nil, true, nil

	case "status":
		cmds := make([]domain.Command, 0, len(domain.Actions))
		for _, id := range domain.Actions {
			cmds = append(cmds, domain.Refresh{Action: id})
		}
		return cmds, false, nil

	case "apply":
		if len(fields) != 3 {
			return nil, false, fmt.Errorf("usage: apply <shutdown|screen> <minutes>")
		}
		id, err := domain.ParseActionID(fields[1])
		if err != nil {
			return nil, false, err
		}
		return []domain.Command{domain.ApplyMinutes{Action: id, Minutes: fields[2]}}, false, nil

	default:
		id, err := domain.ParseActionID(verb)
		if err != nil {
			return nil, false, fmt.Errorf("unknown command %q (%s)", fields[0], consoleHelp)
		}
		minutes := ""
		if len(fields) > 1 {
			minutes = fields[1]
		}
		return []domain.Command{domain.NewToggle(id, minutes)}, false, nil
	}
}

// syncWriter serializes writes from the console and the session reporter.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func printStatus(out io.Writer, st domain.Status) {
	if st.Err != nil {
		fmt.Fprintf(out, "%s (error: %v)\n", st, st.Err)
		return
	}
	fmt.Fprintln(out, st)
}
