package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mipy/internal/bot"
	"mipy/internal/dialogue"
	"mipy/internal/utils"
	"mipy/internal/voucher"
)

// Shell is a line-based front end: slash commands, numbered choices and
// free text on stdin, replies on stdout. It implements bot.Messenger.
type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	origin bot.Origin

	mu      sync.Mutex
	pending []dialogue.Option
}

func NewShell(in io.Reader, out io.Writer) *Shell {
	return &Shell{
		in:  bufio.NewScanner(in),
		out: out,
		origin: bot.Origin{
			UserID: uuid.NewString(),
			Name:   utils.GetEnv("USER", "operator"),
		},
	}
}

// Origin is the identity the shell's dialogues run under.
func (s *Shell) Origin() bot.Origin {
	return s.origin
}

func (s *Shell) SendText(_ int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "%s\n\n", text)
	return err
}

func (s *Shell) SendChoice(_ int64, prompt string, options []dialogue.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = options

	var b strings.Builder
	b.WriteString(prompt + "\n")
	for i, o := range options {
		fmt.Fprintf(&b, "  %s%d)%s %s\n", ColorCyan, i+1, ColorReset, o.Label)
	}
	_, err := fmt.Fprintln(s.out, b.String())
	return err
}

func (s *Shell) SendQR(_ int64, content, caption string) error {
	qr, err := voucher.LoginQRText(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Fprintf(s.out, "%s\n%s\n%s\n\n", qr, caption, content)
	return err
}

// resolve maps a reply to the pending choice, by number or label.
func (s *Shell) resolve(line string) (dialogue.Option, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(s.pending) {
		return s.pending[n-1], true
	}
	for _, o := range s.pending {
		if strings.EqualFold(o.Label, line) {
			return o, true
		}
	}
	return dialogue.Option{}, false
}

func (s *Shell) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// Run reads input until EOF or /quit. A value on interrupt cancels the
// operation in progress instead of leaving the shell.
func (s *Shell) Run(ctx context.Context, h bot.Handler, interrupt <-chan os.Signal) error {
	for {
		fmt.Fprintf(s.out, "%smipy>%s ", ColorBold, ColorReset)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.handle(ctx, h, line)
		}()

		select {
		case <-done:
		case <-interrupt:
			h.HandleCommand(ctx, s.origin, "cancel")
			<-done
		case <-ctx.Done():
			<-done
			return ctx.Err()
		}
	}
}

func (s *Shell) handle(ctx context.Context, h bot.Handler, line string) {
	if strings.HasPrefix(line, "/") {
		s.clearPending()
		cmd := strings.Fields(strings.TrimPrefix(line, "/"))
		if len(cmd) == 0 {
			return
		}
		h.HandleCommand(ctx, s.origin, strings.ToLower(cmd[0]))
		return
	}
	if opt, ok := s.resolve(line); ok {
		s.clearPending()
		h.HandleChoice(ctx, s.origin, opt.Data())
		return
	}
	h.HandleText(ctx, s.origin, line)
}
