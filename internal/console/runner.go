package console

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mipy/internal/bot"
	"mipy/internal/constants"
	"mipy/internal/dialogue"
	"mipy/internal/logger"
)

// Run serves the shell on stdin/stdout until EOF, /quit or SIGTERM.
// Ctrl-C cancels the operation in progress.
func Run(ctx context.Context, r bot.Router, journal *logger.Journal, configure func(*bot.Bot)) error {
	PrintBanner()
	PrintHint("Commands: /voucher /list /status /detail /cancel /quit")
	PrintHint("Pick options by number or label; Ctrl-C cancels the current step.")
	PrintSep()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	store := dialogue.NewMemoryStore()
	defer store.Close()

	shell := NewShell(os.Stdin, os.Stdout)
	b := bot.New(shell, r, store, journal)
	if configure != nil {
		configure(b)
	}
	b.HandleCommand(ctx, shell.Origin(), "start")
	PrintHint(constants.AppName + " shell ready")
	return shell.Run(ctx, b, interrupt)
}
