package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaredMSFT/pgbridge"
	"github.com/JaredMSFT/pgbridge/internal/adapters/fswatch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and check .sql files as they change",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	w, err := fswatch.New()
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Watch(root, func(path string) {
		checkFile(logger, b, path)
	}); err != nil {
		return err
	}

	logger.Info("watching for .sql changes", "dir", root)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println()
	return nil
}

func checkFile(logger *slog.Logger, b *pgbridge.Bridge, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read failed", "path", path, "error", err)
		return
	}

	res, err := b.Split(string(data), false)
	if err != nil {
		logger.Error("split failed", "path", path, "error", err)
		return
	}
	if !res.Ok() {
		logger.Warn("invalid script", "path", path, "error", res.Err)
		return
	}

	bad := 0
	for i, stmt := range res.Statements {
		msg, err := b.GetError(stmt.Text)
		if err != nil {
			logger.Error("check failed", "path", path, "statement", i+1, "error", err)
			return
		}
		if msg != "" {
			bad++
			logger.Warn("syntax error", "path", path, "statement", i+1, "offset", stmt.Location, "error", msg)
		}
	}
	if bad == 0 {
		logger.Info("ok", "path", path, "statements", len(res.Statements))
	}
}
