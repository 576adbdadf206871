// Package main is the recstore data-directory inspection tool.
//
// recstore stores each record type as one serialized collection file. This
// tool inspects and maintains a data directory without knowing the record
// types: dump raw collections, resolve file paths, take and browse git
// snapshots, and watch for out-of-band file edits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/recstore/recstore/internal/backup"
	"github.com/recstore/recstore/internal/codec"
	"github.com/recstore/recstore/internal/config"
	"github.com/recstore/recstore/internal/fileio"
	"github.com/recstore/recstore/internal/watch"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "recstore: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	ll := &slog.LevelVar{}
	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*dataDir)
	if err != nil {
		return err
	}
	// An explicit -log-level wins over the configured verbosity.
	levelSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" {
			levelSet = true
		}
	})
	if cfg.Verbose && !levelSet {
		ll.Set(slog.LevelDebug)
	}
	c := codecFor(cfg.Codec)
	dir, err := fileio.NewDir(*dataDir, c.Ext())
	if err != nil {
		return err
	}

	switch args[0] {
	case "dump":
		if len(args) != 2 {
			return errors.New("usage: recstore dump <type>")
		}
		return dump(ctx, dir, c, args[1])
	case "path":
		if len(args) != 2 {
			return errors.New("usage: recstore path <type>")
		}
		fmt.Println(dir.Path(args[1]))
		return nil
	case "backup":
		snap, err := backup.New(*dataDir, cfg.Backup.AuthorName, cfg.Backup.AuthorEmail)
		if err != nil {
			return err
		}
		hash, err := snap.Snapshot(ctx, "manual snapshot")
		if err != nil {
			return err
		}
		if hash == "" {
			slog.InfoContext(ctx, "Nothing to snapshot")
		} else {
			slog.InfoContext(ctx, "Snapshot created", "hash", hash)
		}
		return nil
	case "history":
		n := 20
		if len(args) == 2 {
			if n, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid count: %q", args[1])
			}
		}
		return history(ctx, *dataDir, cfg, n)
	case "watch":
		return watchDir(ctx, *dataDir, cfg, c.Ext())
	default:
		usage()
		return fmt.Errorf("unknown command: %q", args[0])
	}
}

// dump decodes a collection without knowing its record type and prints the
// raw records to stdout.
func dump(ctx context.Context, dir *fileio.Dir, c codec.Codec, typeName string) error {
	data, err := dir.Read(typeName)
	if err != nil {
		if os.IsNotExist(err) {
			slog.InfoContext(ctx, "No data for type", "type", typeName, "path", dir.Path(typeName))
			return nil
		}
		return err
	}
	var rows []map[string]any
	if err := c.Decode(data, &rows); err != nil {
		return fmt.Errorf("collection %s is unreadable: %w", typeName, err)
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	slog.InfoContext(ctx, "Dumped collection", "type", typeName, "len", len(rows))
	return nil
}

func history(ctx context.Context, dataDir string, cfg *config.Config, n int) error {
	snap, err := backup.New(dataDir, cfg.Backup.AuthorName, cfg.Backup.AuthorEmail)
	if err != nil {
		return err
	}
	commits, err := snap.History(ctx, n)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		slog.InfoContext(ctx, "No snapshots yet")
		return nil
	}
	for _, c := range commits {
		fmt.Printf("%s  %s  %s\n", c.Hash[:12], c.Date.Format(time.DateTime), c.Message)
	}
	return nil
}

// watchDir reports external modifications to collection files and, when
// backups are enabled, snapshots after each change.
func watchDir(ctx context.Context, dataDir string, cfg *config.Config, ext string) error {
	var onChange func(string)
	if cfg.Backup.Enabled {
		snap, err := backup.New(dataDir, cfg.Backup.AuthorName, cfg.Backup.AuthorEmail)
		if err != nil {
			return err
		}
		onChange = func(typeName string) {
			if hash, err := snap.Snapshot(ctx, "snapshot after change to "+typeName); err != nil {
				slog.WarnContext(ctx, "Snapshot failed", "type", typeName, "err", err)
			} else if hash != "" {
				slog.InfoContext(ctx, "Snapshot created", "type", typeName, "hash", hash)
			}
		}
	}
	w, err := watch.New(dataDir, ext, slog.Default(), onChange)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Watching data directory", "dir", dataDir)
	w.Run(ctx)
	return nil
}

func codecFor(name string) codec.Codec {
	if name == "yaml" {
		return codec.YAML{}
	}
	return codec.JSON{}
}

func printVersion() {
	version := "unknown"
	goVersion := "unknown"
	revision := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		version = info.Main.Version
		if version == "" || version == "(devel)" {
			version = "dev"
		}
		goVersion = info.GoVersion
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				revision = setting.Value
			}
		}
	}
	fmt.Printf("recstore %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: recstore [flags] <command> [args]

Commands:
  dump <type>    Print the raw records of a collection
  path <type>    Print the file path backing a collection
  backup         Snapshot the data directory now
  history [n]    List recent snapshots (default 20)
  watch          Report external edits to collection files

Flags:
`)
	flag.PrintDefaults()
}
