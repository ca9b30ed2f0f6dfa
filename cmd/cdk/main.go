package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	json "github.com/goccy/go-json"
	"github.com/sghaida/cdk/classpath"
	"github.com/sghaida/cdk/internal/config"
	"github.com/sghaida/cdk/internal/ctxlog"
	"github.com/sghaida/cdk/script"
	"gopkg.in/yaml.v3"
)

// exitError carries the process exit code for run failures.
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string { return e.Err.Error() }

func (e *exitError) Unwrap() error { return e.Err }

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "cdk:", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// parseArgs layers command-line flags over the environment configuration.
// A nil config with a nil error means help was printed.
func parseArgs(args []string, stderr io.Writer) (*config.Config, string, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, "", &exitError{Code: 2, Err: err}
	}

	flagSet := flag.NewFlagSet("cdk", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {
		fmt.Fprint(stderr, `
cdk - build dataset definitions from an HCL script.

Usage:
  cdk [options] SCRIPT

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&cfg.VendorDir, "vendor", cfg.VendorDir, "Directory of archives to assemble (CDK_VENDOR_DIR).")
	flagSet.StringVar(&cfg.ArchiveExt, "ext", cfg.ArchiveExt, "Archive file extension (CDK_ARCHIVE_EXT).")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Logging level: debug, info, warn or error (CDK_LOG_LEVEL).")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json (CDK_LOG_FORMAT).")
	flagSet.StringVar(&cfg.Output, "o", cfg.Output, "Output encoding: yaml or json (CDK_OUTPUT).")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, "", nil
		}
		return nil, "", &exitError{Code: 2, Err: err}
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return nil, "", &exitError{Code: 2, Err: errors.New("exactly one script path is required")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", &exitError{Code: 2, Err: err}
	}
	return &cfg, flagSet.Arg(0), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, path, err := parseArgs(args, stderr)
	if err != nil || cfg == nil {
		return err
	}

	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, stderr)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration loaded.", "config", *cfg)

	var opts []script.Option
	cp, err := classpath.Assemble(ctx, cfg.VendorDir, classpath.WithExtension(cfg.ArchiveExt))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("Vendor directory not found, skipping.", "dir", cfg.VendorDir)
	case err != nil:
		return &exitError{Code: 1, Err: err}
	default:
		for _, c := range cp.Conflicts() {
			logger.Warn("Archive entry shadowed.", "entry", c.Entry, "winner", c.Winner, "shadowed", c.Shadowed)
		}
		logger.Info("Classpath assembled.", "archives", len(cp.Archives()), "entries", cp.Len())
		opts = append(opts, script.WithClasspath(cp))
	}

	res, err := script.Load(ctx, path, opts...)
	if err != nil {
		return &exitError{Code: 1, Err: err}
	}
	logger.Info("Script loaded.", "script", res.Path, "objects", len(res.Objects))

	if err := writeObjects(stdout, cfg.Output, res.Objects); err != nil {
		return &exitError{Code: 1, Err: err}
	}
	return nil
}

func writeObjects(w io.Writer, format string, objects []script.Object) error {
	if objects == nil {
		objects = []script.Object{}
	}
	switch format {
	case "json":
		b, err := json.MarshalIndent(objects, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(objects); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
}
