// Command pxd is the CLI front end for the pxd library: it reads a PXD (or
// gzip-compressed PXD) file and rewrites it, in canonical form, to another
// file or to standard output.
//
// Usage:
//
//	pxd [-z|--compress] [-iN|--indent=N] [-warn-as-error] [-v] <infile> [<outfile>]
//
// It is a one-shot read/rewrite operation, not an interactive shell: pxd
// has no query language to REPL over.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/SimonWaldherr/pxd"
)

// Config holds the resolved CLI flags for one invocation.
type Config struct {
	Compress    bool
	Indent      int
	WarnAsError bool
	Verbose     bool
	InFile      string
	OutFile     string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		exitIfErr(err)
	}
}

func exitIfErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(args []string) error {
	fs := flag.NewFlagSet("pxd", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pxd [-z|--compress] [-iN|--indent=N] <infile> [<outfile>]\n")
		fs.PrintDefaults()
	}

	var cfg Config
	fs.BoolVar(&cfg.Compress, "z", false, "gzip-compress the output (ignored when writing to stdout)")
	fs.BoolVar(&cfg.Compress, "compress", false, "gzip-compress the output (ignored when writing to stdout)")
	fs.IntVar(&cfg.Indent, "i", 2, "indent width, 0..9 (out-of-range falls back to 2)")
	fs.IntVar(&cfg.Indent, "indent", 2, "indent width, 0..9 (out-of-range falls back to 2)")
	fs.BoolVar(&cfg.WarnAsError, "warn-as-error", false, "escalate version-mismatch warnings to fatal errors")
	fs.BoolVar(&cfg.Verbose, "v", false, "log the diagnostic session ID and elapsed time")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log the diagnostic session ID and elapsed time")

	// The flag package reads -i4 as an unknown flag named "i4", so the
	// attached -iN form is rewritten to -i=N before parsing.
	norm := make([]string, len(args))
	for k, a := range args {
		norm[k] = a
		if len(a) > 2 && a[:2] == "-i" {
			digits := true
			for _, c := range a[2:] {
				if c < '0' || c > '9' {
					digits = false
					break
				}
			}
			if digits {
				norm[k] = "-i=" + a[2:]
			}
		}
	}
	if err := fs.Parse(norm); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		fs.Usage()
		return fmt.Errorf("missing <infile>")
	}
	cfg.InFile = rest[0]
	if len(rest) > 1 {
		cfg.OutFile = rest[1]
	}

	start := time.Now()
	if err := execute(&cfg); err != nil {
		return err
	}
	if cfg.Verbose {
		log.Printf("pxd: processed %s in %s", cfg.InFile, time.Since(start))
	}
	return nil
}

func execute(cfg *Config) error {
	opts := []pxd.Option{
		pxd.WithWarnAsError(cfg.WarnAsError),
		pxd.WithIndent(cfg.Indent),
		pxd.WithVerbose(cfg.Verbose),
	}

	root, custom, err := pxd.ReadFile(cfg.InFile, opts...)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.InFile, err)
	}

	if cfg.OutFile == "" {
		// Compression is ignored when writing to standard output.
		return pxd.Write(os.Stdout, root, custom, opts...)
	}
	return pxd.WriteFile(cfg.OutFile, root, custom, cfg.Compress, opts...)
}
