// Command segmark splits a markdown file on the command line, without the
// HTTP service or knowledge base. It reads a file (or stdin), inserts split
// markers, and writes the annotated text to stdout or a file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	flag "github.com/spf13/pflag"

	"segmark/internal/cleaner"
	"segmark/internal/splitter"
)

type cliFlags struct {
	config    string
	output    string
	maxLen    int
	minLen    int
	minScore  float64
	marker    string
	clean     bool
	stats     bool
	noSplit   bool
	headingRe string
}

func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("segmark", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "YAML split profile file")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.IntVar(&f.maxLen, "max-length", 0, "max segment length in runes (0 = default)")
	fs.IntVar(&f.minLen, "min-length", 0, "min segment length in runes (0 = default)")
	fs.Float64Var(&f.minScore, "min-score", 0, "min boundary score (0 = default)")
	fs.StringVar(&f.marker, "marker", "", "split marker string (default: <!--split-->)")
	fs.BoolVar(&f.clean, "clean", false, "clean markdown before splitting")
	fs.BoolVar(&f.stats, "stats", false, "print split statistics to stderr as JSON")
	fs.BoolVar(&f.noSplit, "no-split", false, "pass text through unchanged")
	fs.StringVar(&f.headingRe, "heading-regex", "", "comma-separated extra heading patterns")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func main() {
	flags, args, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(flags, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags *cliFlags, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	cfg := splitter.DefaultConfig()
	if flags.config != "" {
		profile, err := os.ReadFile(flags.config)
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		if err := yaml.Unmarshal(profile, &cfg); err != nil {
			return fmt.Errorf("parse profile %s: %w", flags.config, err)
		}
	}
	if flags.maxLen > 0 {
		cfg.MaxLength = flags.maxLen
	}
	if flags.minLen > 0 {
		cfg.MinLength = flags.minLen
	}
	if flags.minScore > 0 {
		cfg.MinSplitScore = flags.minScore
	}
	if flags.marker != "" {
		cfg.SplitMarker = flags.marker
	}
	if flags.headingRe != "" {
		cfg.CustomHeadingRegex = flags.headingRe
	}
	cfg.Enabled = !flags.noSplit

	det, err := splitter.NewDetector(splitter.DefaultCacheSize)
	if err != nil {
		return fmt.Errorf("sentence detector: %w", err)
	}
	sp, err := splitter.New(cfg, det)
	if err != nil {
		return err
	}

	text := input
	if flags.clean {
		text = cleaner.Clean(text, cfg.SplitMarker)
	}

	out, stats := sp.Split(text)

	if flags.stats {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}
	}

	if flags.output == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	return os.WriteFile(flags.output, []byte(out), 0o644)
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected one input file, got %d", len(args))
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
