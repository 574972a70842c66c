// Command azchat decodes a chat-completion response document and either
// reports its issues or re-emits the flattened encoding. Intended for
// diagnosing schema drift in captured responses.
//
// Usage:
//
//	azchat [-in file] [-format json|yaml] [-strategy value|stream] [-unknown strip|passthrough|strict] [-check]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	azchat "github.com/reoring/azchat"
	_ "github.com/reoring/azchat/source"
	yamlsrc "github.com/reoring/azchat/source/yaml"
)

func main() {
	var (
		in       = flag.String("in", "-", "input file (- for stdin)")
		format   = flag.String("format", "json", "input format: json or yaml")
		strategy = flag.String("strategy", "value", "decode strategy: value or stream")
		unknown  = flag.String("unknown", "strip", "unknown-key policy: strip, passthrough or strict")
		check    = flag.Bool("check", false, "validate only; do not re-emit")
	)
	flag.Parse()

	if err := run(*in, *format, *strategy, *unknown, *check); err != nil {
		fmt.Fprintf(os.Stderr, "azchat: %v\n", err)
		os.Exit(1)
	}
}

func run(in, format, strategy, unknown string, check bool) error {
	data, err := readInput(in)
	if err != nil {
		return err
	}

	opt := azchat.DecodeOpt{}
	switch strategy {
	case "value":
		opt.Strategy = azchat.StrategyValue
	case "stream":
		opt.Strategy = azchat.StrategyStream
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}
	switch unknown {
	case "strip":
		opt.Unknown = azchat.UnknownStrip
	case "passthrough":
		opt.Unknown = azchat.UnknownPassthrough
	case "strict":
		opt.Unknown = azchat.UnknownStrict
	default:
		return fmt.Errorf("unknown unknown-key policy %q", unknown)
	}

	ctx := context.Background()
	var rec azchat.ChatCompletion
	switch format {
	case "json":
		rec, err = azchat.DecodeBytes(ctx, data, opt)
	case "yaml":
		var doc any
		doc, err = yamlsrc.DocumentBytes(data)
		if err == nil {
			rec, err = azchat.DecodeValue(ctx, doc, opt)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		if iss, ok := azchat.AsIssues(err); ok {
			for _, it := range iss {
				fmt.Fprintf(os.Stderr, "%s at %s", it.Code, it.Path)
				if it.Hint != "" {
					fmt.Fprintf(os.Stderr, " (%s)", it.Hint)
				}
				fmt.Fprintln(os.Stderr)
			}
		}
		return err
	}
	if check {
		fmt.Fprintf(os.Stderr, "ok: %d choice(s)\n", len(rec.Choices))
		return nil
	}

	out, err := azchat.Encode(rec)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

func readInput(in string) ([]byte, error) {
	if in == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(in)
}
