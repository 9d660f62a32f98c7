package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tangzhangming/fieldsynth/internal/classgen"
	"github.com/tangzhangming/fieldsynth/internal/errors"
	"github.com/tangzhangming/fieldsynth/internal/logger"
	"github.com/tangzhangming/fieldsynth/internal/plan"
	"github.com/tangzhangming/fieldsynth/internal/report"
)

var (
	output     = flag.String("o", "", "Write the class file to this path")
	reportMode = flag.String("report", "text", "Report format: text, cbor or none")
	reportOut  = flag.String("report-out", "", "Write the report to this path instead of stdout")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	logFile    = flag.String("log", "", "Also write logs to this file")
	initClass  = flag.String("init", "", "Print a plan template for the given class and exit")
	noColor    = flag.Bool("no-color", false, "Disable colored diagnostics")
)

func main() {
	flag.Parse()

	if *initClass != "" {
		fmt.Print(plan.Template(*initClass))
		return
	}

	if flag.NArg() < 1 {
		fmt.Println("fieldsynth - field initializer synthesizer v0.1.0")
		fmt.Println()
		fmt.Println("Usage: fieldsynth [options] <plan.toml|plan.yaml>")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -o <file>           Write the class file")
		fmt.Println("  -report <mode>      text (default), cbor or none")
		fmt.Println("  -report-out <file>  Write the report to a file")
		fmt.Println("  -debug              Enable debug logging (or FIELDSYNTH_DEBUG=1)")
		fmt.Println("  -log <file>         Also write logs to a file")
		fmt.Println("  -init <class>       Print a plan template and exit")
		fmt.Println("  -no-color           Disable colored diagnostics")
		os.Exit(0)
	}

	if *noColor {
		errors.SetColorsEnabled(false)
	}

	log := logger.Must(logger.Options{
		Debug: *debug || logger.DebugFromEnv(),
		File:  *logFile,
	})

	code := run(flag.Arg(0), log)
	_ = log.Sync()
	os.Exit(code)
}

func run(path string, log *zap.Logger) int {
	p, err := plan.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	formatter := errors.NewFormatter()

	c, err := p.Build(classgen.WithLogger(log))
	if err != nil {
		fmt.Fprint(os.Stderr, formatter.FormatAll(err))
		return 1
	}

	result, err := c.Finalize()
	if err != nil {
		fmt.Fprint(os.Stderr, formatter.FormatAll(err))
		return 1
	}

	if *output != "" {
		if err := os.WriteFile(*output, result.Bytes, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing class file: %v\n", err)
			return 1
		}
		log.Debug("class file written", zap.String("path", *output))
	}

	if err := writeReport(report.New(result)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}
	return 0
}

func writeReport(r *report.Report) (err error) {
	var data []byte
	switch strings.ToLower(*reportMode) {
	case "none":
		return nil
	case "text":
		var buf bytes.Buffer
		if err := report.WriteText(&buf, r); err != nil {
			return err
		}
		data = buf.Bytes()
	case "cbor":
		if data, err = report.EncodeCBOR(r); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report format %q", *reportMode)
	}

	if *reportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	f, err := os.Create(*reportOut)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return err
}
