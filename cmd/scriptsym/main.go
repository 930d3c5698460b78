// Command scriptsym enumerates the reachable spending conditions of a
// bitcoin-style script and prints them as a disjunction of conjunctions.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/philgrim2/scriptsym/internal/cache"
	"github.com/philgrim2/scriptsym/internal/config"
	"github.com/philgrim2/scriptsym/internal/driver"
	"github.com/philgrim2/scriptsym/internal/script"
)

func main() {
	scriptHex := flag.String("script", "", "hex-encoded script to analyze")
	batchPath := flag.String("batch", "", "path to a newline-delimited file of hex-encoded scripts")
	trace := flag.Bool("trace", false, "print the opcode/push disassembly instead of analyzing")
	flag.Parse()

	cfg, err := config.LoadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint
	sugar := logger.Sugar()

	c, err := cache.Open(cfg.CacheDir)
	if err != nil {
		sugar.Fatalw("cache open failed", "error", err)
	}
	defer c.Close()

	d := driver.New(c, sugar, cfg.Version, cfg.Rules)

	switch {
	case *batchPath != "":
		if err := runBatch(context.Background(), d, *batchPath, os.Stdout); err != nil {
			sugar.Fatalw("batch run failed", "error", err)
		}
	case *trace:
		if err := runTrace(*scriptHex, os.Stdout); err != nil {
			sugar.Fatalw("trace failed", "error", err)
		}
	case *scriptHex != "":
		if err := runOne(context.Background(), d, *scriptHex, os.Stdout); err != nil {
			sugar.Fatalw("analysis failed", "error", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}

func runOne(ctx context.Context, d *driver.Driver, scriptHex string, out *os.File) error {
	raw, err := hex.DecodeString(strings.TrimSpace(scriptHex))
	if err != nil {
		return err
	}
	result, err := d.Analyze(ctx, raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

func runTrace(scriptHex string, out *os.File) error {
	raw, err := hex.DecodeString(strings.TrimSpace(scriptHex))
	if err != nil {
		return err
	}
	items, err := script.Parse(raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, driver.Disassemble(items))
	return nil
}

func runBatch(ctx context.Context, d *driver.Driver, path string, out *os.File) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		raw, err := hex.DecodeString(line)
		if err != nil {
			fmt.Fprintf(out, "%d: error: %v\n", lineNum, err)
			continue
		}
		result, err := d.Analyze(ctx, raw)
		if err != nil {
			fmt.Fprintf(out, "%d: error: %v\n", lineNum, err)
			continue
		}
		fmt.Fprintf(out, "%d: %s\n", lineNum, result)
	}
	return scanner.Err()
}
