// Package driver wires the pre-scan, executor, simplifier, and cache into
// the single entry point the CLI calls, in the shape of the teacher's
// service layer (services/construction_service.go): a struct holding its
// collaborators, one exported method per externally visible operation.
package driver

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/philgrim2/scriptsym/internal/cache"
	"github.com/philgrim2/scriptsym/internal/script"
	"github.com/philgrim2/scriptsym/internal/simplify"
	"github.com/philgrim2/scriptsym/internal/symbolic"
)

// Driver runs one analysis end to end: parse, pre-scan, fork-and-execute,
// simplify, print. A process typically owns one Driver for its lifetime.
type Driver struct {
	cache   *cache.Cache
	group   singleflight.Group
	logger  *zap.SugaredLogger
	version symbolic.Version
	rules   symbolic.Rules
}

// New constructs a Driver. cache may be nil to disable memoization.
func New(c *cache.Cache, logger *zap.SugaredLogger, version symbolic.Version, rules symbolic.Rules) *Driver {
	return &Driver{cache: c, logger: logger, version: version, rules: rules}
}

// Analyze parses raw as a script, pre-scans it for opcodes that are
// disabled outright, then runs the fork-and-execute pipeline and renders
// the surviving branches' spending conditions as DNF. Concurrent identical
// requests are deduplicated via singleflight at this boundary only — the
// executor itself never runs more than one branch at a time.
func (d *Driver) Analyze(ctx context.Context, raw []byte) (string, error) {
	items, err := script.Parse(raw)
	if err != nil {
		return "", err
	}
	if err := preScan(items); err != nil {
		return "", err
	}

	key := cache.Key(raw, d.version, d.rules)
	keyHex := hex.EncodeToString(key)

	v, err, _ := d.group.Do(keyHex, func() (interface{}, error) {
		return d.analyzeUncached(items, key)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (d *Driver) analyzeUncached(items []script.Item, key []byte) (string, error) {
	if d.cache != nil {
		if cached, found, err := d.cache.Get(key); err == nil && found {
			return cached, nil
		}
	}

	registry := symbolic.NewAnalysis(items, d.version, d.rules, d.logger)

	var conjunctions [][]symbolic.Expr
	for _, branch := range registry.Branches() {
		if branch.Err() != nil {
			d.logBranchFailure(branch)
			continue
		}
		kept, ok := simplify.Simplify(branch.SpendingConditions())
		if !ok {
			continue
		}
		conjunctions = append(conjunctions, kept)
	}

	rendered := simplify.PrintDNF(conjunctions)

	if d.cache != nil {
		if err := d.cache.Put(key, rendered); err != nil && d.logger != nil {
			d.logger.Warnw("cache write failed", "error", err)
		}
	}
	return rendered, nil
}

func (d *Driver) logBranchFailure(b *symbolic.Branch) {
	if d.logger == nil {
		return
	}
	stackDesc := make([]string, len(b.FinalStack()))
	for i, e := range b.FinalStack() {
		stackDesc[i] = simplify.PrintExpr(e)
	}
	d.logger.Warnw("branch aborted",
		"path", b.Path(),
		"kind", b.Err().Kind.String(),
		"desc", b.Err().Desc,
		"stack", strings.Join(stackDesc, ", "),
	)
}

// preScan rejects any disabled opcode before execution begins (spec.md
// §6), the same fail-fast shape as the teacher's standard.go script
// classifiers that walk a parsed script once up front.
func preScan(items []script.Item) error {
	for _, item := range items {
		if item.IsPush {
			continue
		}
		if script.IsDisabled(item.Op) {
			return script.NewError(script.ErrDisabledOpcode, item.Op.Name())
		}
	}
	return nil
}

// Disassemble renders a parsed script's opcode/push sequence for trace
// mode, one item per line, in the BTC-Lens-style naming convention.
func Disassemble(items []script.Item) string {
	lines := make([]string, len(items))
	for i, item := range items {
		if item.IsPush {
			lines[i] = fmt.Sprintf("%04d PUSH %s", i, hex.EncodeToString(item.Data))
			continue
		}
		lines[i] = fmt.Sprintf("%04d %s", i, item.Op.Name())
	}
	return strings.Join(lines, "\n")
}
