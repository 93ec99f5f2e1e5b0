package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/seitarof/sc2xml/internal/builder"
	"github.com/seitarof/sc2xml/internal/generator"
	"github.com/seitarof/sc2xml/internal/matcher"
	"github.com/seitarof/sc2xml/internal/parser"
	"github.com/seitarof/sc2xml/internal/preprocess"
	"github.com/seitarof/sc2xml/internal/resolver"
	"github.com/seitarof/sc2xml/internal/xmlsink"
)

// Runner orchestrates discovery, preprocessing, parsing and output layers.
type Runner interface {
	Run(ctx context.Context, cfg *Config) error
}

type runnerImpl struct {
	parser       parser.Parser
	preprocessor preprocess.Preprocessor
	fieldMatch   matcher.FieldMatcher
	resolver     resolver.Resolver
	generator    generator.Generator
}

// NewRunner creates a default runner implementation.
func NewRunner(
	p parser.Parser,
	pp preprocess.Preprocessor,
	fm matcher.FieldMatcher,
	r resolver.Resolver,
	g generator.Generator,
) Runner {
	return &runnerImpl{
		parser:       p,
		preprocessor: pp,
		fieldMatch:   fm,
		resolver:     r,
		generator:    g,
	}
}

// Run processes every header named by cfg.Inputs. A header that fails is
// logged and skipped; Run reports an error if any input failed.
func (r *runnerImpl) Run(ctx context.Context, cfg *Config) error {
	units, failed := discover(cfg)
	total := len(units) + failed

	errs := make([]error, len(units))
	var g errgroup.Group
	g.SetLimit(cfg.Jobs)
	for i, path := range units {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = r.processUnit(ctx, cfg, path)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			log.Printf("sc2xml: error: %s: %v, skipped", units[i], err)
			failed++
			continue
		}
		if cfg.Verbose {
			log.Printf("sc2xml: info: %s: done", units[i])
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, total)
	}
	return nil
}

func (r *runnerImpl) processUnit(ctx context.Context, cfg *Config, path string) error {
	src := path
	if preprocess.IsStub(path) {
		gen := preprocess.GenPath(path)
		if err := r.preprocessor.Expand(ctx, path, gen); err != nil {
			return err
		}
		defer os.Remove(gen)
		src = gen
	}

	var col builder.Collector
	out := outputPath(cfg, path)
	err := writeAtomic(out, func(w io.Writer) error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()

		xw := xmlsink.New(w)
		perr := r.parser.Parse(src, f, builder.Tee{xw, &col})
		if cerr := xw.Close(); perr == nil {
			perr = cerr
		}
		return perr
	})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if cfg.Verbose {
		log.Printf("sc2xml: info: %s: %d records, %d enums written to %s", path, len(col.Records), len(col.Enums), out)
	}

	if cfg.GoOut == "" {
		return nil
	}
	return r.generateBindings(cfg, path, &col)
}

func (r *runnerImpl) generateBindings(cfg *Config, path string, col *builder.Collector) error {
	if len(col.Records) == 0 && len(col.Enums) == 0 {
		return nil
	}

	idx := matcher.NewTypeIndex(col.Records, col.Enums)
	plan := resolver.UnitPlan{
		Source: filepath.Base(path),
		Enums:  resolver.PlanEnums(idx),
	}
	for _, rec := range idx.Records() {
		bindings := r.fieldMatch.Match(idx, rec, cfg.IgnoreFields)
		fields := r.resolver.Resolve(bindings)
		if cfg.Verbose {
			logSkippedFields(path, idx.GoName(rec), fields)
		}
		plan.Records = append(plan.Records, resolver.RecordPlan{
			Record: rec,
			GoName: idx.GoName(rec),
			Fields: fields,
		})
	}

	ucfg := unitConfig{
		filename: filepath.Join(cfg.GoOut, generator.OutputName(path)),
		pkg:      cfg.GoPackage,
	}
	if err := r.generator.Generate(ucfg, plan); err != nil {
		return fmt.Errorf("bindings: %w", err)
	}
	return nil
}

// discover expands inputs into the headers to process, in a stable order.
// Inputs that cannot be used are logged and counted.
func discover(cfg *Config) ([]string, int) {
	seen := map[string]bool{}
	var units []string
	failed := 0

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			units = append(units, path)
		}
	}

	for _, in := range cfg.Inputs {
		info, err := os.Stat(in)
		if err != nil {
			log.Printf("sc2xml: error: %v, skipped", err)
			failed++
			continue
		}
		if !info.IsDir() {
			if !preprocess.IsHeaderName(filepath.Base(in)) {
				log.Printf("sc2xml: error: %s: not a header file, skipped", in)
				failed++
				continue
			}
			if hasStub(in) {
				logStubShadow(cfg, in)
				continue
			}
			add(in)
			continue
		}

		found, err := headersIn(in, cfg.Recursive)
		if err != nil {
			log.Printf("sc2xml: error: %s: %v", in, err)
			failed++
		}
		for _, path := range found {
			if hasStub(path) {
				logStubShadow(cfg, path)
				continue
			}
			add(path)
		}
	}
	return units, failed
}

func headersIn(dir string, recursive bool) ([]string, error) {
	var out []string
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if isRegular(path, e) && preprocess.IsHeaderName(e.Name()) {
				out = append(out, path)
			}
		}
		return out, nil
	}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if isRegular(path, d) && preprocess.IsHeaderName(d.Name()) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func isRegular(path string, d os.DirEntry) bool {
	if d.Type()&os.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// hasStub reports whether path (X.h or X.gen.h) comes from a sibling X.stub.h.
func hasStub(path string) bool {
	if preprocess.IsStub(path) {
		return false
	}
	info, err := os.Stat(preprocess.StubPath(path))
	return err == nil && info.Mode().IsRegular()
}

func logStubShadow(cfg *Config, path string) {
	if cfg.Verbose {
		log.Printf("sc2xml: info: %s: skipped, %s is processed instead", path, preprocess.StubPath(path))
	}
}

func outputPath(cfg *Config, header string) string {
	out := preprocess.OutputPath(header)
	if cfg.OutDir == "" {
		return out
	}
	return filepath.Join(cfg.OutDir, filepath.Base(out))
}

// writeAtomic writes through a temporary file in the target directory and
// renames it into place only when write succeeds.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func logSkippedFields(path, record string, plans []resolver.FieldPlan) {
	for _, plan := range plans {
		if plan.Strategy != resolver.StrategySkip {
			continue
		}
		log.Printf(
			"sc2xml: warning: %s: %s.%s (%s): %s, left out of bindings",
			path,
			record,
			plan.Binding.Field.Name,
			plan.Binding.Field.TypeString(),
			plan.Reason,
		)
	}
}
