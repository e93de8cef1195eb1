package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/roach88/tckrunner/internal/discovery"
	"github.com/roach88/tckrunner/internal/fixture"
	"github.com/roach88/tckrunner/internal/identity"
	"github.com/roach88/tckrunner/internal/model"
)

// ErrMissingModelName is returned for a fixture without a modelName element.
var ErrMissingModelName = errors.New("model name not specified in test fixture")

// Fixture is a parsed test fixture bound to its model identity.
type Fixture struct {
	// Path is the canonical path of the fixture file.
	Path string

	Cases    *model.TestCases
	Identity identity.Identity
}

// Plan is everything needed to execute a run without touching the file system.
type Plan struct {
	// Root is the canonical discovery root.
	Root string

	Definitions int
	Fixtures    []Fixture
}

// TestCaseCount returns the number of test cases across all fixtures.
func (p *Plan) TestCaseCount() int {
	n := 0
	for _, f := range p.Fixtures {
		n += len(f.Cases.TestCases)
	}
	return n
}

// TestCount returns the number of tests (result nodes) across all fixtures.
func (p *Plan) TestCount() int {
	n := 0
	for _, f := range p.Fixtures {
		n += f.Cases.TestCount()
	}
	return n
}

// BuildPlan discovers, resolves and parses everything below root.
//
// All model definitions are resolved before any fixture is bound. In
// collect-all mode every error is gathered and returned joined; otherwise
// planning stops at the first failing step.
func BuildPlan(ctx context.Context, root string, pattern *regexp.Regexp, collectAll bool, logger *slog.Logger) (*Plan, error) {
	found, err := discovery.Walk(root, pattern)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered files",
		"root", found.Root,
		"definitions", found.DefinitionCount(),
		"fixtures", found.FixtureCount())

	var errs []error
	registry := identity.NewRegistry()
	for _, dir := range found.Directories {
		if len(dir.Definitions) == 0 {
			continue
		}
		if err := registry.ResolveAll(ctx, found.Root, dir.Path, dir.Definitions); err != nil {
			if !collectAll {
				return nil, err
			}
			errs = append(errs, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := &Plan{Root: found.Root, Definitions: registry.Len()}
	for _, dir := range found.Directories {
		for _, name := range dir.Fixtures {
			f, err := bindFixture(dir.FixturePath(name), registry)
			if err != nil {
				if !collectAll {
					return nil, err
				}
				errs = append(errs, err)
				continue
			}
			logger.Debug("parsed fixture", "file", f.Path, "test_cases", len(f.Cases.TestCases))
			plan.Fixtures = append(plan.Fixtures, f)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return plan, nil
}

func bindFixture(path string, registry *identity.Registry) (Fixture, error) {
	cases, err := fixture.ParseFile(path)
	if err != nil {
		return Fixture{}, err
	}
	if cases.ModelName == nil {
		return Fixture{}, fmt.Errorf("%s: %w", path, ErrMissingModelName)
	}
	id, err := registry.Lookup(*cases.ModelName)
	if err != nil {
		return Fixture{}, fmt.Errorf("%s: %w", path, err)
	}
	return Fixture{Path: path, Cases: cases, Identity: id}, nil
}
