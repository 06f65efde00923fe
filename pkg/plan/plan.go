// Package plan previews what deploying an artifact would do to its environment
// without touching the catalog.
package plan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sourcegraph/go-diff/diff"
)

const sensitiveMask = "********"

// Planner compares catalog environments with parameter files.
type Planner struct {
	logger  log.Logger
	session catalog.Session
}

func New(logger log.Logger, session catalog.Session) *Planner {
	return &Planner{logger: logger, session: session}
}

// Plan writes a unified diff between the variables of the environment the artifact
// at artifactPath would get in folderName and the variables its parameter file
// declares. Declared names the deployed project does not define are listed as
// warnings. It reports whether anything would change.
func (p *Planner) Plan(ctx context.Context, w io.Writer, folderName, artifactPath string) (bool, error) {
	name := params.ProjectName(artifactPath)
	configPath := params.ConfigPath(artifactPath, name)
	decls, err := params.Load(configPath)
	if err != nil {
		return false, err
	}
	want, err := renderDeclarations(decls)
	if err != nil {
		return false, errors.Wrapf(err, "parameter file %v", configPath)
	}

	var (
		env     *catalog.Environment
		project *catalog.Project
	)
	folder, err := p.session.Folder(ctx, folderName)
	switch {
	case err == nil:
		if env, err = p.session.Environment(ctx, folder, name); err != nil && !catalog.IsKind(err, catalog.KindNotFound) {
			return false, errors.Wrapf(err, "get environment %q", name)
		}
		if project, err = p.session.Project(ctx, folder, name); err != nil && !catalog.IsKind(err, catalog.KindNotFound) {
			return false, errors.Wrapf(err, "get project %q", name)
		}
	case !catalog.IsKind(err, catalog.KindNotFound):
		return false, errors.Wrapf(err, "get folder %q", folderName)
	}
	level.Debug(p.logger).Log("msg", "planning environment", "project", name, "declarations", len(decls), "environment_exists", env != nil)

	changed, err := printDiff(w, folderName+"/"+name, renderEnvironment(env), want)
	if err != nil {
		return false, err
	}

	if project != nil {
		for _, d := range decls {
			if project.Parameter(d.Name) == nil {
				fmt.Fprintf(w, "warning: project %q has no parameter %q; binding it will fail\n", name, d.Name)
			}
		}
	}
	return changed, nil
}

func variableLine(name string, t catalog.DataType, value string, sensitive bool, description string) string {
	if sensitive {
		value = sensitiveMask
	}
	line := fmt.Sprintf("%s (%v) = %q", name, t, value)
	if description != "" {
		line += " # " + description
	}
	return line + "\n"
}

func renderEnvironment(env *catalog.Environment) string {
	if env == nil {
		return ""
	}
	b := strings.Builder{}
	for _, v := range env.Variables {
		b.WriteString(variableLine(v.Name, v.DataType, v.Value, v.Sensitive, v.Description))
	}
	return b.String()
}

func renderDeclarations(decls []params.Declaration) (string, error) {
	b := strings.Builder{}
	for _, d := range decls {
		v, err := catalog.Coerce(d.DataType, d.Value)
		if err != nil {
			return "", errors.Wrapf(err, "parameter %q", d.Name)
		}
		b.WriteString(variableLine(d.Name, v.Type(), v.String(), d.Sensitive, d.Description))
	}
	return b.String(), nil
}

// printDiff writes base and new as a single hunk unified diff.
func printDiff(w io.Writer, name, base, new string) (bool, error) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(base, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		body            bytes.Buffer
		origLen, newLen int32
		changed         bool
	)
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, changed = "-", true
		case diffmatchpatch.DiffInsert:
			prefix, changed = "+", true
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			body.WriteString(prefix + l)
			if d.Type != diffmatchpatch.DiffInsert {
				origLen++
			}
			if d.Type != diffmatchpatch.DiffDelete {
				newLen++
			}
		}
	}
	if !changed {
		_, err := fmt.Fprintf(w, "Environment %s: no changes\n", name)
		return false, err
	}

	hunk := &diff.Hunk{OrigLines: origLen, NewLines: newLen, Body: body.Bytes()}
	if origLen > 0 {
		hunk.OrigStartLine = 1
	}
	if newLen > 0 {
		hunk.NewStartLine = 1
	}
	out, err := diff.PrintFileDiff(&diff.FileDiff{
		OrigName: "catalog/" + name,
		NewName:  "declared/" + name,
		Hunks:    []*diff.Hunk{hunk},
	})
	if err != nil {
		return false, errors.Wrap(err, "print diff")
	}
	_, err = w.Write(out)
	return true, err
}
