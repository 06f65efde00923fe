package deploy

import (
	"context"

	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/merrors"
	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/pkg/errors"
)

// Bind creates a variable in env for every declaration, in order, and points the
// project parameter of the same name at it. Declared names must already be project
// parameters. With FailFast the first failure stops the remaining declarations; with
// Continue all are attempted and the failures are returned together.
func (d *Deployer) Bind(ctx context.Context, decls []params.Declaration, env *catalog.Environment, project *catalog.Project) error {
	errs := merrors.New()
	for _, decl := range decls {
		err := d.bind(ctx, decl, env, project)
		if err == nil {
			continue
		}
		if d.opts.OnError != Continue {
			return err
		}
		level.Warn(d.logger).Log("msg", "binding parameter failed; continuing", "parameter", decl.Name, "err", err)
		errs.Add(err)
	}
	return errs.Err()
}

func (d *Deployer) bind(ctx context.Context, decl params.Declaration, env *catalog.Environment, project *catalog.Project) error {
	level.Info(d.logger).Log("msg", "adding project parameter", "parameter", decl.Name)

	v, err := catalog.Coerce(decl.DataType, decl.Value)
	if err != nil {
		return errors.Wrapf(err, "parameter %q", decl.Name)
	}

	if err := env.AddVariable(decl.Name, v, decl.Sensitive, decl.Description); err != nil {
		return err
	}
	if err := d.session.AlterEnvironment(ctx, env); err != nil {
		env.Variables = env.Variables[:len(env.Variables)-1]
		return errors.Wrapf(err, "add variable %q to environment %q", decl.Name, env.Name)
	}

	prm := project.Parameter(decl.Name)
	if prm == nil {
		return catalog.Errorf(catalog.KindUnknownParameter, "project %q has no parameter %q", project.Name, decl.Name)
	}
	prev := *prm
	prm.Set(catalog.ValueReferenced, decl.Name)
	if err := d.session.AlterProject(ctx, project); err != nil {
		*prm = prev
		return errors.Wrapf(err, "reference variable %q from parameter %q", decl.Name, decl.Name)
	}
	return nil
}
