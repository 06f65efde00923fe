package deploy

import (
	"context"

	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/pkg/errors"
)

// Reconcile replaces the environment named after project in folder with one built
// from the parameter file at configPath, references it from the project and binds
// the declared parameters to its variables. Bindings left over from earlier runs are
// reset to the design default first, so only declared parameters end up referenced.
//
// The environment is dropped before it is recreated and nothing is rolled back: if
// the process dies between the two, the project is left without an environment until
// the next run. The parameter file is read before anything is dropped to keep a
// broken file from getting that far.
func (d *Deployer) Reconcile(ctx context.Context, project *catalog.Project, folder *catalog.Folder, configPath string) error {
	decls, err := params.Load(configPath)
	if err != nil {
		return err
	}

	name := project.Name
	old, err := d.session.Environment(ctx, folder, name)
	switch {
	case err == nil:
		level.Info(d.logger).Log("msg", "dropping environment", "environment", name, "variables", len(old.Variables))
		if err := d.session.DropEnvironment(ctx, old); err != nil {
			return errors.Wrapf(err, "drop environment %q", name)
		}
	case !catalog.IsKind(err, catalog.KindNotFound):
		return errors.Wrapf(err, "get environment %q", name)
	}

	env, err := d.session.CreateEnvironment(ctx, folder, name, "")
	if err != nil {
		return errors.Wrapf(err, "create environment %q", name)
	}
	level.Info(d.logger).Log("msg", "created environment", "environment", name)

	if project.Reference(name, folder.Name) != nil {
		project.RemoveReference(name, folder.Name)
	}
	if err := project.AddReference(name, folder.Name); err != nil {
		return err
	}
	unbound := 0
	for i := range project.Parameters {
		if p := &project.Parameters[i]; p.Referenced() {
			p.Set(catalog.ValueLiteral, p.DesignDefault)
			unbound++
		}
	}
	if unbound > 0 {
		level.Info(d.logger).Log("msg", "reset parameter bindings", "parameters", unbound)
	}
	if err := d.session.AlterProject(ctx, project); err != nil {
		return errors.Wrapf(err, "reference environment %q from project %q", name, project.Name)
	}

	return d.Bind(ctx, decls, env, project)
}
