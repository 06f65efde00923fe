package deploy

import (
	"context"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/merrors"
	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/observatorium/catalogctl/pkg/source"
	"github.com/pkg/errors"
)

// Separator is logged before each artifact.
const Separator = "------"

// Run deploys the artifacts at paths in order. A failing artifact does not stop the
// others; the returned error lists every artifact that failed. Cancelling ctx stops
// the run before the next artifact, the one in flight runs to completion.
func (d *Deployer) Run(ctx context.Context, paths []string) error {
	errs := merrors.New()
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			errs.Add(errors.Wrapf(err, "interrupted with %d artifacts left", len(paths)-i))
			break
		}

		level.Info(d.logger).Log("msg", Separator)
		err := d.deployArtifact(context.WithoutCancel(ctx), path)
		if err == nil {
			continue
		}
		level.Error(d.logger).Log("msg", "artifact deployment failed", "artifact", path, "kind", catalog.KindOf(err), "err", err)
		errs.Addf(err, "artifact %v", path)
		if catalog.IsKind(err, catalog.KindConnection) {
			break
		}
	}
	return errs.Err()
}

func (d *Deployer) deployArtifact(ctx context.Context, path string) error {
	a, err := ReadArtifact(path)
	if err != nil {
		return err
	}

	ad := *d
	ad.logger = log.With(d.logger, "project", a.Name)
	level.Info(ad.logger).Log("msg", "deploying artifact", "artifact", path, "bytes", len(a.Bytes), "folder", d.opts.Folder)
	if d.opts.SourceRevision {
		ad.logRevision(path)
	}

	folder, err := ad.ResolveFolder(ctx)
	if err != nil {
		return err
	}
	project, err := ad.DeployProject(ctx, folder, a)
	if err != nil {
		return err
	}

	configPath := params.ConfigPath(path, project.Name)
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			level.Info(ad.logger).Log("msg", "no parameter file; environment left untouched", "config", configPath)
			return nil
		}
		return errors.Wrapf(err, "stat parameter file %v", configPath)
	}
	return ad.Reconcile(ctx, project, folder, configPath)
}

func (d *Deployer) logRevision(path string) {
	rev, err := source.Describe(path)
	if err != nil {
		level.Debug(d.logger).Log("msg", "cannot determine source revision", "err", err)
		return
	}
	if rev == nil {
		return
	}
	level.Info(d.logger).Log("msg", "artifact source revision", "commit", rev.Commit, "branch", rev.Branch)
}
