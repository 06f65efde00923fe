package deploy

import (
	"context"

	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/pkg/errors"
)

// DeployProject uploads the artifact into folder, overwriting a project of the same
// name. Every message the server reports is logged, whatever the outcome.
func (d *Deployer) DeployProject(ctx context.Context, folder *catalog.Folder, a *Artifact) (*catalog.Project, error) {
	res, err := d.session.DeployProject(ctx, folder, a.Name, a.Bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "deploy project %q", a.Name)
	}
	for _, m := range res.Messages {
		level.Info(d.logger).Log("msg", m.Text, "type", m.Type, "operation", res.ID)
	}
	if res.Status != catalog.StatusSuccess {
		return nil, catalog.Errorf(catalog.KindDeployment, "deployment failed for project %q: operation %s finished with status %s", a.Name, res.ID, res.Status)
	}

	p, err := d.session.Project(ctx, folder, a.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "get deployed project %q", a.Name)
	}
	return p, nil
}
