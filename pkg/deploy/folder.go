package deploy

import (
	"context"

	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog"
)

// ResolveFolder returns the target folder, creating it when it is missing and
// creation is allowed. An existing folder is never modified.
func (d *Deployer) ResolveFolder(ctx context.Context) (*catalog.Folder, error) {
	name := d.opts.Folder
	f, err := d.session.Folder(ctx, name)
	if err == nil {
		return f, nil
	}
	if !catalog.IsKind(err, catalog.KindNotFound) {
		return nil, err
	}
	if !d.opts.CreateFolder {
		return nil, catalog.Errorf(catalog.KindNotFound, "the folder %q was not found; allow folder creation to create it", name)
	}

	level.Info(d.logger).Log("msg", "creating folder", "folder", name)
	return d.session.CreateFolder(ctx, name, "")
}
