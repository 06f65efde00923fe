package main

import (
	"context"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/observatorium/catalogctl/pkg/catalog/sqlcatalog"
	"github.com/observatorium/catalogctl/pkg/deploy"
	"github.com/observatorium/catalogctl/pkg/extkingpin"
	"github.com/observatorium/catalogctl/pkg/plan"
	"github.com/pkg/errors"
)

type catalogFlags struct {
	endpoint      *string
	name          *string
	encryptionKey *string
	folder        *string
}

func registerCatalogFlags(cmd *extkingpin.CmdClause) *catalogFlags {
	return &catalogFlags{
		endpoint: cmd.Flag("catalog.endpoint", "Catalog store to connect to.").
			Envar("CATALOGCTL_CATALOG_ENDPOINT").String(),
		name: cmd.Flag("catalog.name", "Name of the catalog within the store.").
			Envar("CATALOGCTL_CATALOG_NAME").Default("SSISDB").String(),
		encryptionKey: cmd.Flag("catalog.encryption-key", "Key protecting sensitive variable values. Required when any parameter is sensitive.").
			Envar("CATALOGCTL_CATALOG_ENCRYPTION_KEY").String(),
		folder: cmd.Flag("folder", "Catalog folder the projects are deployed to.").
			Envar("CATALOGCTL_FOLDER").String(),
	}
}

// connect opens the catalog session. The caller closes it.
func (f *catalogFlags) connect(ctx context.Context, logger log.Logger) (*sqlcatalog.Session, error) {
	if *f.endpoint == "" {
		return nil, errors.New("--catalog.endpoint is required")
	}
	if *f.folder == "" {
		return nil, errors.New("--folder is required")
	}

	level.Info(logger).Log("msg", "connecting to catalog", "endpoint", *f.endpoint, "catalog", *f.name)
	s, err := sqlcatalog.Open(ctx, logger, sqlcatalog.Options{
		Endpoint:      *f.endpoint,
		Catalog:       *f.name,
		EncryptionKey: *f.encryptionKey,
	})
	if err != nil {
		level.Error(logger).Log("msg", "cannot connect to catalog", "err", err)
		return nil, err
	}
	return s, nil
}

func closeWithLog(logger log.Logger, s *sqlcatalog.Session) {
	if err := s.Close(); err != nil {
		level.Warn(logger).Log("msg", "closing catalog session failed", "err", err)
	}
}

func registerDeploy(app *extkingpin.App) {
	cmd := app.Command("deploy", "Deploy project artifacts and rebuild the environment of every project that ships a parameter file.")
	artifacts := cmd.Arg("artifacts", "Project artifacts to deploy, in order. A <project>.config parameter file next to an artifact triggers environment reconciliation.").Required().ExistingFiles()
	cf := registerCatalogFlags(cmd)
	createFolder := cmd.Flag("create-folder", "Create the folder if it does not exist.").
		Envar("CATALOGCTL_CREATE_FOLDER").Default("true").Bool()
	onError := cmd.Flag("parameters.on-error", "What to do when binding a parameter fails: fail-fast stops binding the project's remaining parameters, continue binds them and reports all failures.").
		Default(string(deploy.FailFast)).Enum(string(deploy.FailFast), string(deploy.Continue))
	sourceRevision := cmd.Flag("source.revision", "Log the git revision of the work tree each artifact is in.").
		Default("true").Bool()

	cmd.Run(func(ctx context.Context, logger log.Logger) error {
		s, err := cf.connect(ctx, logger)
		if err != nil {
			return err
		}
		defer closeWithLog(logger, s)

		d := deploy.New(logger, s, deploy.Options{
			Folder:         *cf.folder,
			CreateFolder:   *createFolder,
			OnError:        deploy.Strategy(*onError),
			SourceRevision: *sourceRevision,
		})
		if err := d.Run(ctx, *artifacts); err != nil {
			return errors.Wrapf(err, "deploy to folder %q", *cf.folder)
		}
		level.Info(logger).Log("msg", "all artifacts deployed", "artifacts", len(*artifacts))
		return nil
	})
}

func registerPlan(app *extkingpin.App) {
	cmd := app.Command("plan", "Print how the environment of a project would change, without deploying.")
	artifact := cmd.Arg("artifact", "Project artifact whose parameter file should be compared.").Required().String()
	cf := registerCatalogFlags(cmd)

	cmd.Run(func(ctx context.Context, logger log.Logger) error {
		s, err := cf.connect(ctx, logger)
		if err != nil {
			return err
		}
		defer closeWithLog(logger, s)

		changed, err := plan.New(logger, s).Plan(ctx, os.Stdout, *cf.folder, *artifact)
		if err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "plan finished", "changed", changed)
		return nil
	})
}
