// Package deploy deploys project artifacts into a catalog and reconciles the
// environment each project draws its parameter values from.
//
// Every step is idempotent: folders are created only when missing, projects are
// overwritten in place, and environments, variables and references are dropped and
// rebuilt from the parameter file on every run rather than patched.
package deploy

import (
	"os"

	"github.com/go-kit/kit/log"
	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/pkg/errors"
)

// Strategy decides what happens when binding one declared parameter fails.
type Strategy string

const (
	// FailFast stops binding the remaining parameters of the project.
	FailFast Strategy = "fail-fast"
	// Continue binds the remaining parameters and reports all failures at the end.
	Continue Strategy = "continue"
)

type Options struct {
	// Folder is the catalog folder all artifacts are deployed to.
	Folder string
	// CreateFolder allows creating Folder when it does not exist.
	CreateFolder bool
	OnError      Strategy
	// SourceRevision logs the git revision of the work tree an artifact lives in.
	SourceRevision bool
}

// Deployer runs deployments against a single catalog session. It is not safe for
// concurrent use; catalog mutations are applied strictly in order.
type Deployer struct {
	logger  log.Logger
	session catalog.Session
	opts    Options
}

func New(logger log.Logger, session catalog.Session, opts Options) *Deployer {
	if opts.OnError == "" {
		opts.OnError = FailFast
	}
	return &Deployer{logger: logger, session: session, opts: opts}
}

// Artifact is a project artifact read from disk.
type Artifact struct {
	Path  string
	Name  string
	Bytes []byte
}

// ReadArtifact reads the artifact at path. The project name is the file name without
// extension.
func ReadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read artifact %v", path)
	}
	return &Artifact{Path: path, Name: params.ProjectName(path), Bytes: b}, nil
}
