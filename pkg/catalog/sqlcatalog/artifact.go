package sqlcatalog

import (
	"archive/zip"
	"bytes"
	"io"

	"github.com/observatorium/catalogctl/pkg/params"
	"github.com/pkg/errors"
)

const (
	manifestEntry = "@Project.manifest"
	paramsEntry   = "Project.params"
)

// readProjectParameters returns the parameters a project artifact defines. The
// artifact must be a zip archive carrying a project manifest; the parameter document
// is optional.
func readProjectParameters(artifact []byte) ([]params.Declaration, error) {
	zr, err := zip.NewReader(bytes.NewReader(artifact), int64(len(artifact)))
	if err != nil {
		return nil, errors.Wrap(err, "open project archive")
	}

	var manifest, paramsFile *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case manifestEntry:
			manifest = f
		case paramsEntry:
			paramsFile = f
		}
	}
	if manifest == nil {
		return nil, errors.Errorf("project archive has no %s", manifestEntry)
	}
	if paramsFile == nil {
		return nil, nil
	}

	rc, err := paramsFile.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", paramsEntry)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", paramsEntry)
	}
	decls, err := params.Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", paramsEntry)
	}
	return decls, nil
}
