// Package params reads the parameter declarations shipped next to a project artifact.
package params

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/pkg/errors"
)

// Ext is the extension of the parameter file that sits next to an artifact.
const Ext = ".config"

// Declaration describes how one project parameter should be configured.
type Declaration struct {
	Name        string
	DataType    catalog.DataType
	Value       string
	Sensitive   bool
	Description string
}

// ProjectName derives the project name from an artifact path: its file name without
// extension.
func ProjectName(artifactPath string) string {
	base := filepath.Base(artifactPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConfigPath returns where the parameter file for projectName is expected, that is
// <artifact directory>/<projectName>.config.
func ConfigPath(artifactPath, projectName string) string {
	return filepath.Join(filepath.Dir(artifactPath), projectName+Ext)
}

// Load reads declarations from the file at path, in file order.
func Load(path string) ([]Declaration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, catalog.Wrapf(err, catalog.KindConfigFormat, "read parameter file %v", path)
	}
	decls, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parse parameter file %v", path)
	}
	return decls, nil
}

// Parse decodes a parameter document. XML documents (the project parameter schema)
// are recognised by their leading '<'; anything else is read as YAML.
func Parse(b []byte) ([]Declaration, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, catalog.Errorf(catalog.KindConfigFormat, "empty parameter document")
	}

	var (
		decls []Declaration
		err   error
	)
	if trimmed[0] == '<' {
		decls, err = parseXML(trimmed)
	} else {
		decls, err = parseYAML(trimmed)
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	for _, d := range decls {
		if d.Name == "" {
			return nil, catalog.Errorf(catalog.KindConfigFormat, "parameter without a name")
		}
		if _, ok := seen[d.Name]; ok {
			return nil, catalog.Errorf(catalog.KindConfigFormat, "parameter %q declared more than once", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return decls, nil
}

// parseSensitive reads a Sensitive property: any non-zero integer is true.
func parseSensitive(name, raw string) (bool, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false, catalog.Wrapf(err, catalog.KindConfigFormat, "parameter %q: sensitive flag must be an integer", name)
	}
	return n != 0, nil
}
