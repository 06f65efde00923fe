package params

import (
	"github.com/observatorium/catalogctl/pkg/catalog"
	"gopkg.in/yaml.v3"
)

// yamlDocument represents the YAML form of a parameter file:
//
//	parameters:
//	  - name: ServerName
//	    dataType: 18
//	    value: "db01"
//	    sensitive: 0
//	    description: Target server.
type yamlDocument struct {
	Parameters []struct {
		Name        string `yaml:"name"`
		DataType    *int   `yaml:"dataType"`
		Value       string `yaml:"value"`
		Sensitive   int    `yaml:"sensitive"`
		Description string `yaml:"description"`
	} `yaml:"parameters"`
}

func parseYAML(b []byte) ([]Declaration, error) {
	doc := yamlDocument{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, catalog.Wrapf(err, catalog.KindConfigFormat, "unmarshal YAML parameters")
	}
	if doc.Parameters == nil {
		return nil, catalog.Errorf(catalog.KindConfigFormat, "no parameters section")
	}

	decls := make([]Declaration, 0, len(doc.Parameters))
	for _, p := range doc.Parameters {
		if p.DataType == nil {
			return nil, catalog.Errorf(catalog.KindConfigFormat, "parameter %q: missing dataType", p.Name)
		}
		decls = append(decls, Declaration{
			Name:        p.Name,
			DataType:    catalog.DataType(*p.DataType),
			Value:       p.Value,
			Sensitive:   p.Sensitive != 0,
			Description: p.Description,
		})
	}
	return decls, nil
}
