package params

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/observatorium/catalogctl/pkg/catalog"
)

// xmlDocument is the parsable part of a project parameter document. Element and
// attribute names match in any namespace, usually the SSIS one.
type xmlDocument struct {
	XMLName    xml.Name `xml:"Parameters"`
	Parameters []struct {
		Name       string `xml:"Name,attr"`
		Properties []struct {
			Name  string `xml:"Name,attr"`
			Value string `xml:",chardata"`
		} `xml:"Properties>Property"`
	} `xml:"Parameter"`
}

func parseXML(b []byte) ([]Declaration, error) {
	doc := xmlDocument{}
	if err := xml.Unmarshal(b, &doc); err != nil {
		return nil, catalog.Wrapf(err, catalog.KindConfigFormat, "unmarshal XML parameters")
	}

	decls := make([]Declaration, 0, len(doc.Parameters))
	for _, p := range doc.Parameters {
		props := make(map[string]string, len(p.Properties))
		for _, prop := range p.Properties {
			props[prop.Name] = prop.Value
		}

		rawType, ok := props["DataType"]
		if !ok {
			return nil, catalog.Errorf(catalog.KindConfigFormat, "parameter %q: missing DataType property", p.Name)
		}
		code, err := strconv.Atoi(strings.TrimSpace(rawType))
		if err != nil {
			return nil, catalog.Wrapf(err, catalog.KindConfigFormat, "parameter %q: DataType", p.Name)
		}
		sensitive := false
		if raw, ok := props["Sensitive"]; ok {
			if sensitive, err = parseSensitive(p.Name, raw); err != nil {
				return nil, err
			}
		}

		decls = append(decls, Declaration{
			Name:        p.Name,
			DataType:    catalog.DataType(code),
			Value:       props["Value"],
			Sensitive:   sensitive,
			Description: props["Description"],
		})
	}
	return decls, nil
}
