package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/observatorium/catalogctl/pkg/catalog"
	"github.com/observatorium/catalogctl/pkg/testutil"
)

const xmlParams = `<?xml version="1.0"?>
<SSIS:Parameters xmlns:SSIS="www.microsoft.com/SqlServer/SSIS">
  <SSIS:Parameter SSIS:Name="ServerName">
    <SSIS:Properties>
      <SSIS:Property SSIS:Name="ID">{9d2a7d8e-54b0-4c3c-9f31-0a4f3c1f0c11}</SSIS:Property>
      <SSIS:Property SSIS:Name="DataType">18</SSIS:Property>
      <SSIS:Property SSIS:Name="Value">db01</SSIS:Property>
      <SSIS:Property SSIS:Name="Sensitive">0</SSIS:Property>
      <SSIS:Property SSIS:Name="Description">Target server.</SSIS:Property>
    </SSIS:Properties>
  </SSIS:Parameter>
  <SSIS:Parameter SSIS:Name="BatchSize">
    <SSIS:Properties>
      <SSIS:Property SSIS:Name="DataType">9</SSIS:Property>
      <SSIS:Property SSIS:Name="Value">500</SSIS:Property>
      <SSIS:Property SSIS:Name="Sensitive">0</SSIS:Property>
    </SSIS:Properties>
  </SSIS:Parameter>
  <SSIS:Parameter SSIS:Name="Password">
    <SSIS:Properties>
      <SSIS:Property SSIS:Name="DataType">18</SSIS:Property>
      <SSIS:Property SSIS:Name="Value">s3cret</SSIS:Property>
      <SSIS:Property SSIS:Name="Sensitive">1</SSIS:Property>
      <SSIS:Property SSIS:Name="Description"></SSIS:Property>
    </SSIS:Properties>
  </SSIS:Parameter>
</SSIS:Parameters>
`

func TestParseXML(t *testing.T) {
	decls, err := Parse([]byte(xmlParams))
	testutil.Ok(t, err)
	testutil.Equals(t, []Declaration{
		{Name: "ServerName", DataType: catalog.String, Value: "db01", Description: "Target server."},
		{Name: "BatchSize", DataType: catalog.Int32, Value: "500"},
		{Name: "Password", DataType: catalog.String, Value: "s3cret", Sensitive: true},
	}, decls)
}

func TestParseYAML(t *testing.T) {
	decls, err := Parse([]byte(`
parameters:
  - name: Enabled
    dataType: 3
    value: "true"
    sensitive: 0
    description: Toggle.
  - name: StartDate
    dataType: 16
    value: "2020-01-31"
    sensitive: 1
`))
	testutil.Ok(t, err)
	testutil.Equals(t, []Declaration{
		{Name: "Enabled", DataType: catalog.Boolean, Value: "true", Description: "Toggle."},
		{Name: "StartDate", DataType: catalog.DateTime, Value: "2020-01-31", Sensitive: true},
	}, decls)
}

func TestParseSensitiveFlag(t *testing.T) {
	decls, err := Parse([]byte(`<Parameters>
  <Parameter Name="Absent"><Properties><Property Name="DataType">18</Property></Properties></Parameter>
  <Parameter Name="Zero"><Properties><Property Name="DataType">18</Property><Property Name="Sensitive"> 0 </Property></Properties></Parameter>
  <Parameter Name="Two"><Properties><Property Name="DataType">18</Property><Property Name="Sensitive">2</Property></Properties></Parameter>
  <Parameter Name="Negative"><Properties><Property Name="DataType">18</Property><Property Name="Sensitive">-1</Property></Properties></Parameter>
</Parameters>`))
	testutil.Ok(t, err)
	testutil.Equals(t, []Declaration{
		{Name: "Absent", DataType: catalog.String},
		{Name: "Zero", DataType: catalog.String},
		{Name: "Two", DataType: catalog.String, Sensitive: true},
		{Name: "Negative", DataType: catalog.String, Sensitive: true},
	}, decls)

	decls, err = Parse([]byte("parameters:\n  - {name: A, dataType: 18, sensitive: 2}\n  - {name: B, dataType: 18}\n"))
	testutil.Ok(t, err)
	testutil.Equals(t, []Declaration{
		{Name: "A", DataType: catalog.String, Sensitive: true},
		{Name: "B", DataType: catalog.String},
	}, decls)
}

func TestParseInvalid(t *testing.T) {
	for _, tcase := range []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: "   \n"},
		{name: "broken XML", doc: "<SSIS:Parameters><SSIS:Parameter>"},
		{name: "wrong root", doc: "<Project></Project>"},
		{name: "missing data type", doc: `<Parameters><Parameter Name="A"><Properties><Property Name="Sensitive">0</Property></Properties></Parameter></Parameters>`},
		{name: "non numeric data type", doc: `<Parameters><Parameter Name="A"><Properties><Property Name="DataType">String</Property><Property Name="Sensitive">0</Property></Properties></Parameter></Parameters>`},
		{name: "bad sensitive flag", doc: `<Parameters><Parameter Name="A"><Properties><Property Name="DataType">18</Property><Property Name="Sensitive">yes</Property></Properties></Parameter></Parameters>`},
		{name: "no name", doc: `<Parameters><Parameter><Properties><Property Name="DataType">18</Property><Property Name="Sensitive">0</Property></Properties></Parameter></Parameters>`},
		{name: "duplicate", doc: "parameters:\n  - {name: A, dataType: 18, value: x}\n  - {name: A, dataType: 18, value: y}\n"},
		{name: "YAML without parameters", doc: "something: else\n"},
		{name: "YAML without data type", doc: "parameters:\n  - {name: A, value: x}\n"},
		{name: "YAML non numeric sensitive flag", doc: "parameters:\n  - {name: A, dataType: 18, value: x, sensitive: yes}\n"},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			_, err := Parse([]byte(tcase.doc))
			testutil.NotOk(t, err)
			testutil.Assert(t, catalog.IsKind(err, catalog.KindConfigFormat), "expected config format error, got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(filepath.Join(dir, "TestSsisProject.ispac"), "TestSsisProject")
	testutil.Equals(t, filepath.Join(dir, "TestSsisProject.config"), path)
	testutil.Equals(t, "TestSsisProject", ProjectName(filepath.Join(dir, "TestSsisProject.ispac")))
	testutil.Equals(t, "My.Project", ProjectName("/builds/My.Project.ispac"))

	_, err := Load(path)
	testutil.NotOk(t, err)
	testutil.Assert(t, catalog.IsKind(err, catalog.KindConfigFormat), "missing file should be a config format error, got %v", err)

	testutil.Ok(t, os.WriteFile(path, []byte(xmlParams), 0o600))
	decls, err := Load(path)
	testutil.Ok(t, err)
	testutil.Equals(t, 3, len(decls))
	testutil.Equals(t, "ServerName", decls[0].Name)
	testutil.Equals(t, "Password", decls[2].Name)
}
