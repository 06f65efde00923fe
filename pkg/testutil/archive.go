package testutil

import (
	"archive/zip"
	"bytes"
	"testing"
)

const projectManifest = `<?xml version="1.0"?>
<SSIS:Project SSIS:ProtectionLevel="DontSaveSensitive" xmlns:SSIS="www.microsoft.com/SqlServer/SSIS" />
`

// ProjectArchive returns a minimal project artifact. The parameter document is left
// out when paramsDoc is empty.
func ProjectArchive(tb testing.TB, paramsDoc string) []byte {
	tb.Helper()

	buf := bytes.Buffer{}
	zw := zip.NewWriter(&buf)
	files := [][2]string{{"@Project.manifest", projectManifest}}
	if paramsDoc != "" {
		files = append(files, [2]string{"Project.params", paramsDoc})
	}
	for _, f := range files {
		w, err := zw.Create(f[0])
		Ok(tb, err)
		_, err = w.Write([]byte(f[1]))
		Ok(tb, err)
	}
	Ok(tb, zw.Close())
	return buf.Bytes()
}
