package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ExportHeader mimics the column layout of an upstream roster export.
var ExportHeader = []string{"Nom complet", "Numéro de téléphone", "Permis de conduire", "Employé responsable", "Commandes terminées", "Dernière commande"}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteExport writes a semicolon-separated export with the given header and
// rows and returns its path. Cells must not contain the delimiter.
func WriteExport(t testing.TB, dir, name string, header []string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(header, ";"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, ";"))
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	WriteFile(t, path, b.String())
	return path
}
