package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"sentinel/internal/config"
	"sentinel/internal/roster"
)

func exportTable() *roster.Table {
	return &roster.Table{
		Header: []string{` "Nom complet" `, "Numéro de téléphone", "Permis de conduire", "Employé responsable", "Commandes terminées", "Dernière commande"},
		Rows: [][]string{
			{"Aly Fall", "+221 77 000 00 01", " P1 ", "Coumba Ba", "3", "2026-10-01"},
			{"Binta Sow", "221770000002", "P2", "", "12.0", "05/10/2026 14:30"},
			{"Cheikh Ndiaye", "", "p3", "Adama Mbaye", "n/a", "hier"},
		},
	}
}

func TestNormalizeMapsExportColumns(t *testing.T) {
	records := roster.Normalize(exportTable(), "SY")
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "Aly Fall", first.FullName)
	assert.Equal(t, "P1", first.LicenseID)
	assert.Equal(t, "Coumba Ba", first.ResponsibleAgent)
	assert.Equal(t, 3, first.CompletedTrips)
	assert.Equal(t, "221 77 000 00 01", first.Phone)
	assert.Equal(t, roster.Branch("SY"), first.Branch)
	require.NotNil(t, first.LastActivityAt)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *first.LastActivityAt)
	assert.Nil(t, first.RegisteredAt)

	second := records[1]
	assert.Equal(t, roster.DefaultAgent, second.ResponsibleAgent, "blank agent cell takes the default")
	assert.Equal(t, 12, second.CompletedTrips)
	require.NotNil(t, second.LastActivityAt)
	assert.Equal(t, time.Date(2026, 10, 5, 14, 30, 0, 0, time.UTC), *second.LastActivityAt)

	third := records[2]
	assert.Equal(t, "p3", third.LicenseID, "license ids keep their case")
	assert.Equal(t, 0, third.CompletedTrips)
	assert.Nil(t, third.LastActivityAt)
}

func TestNormalizeMissingTripColumnDefaultsToZero(t *testing.T) {
	table := &roster.Table{
		Header: []string{"Nom", "Permis"},
		Rows: [][]string{
			{"Aly", "P1"},
			{"Binta", "P2"},
		},
	}
	records := roster.Normalize(table, "NDONGO")
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, 0, record.CompletedTrips)
		assert.Equal(t, roster.DefaultAgent, record.ResponsibleAgent)
		assert.Empty(t, record.Phone)
		assert.Nil(t, record.LastActivityAt)
	}
}

func TestNormalizeWithoutRecognisedColumnsUsesDefaults(t *testing.T) {
	table := &roster.Table{
		Header: []string{"col1", "col2"},
		Rows:   [][]string{{"x", "y"}},
	}
	records := roster.Normalize(table, "SY")
	require.Len(t, records, 1)
	assert.Equal(t, roster.DefaultName, records[0].FullName)
	assert.Equal(t, roster.DefaultLicense, records[0].LicenseID)
	assert.Equal(t, roster.DefaultAgent, records[0].ResponsibleAgent)
}

func TestNormalizeEmptyInputReturnsEmptySlice(t *testing.T) {
	for name, table := range map[string]*roster.Table{
		"nil":         nil,
		"header only": {Header: []string{"Permis"}},
	} {
		t.Run(name, func(t *testing.T) {
			records := roster.Normalize(table, "SY")
			require.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestNormalizeShortRowsYieldBlankCells(t *testing.T) {
	table := &roster.Table{
		Header: []string{"Nom", "Permis", "Commandes terminées"},
		Rows:   [][]string{{"Aly"}},
	}
	records := roster.Normalize(table, "SY")
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].LicenseID)
	assert.Equal(t, 0, records[0].CompletedTrips)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	table := exportTable()
	first := roster.Normalize(table, "SY")
	second := roster.Normalize(table, "SY")
	assert.Equal(t, first, second)
	assert.Equal(t, exportTable(), table, "input table must not be mutated")
}

func TestResolveFirstMatchingHeaderWins(t *testing.T) {
	header := []string{"Agent de recrutement", "Employé responsable", "Nom"}
	res := roster.DefaultColumnMap().Resolve(header)
	assert.Equal(t, 0, res.Index(roster.FieldAgent))
	assert.Equal(t, 2, res.Index(roster.FieldName))
	assert.Equal(t, -1, res.Index(roster.FieldLicense))
}

func TestResolveIsCaseAndAccentFormInsensitive(t *testing.T) {
	decomposed := norm.NFD.String("NUMÉRO DE TÉLÉPHONE")
	res := roster.DefaultColumnMap().Resolve([]string{"PERMIS", decomposed, "'commandes terminées'"})
	assert.Equal(t, 0, res.Index(roster.FieldLicense))
	assert.Equal(t, 1, res.Index(roster.FieldPhone))
	assert.Equal(t, 2, res.Index(roster.FieldTrips))
}

func TestColumnMapFromConfigOverridesSynonyms(t *testing.T) {
	m := roster.ColumnMapFromConfig(config.Columns{License: []string{"DL number"}})
	assert.Equal(t, []string{"DL number"}, m.Synonyms(roster.FieldLicense))
	assert.Equal(t, roster.DefaultColumnMap().Synonyms(roster.FieldName), m.Synonyms(roster.FieldName))

	res := m.Resolve([]string{"Permis", "DL Number"})
	assert.Equal(t, 1, res.Index(roster.FieldLicense))
}

func TestParseTrips(t *testing.T) {
	tests := map[string]int{
		"":      0,
		"7":     7,
		" 42 ":  42,
		"12.9":  12,
		"abc":   0,
		"NaN":   0,
		"+Inf":  0,
		"1e300": 0,
		"-3":    -3,
	}
	for input, want := range tests {
		assert.Equal(t, want, roster.ParseTrips(input), "input %q", input)
	}
}

func TestParseDate(t *testing.T) {
	assert.Nil(t, roster.ParseDate(""))
	assert.Nil(t, roster.ParseDate("not a date"))

	got := roster.ParseDate("2026-10-19T08:15:00+02:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 10, 19, 6, 15, 0, 0, time.UTC), *got)

	got = roster.ParseDate("19.10.2026")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), *got)
}

func TestBranchesParseAndOther(t *testing.T) {
	branches := roster.NewBranches("sy", "Ndongo")
	b, err := branches.Parse(" ndongo ")
	require.NoError(t, err)
	assert.Equal(t, roster.Branch("NDONGO"), b)
	assert.Equal(t, roster.Branch("SY"), branches.Other(b))
	assert.True(t, branches.Valid("SY"))

	_, err = branches.Parse("third")
	assert.Error(t, err)
}
