package roster

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"sentinel/internal/config"
)

// Field is a logical column of a driver roster.
type Field int

const (
	FieldName Field = iota
	FieldLicense
	FieldAgent
	FieldTrips
	FieldPhone
	FieldLastActivity
	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldName:         "name",
	FieldLicense:      "license",
	FieldAgent:        "agent",
	FieldTrips:        "trips",
	FieldPhone:        "phone",
	FieldLastActivity: "last_activity",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// ColumnMap holds the ordered header synonyms for each logical field. The
// zero value has no synonyms; use DefaultColumnMap.
type ColumnMap struct {
	synonyms [fieldCount][]string
}

// DefaultColumnMap returns the built-in synonym table. The order inside each
// list only matters for documentation: resolution walks headers, not
// synonyms.
func DefaultColumnMap() ColumnMap {
	var m ColumnMap
	m.synonyms[FieldName] = []string{"Nom complet", "Nom", "Full name", "Name"}
	m.synonyms[FieldLicense] = []string{"Permis", "License", "Licence"}
	m.synonyms[FieldAgent] = []string{"Employé responsable", "Agent", "Responsible"}
	m.synonyms[FieldTrips] = []string{"Commandes terminées", "Commandes au sein", "Completed trips", "Trips"}
	m.synonyms[FieldPhone] = []string{"Numéro de téléphone", "Téléphone", "Phone"}
	m.synonyms[FieldLastActivity] = []string{"Dernière commande", "Dernière activité", "Last activity", "Last trip"}
	return m
}

// With returns a copy of m whose synonyms for field are replaced. An empty
// list keeps the existing synonyms.
func (m ColumnMap) With(field Field, synonyms ...string) ColumnMap {
	if field < 0 || field >= fieldCount || len(synonyms) == 0 {
		return m
	}
	out := m
	out.synonyms[field] = append([]string(nil), synonyms...)
	return out
}

// Synonyms returns a copy of the synonyms registered for field.
func (m ColumnMap) Synonyms(field Field) []string {
	if field < 0 || field >= fieldCount {
		return nil
	}
	return append([]string(nil), m.synonyms[field]...)
}

// Resolution maps each logical field to a header index, or -1 when no header
// matched.
type Resolution [fieldCount]int

// Index returns the header index resolved for field, or -1.
func (r Resolution) Index(field Field) int {
	if field < 0 || field >= fieldCount {
		return -1
	}
	return r[field]
}

// Resolve matches header against the synonym table. For each field the
// first header (in header order) whose folded form contains any folded
// synonym wins. A header may satisfy several fields.
func (m ColumnMap) Resolve(header []string) Resolution {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = foldKey(SanitizeHeader(h))
	}

	var res Resolution
	for field := Field(0); field < fieldCount; field++ {
		res[field] = -1
		needles := make([]string, 0, len(m.synonyms[field]))
		for _, synonym := range m.synonyms[field] {
			if key := foldKey(synonym); key != "" {
				needles = append(needles, key)
			}
		}
	headers:
		for i, h := range folded {
			for _, needle := range needles {
				if strings.Contains(h, needle) {
					res[field] = i
					break headers
				}
			}
		}
	}
	return res
}

// SanitizeHeader trims whitespace, removes quote characters, and applies
// NFC normalization so decomposed accents compare equal to composed ones.
func SanitizeHeader(header string) string {
	header = strings.TrimPrefix(header, "\ufeff")
	header = strings.NewReplacer(`"`, "", `'`, "").Replace(header)
	return norm.NFC.String(strings.TrimSpace(header))
}

func foldKey(value string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(value)))
}

// ColumnMapFromConfig applies configured synonym overrides on top of the
// defaults.
func ColumnMapFromConfig(cols config.Columns) ColumnMap {
	return DefaultColumnMap().
		With(FieldName, cols.Name...).
		With(FieldLicense, cols.License...).
		With(FieldAgent, cols.Agent...).
		With(FieldTrips, cols.Trips...).
		With(FieldPhone, cols.Phone...).
		With(FieldLastActivity, cols.LastActivity...)
}
