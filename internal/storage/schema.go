package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stormlab/shipsdb/pkg/types"
)

// Parameter and table names are interpolated into DDL, so they are
// restricted to the character set the raw files actually use.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// BuildSchema derives the diagnostics table schema from the first block's
// parameter-name ordering, applying the exclusion list. It runs exactly
// once per ingestion; a changed parameter set in later blocks is not
// detected or reconciled.
func BuildSchema(table string, paramNames []string, exclude types.Exclusion) (types.Schema, error) {
	if !identPattern.MatchString(table) {
		return types.Schema{}, fmt.Errorf("invalid table name %q", table)
	}
	seen := make(map[string]struct{}, len(paramNames))
	retained := make([]string, 0, len(paramNames))
	for _, name := range paramNames {
		if exclude.Excluded(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if !identPattern.MatchString(name) {
			return types.Schema{}, fmt.Errorf("invalid parameter name %q", name)
		}
		seen[name] = struct{}{}
		retained = append(retained, name)
	}
	return types.Schema{Table: table, Params: retained}, nil
}

// createTableSQL renders the table-creation statement: the identifying
// columns followed by one integer column per retained parameter, stored as
// in the raw file.
func createTableSQL(s types.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(s.Table)
	b.WriteString(" (ATCF_ID CHAR(8), TIME DATETIME")
	for _, p := range s.Params {
		b.WriteString(", ")
		b.WriteString(p)
		b.WriteString(" INT")
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(s types.Schema) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.Params)+2), ", ")
	return "INSERT INTO " + s.Table + " VALUES (" + placeholders + ")"
}
