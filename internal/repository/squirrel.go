package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// psql is the shared Squirrel statement builder configured for PostgreSQL dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into an ILIKE pattern matching s literally anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
