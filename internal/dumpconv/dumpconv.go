// Package dumpconv converts phpMyAdmin-style MySQL dumps into SQLite
// databases. MySQL-specific syntax is rewritten on the fly; statements that
// have no SQLite equivalent are skipped.
package dumpconv

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	_ "modernc.org/sqlite"
)

var ignoredPrefixes = []string{
	"SET ",
	"LOCK TABLES",
	"UNLOCK TABLES",
	"DELIMITER",
	"START TRANSACTION",
	"COMMIT",
	"ROLLBACK",
	"CREATE DATABASE",
	"DROP DATABASE",
}

var systemSchemas = map[string]bool{
	"information_schema": true,
	"mysql":              true,
	"performance_schema": true,
	"sys":                true,
}

// Options controls a dump conversion.
type Options struct {
	// DumpPath is the .sql dump file to read.
	DumpPath string
	// SQLitePath is the output database.
	SQLitePath string
	// IncludeSchemas limits the import to the named schemas. Nil means all.
	IncludeSchemas map[string]bool
	// IncludeSystemSchemas also imports mysql/information_schema and friends.
	IncludeSystemSchemas bool
	// Encoding is the dump file encoding, "latin1" or "utf-8".
	Encoding string
}

// Result reports how many statements ran versus were dropped.
type Result struct {
	Executed int
	Skipped  int
}

// splitSQLStatements splits a script on semicolons, respecting single
// quotes, double quotes, backtick identifiers and backslash escapes.
func splitSQLStatements(text string) []string {
	var statements []string
	var current strings.Builder

	var inSingle, inDouble, inBacktick, escape bool

	for _, ch := range text {
		current.WriteRune(ch)

		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if inSingle {
			if ch == '\'' {
				inSingle = false
			}
			continue
		}
		if inDouble {
			if ch == '"' {
				inDouble = false
			}
			continue
		}
		if inBacktick {
			if ch == '`' {
				inBacktick = false
			}
			continue
		}

		switch ch {
		case '\'':
			inSingle = true
		case '"':
			inDouble = true
		case '`':
			inBacktick = true
		case ';':
			if s := strings.TrimSpace(current.String()); s != "" {
				statements = append(statements, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		statements = append(statements, s)
	}
	return statements
}

// stripCommentLines drops full-line MySQL comments and versioned directives.
func stripCommentLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			kept = append(kept, line)
			continue
		}
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		if strings.HasPrefix(stripped, "#") {
			continue
		}
		if strings.HasPrefix(stripped, "/*!") && strings.HasSuffix(stripped, "*/;") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

var (
	reUnsigned = regexp.MustCompile(`(?i)\bunsigned\b`)
	reZerofill = regexp.MustCompile(`(?i)\bzerofill\b`)
	reEnum     = regexp.MustCompile(`(?i)\benum\s*\((?:[^)(]|\([^)(]*\))*\)`)
	reSet      = regexp.MustCompile(`(?i)\bset\s*\((?:[^)(]|\([^)(]*\))*\)`)
	reIntSized = regexp.MustCompile(`(?i)\b(?:tinyint|smallint|mediumint|int|integer|bigint)\s*\(\s*\d+\s*\)`)
	reDouble   = regexp.MustCompile(`(?i)\bdouble\b`)
	reFloat    = regexp.MustCompile(`(?i)\bfloat\b`)

	reAutoIncAssign = regexp.MustCompile(`(?i)\bAUTO_INCREMENT\s*=\s*\d+\b`)
	reAutoIncAttr   = regexp.MustCompile(`(?i)\s+AUTO_INCREMENT\b`)
	reUniqueKey     = regexp.MustCompile(`(?i)^UNIQUE\s+KEY\s+"[^"]+"\s*\((.+)\)\s*,?$`)
	rePlainKey      = regexp.MustCompile(`(?i)^KEY\s+"[^"]+"\s*\((.+)\)\s*,?$`)
	reTableOptions  = regexp.MustCompile(`(?is)\)\s*(?:ENGINE|TYPE|DEFAULT|AUTO_INCREMENT|CHARSET|COLLATE)\b.*$`)
	reTrailingComma = regexp.MustCompile(`(?s),\s*\)\s*$`)
	reUseDatabase   = regexp.MustCompile("(?i)^USE\\s+[`\"]?([^`\";\\s]+)[`\"]?\\s*;?$")
)

// normalizeTypes maps common MySQL data types and modifiers to SQLite
// friendly variants.
func normalizeTypes(stmt string) string {
	stmt = reUnsigned.ReplaceAllString(stmt, "")
	stmt = reZerofill.ReplaceAllString(stmt, "")

	stmt = reEnum.ReplaceAllString(stmt, "TEXT")
	stmt = reSet.ReplaceAllString(stmt, "TEXT")

	stmt = reIntSized.ReplaceAllString(stmt, "INTEGER")

	stmt = reDouble.ReplaceAllString(stmt, "REAL")
	stmt = reFloat.ReplaceAllString(stmt, "REAL")

	return stmt
}

// convertCreateTable rewrites a MySQL CREATE TABLE into SQLite-compatible
// SQL: backticks become double quotes, KEY index lines are dropped, UNIQUE
// KEY lines become table-level UNIQUE constraints, and trailing table
// options are removed.
func convertCreateTable(stmt string) string {
	stmt = strings.ReplaceAll(stmt, "`", `"`)
	stmt = normalizeTypes(stmt)

	stmt = reAutoIncAssign.ReplaceAllString(stmt, "")
	stmt = reAutoIncAttr.ReplaceAllString(stmt, "")

	var converted []string
	for _, line := range strings.Split(stmt, "\n") {
		stripped := strings.TrimSpace(line)

		if m := reUniqueKey.FindStringSubmatch(stripped); m != nil {
			suffix := ""
			if strings.HasSuffix(stripped, ",") {
				suffix = ","
			}
			converted = append(converted, "  UNIQUE ("+m[1]+")"+suffix)
			continue
		}
		if rePlainKey.MatchString(stripped) {
			continue
		}
		converted = append(converted, line)
	}
	stmt = strings.Join(converted, "\n")

	stmt = reTableOptions.ReplaceAllString(stmt, ")")
	stmt = reTrailingComma.ReplaceAllString(stmt, ")")
	return stmt
}

// convertStatement returns the SQLite form of a dump statement, or "" when
// the statement should be skipped.
func convertStatement(stmt string) string {
	stripped := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(stmt), ";"))
	upper := strings.ToUpper(stripped)

	if strings.HasPrefix(upper, "/*!") {
		return ""
	}
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return ""
		}
	}
	if strings.HasPrefix(upper, "USE ") {
		return stripped
	}
	if strings.HasPrefix(upper, "CREATE TABLE") || strings.HasPrefix(upper, "CREATE TEMPORARY TABLE") {
		return convertCreateTable(stripped)
	}
	if strings.HasPrefix(upper, "INSERT INTO") {
		return strings.ReplaceAll(stripped, "`", `"`)
	}
	if strings.HasPrefix(upper, "DROP TABLE") {
		return strings.ReplaceAll(stripped, "`", `"`)
	}
	if strings.HasPrefix(upper, "ALTER TABLE") {
		return ""
	}
	return strings.ReplaceAll(stripped, "`", `"`)
}

// extractUseDatabase returns the schema named by a USE statement, or "".
func extractUseDatabase(stmt string) string {
	if m := reUseDatabase.FindStringSubmatch(strings.TrimSpace(stmt)); m != nil {
		return m[1]
	}
	return ""
}

func readDump(path, encoding string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read dump: %w", err)
	}
	switch strings.ToLower(encoding) {
	case "", "latin1", "iso-8859-1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode dump as latin1: %w", err)
		}
		return string(decoded), nil
	case "utf-8", "utf8":
		decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode dump as utf-8: %w", err)
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ImportDump converts the dump at opts.DumpPath into the SQLite database at
// opts.SQLitePath. All statements run in a single transaction; any failure
// rolls the whole import back.
func ImportDump(ctx context.Context, opts Options) (*Result, error) {
	text, err := readDump(opts.DumpPath, opts.Encoding)
	if err != nil {
		return nil, err
	}
	statements := splitSQLStatements(stripCommentLines(text))

	conn, err := sql.Open("sqlite", opts.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	defer conn.Close()

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = OFF;",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res := &Result{}
	activeSchema := ""

	for i, statement := range statements {
		if db := extractUseDatabase(statement); db != "" {
			activeSchema = db
			res.Skipped++
			continue
		}

		converted := convertStatement(statement)
		if converted == "" {
			res.Skipped++
			continue
		}

		if activeSchema != "" && opts.IncludeSchemas != nil && !opts.IncludeSchemas[activeSchema] {
			res.Skipped++
			continue
		}
		if activeSchema != "" && !opts.IncludeSystemSchemas && systemSchemas[activeSchema] {
			res.Skipped++
			continue
		}

		if _, err := tx.ExecContext(ctx, converted); err != nil {
			return nil, fmt.Errorf("statement #%d (schema %q): %w\n%s", i+1, activeSchema, err, converted)
		}
		res.Executed++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return res, nil
}
