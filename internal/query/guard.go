package query

import (
	"strings"
	"unicode"
)

// writeKeywords may not appear as bare words anywhere in a read-only
// statement. Postgres allows data-modifying CTEs under WITH.
var writeKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "merge": true, "copy": true,
	"create": true, "drop": true, "alter": true, "truncate": true,
	"attach": true, "detach": true, "install": true, "load": true,
	"pragma": true, "call": true, "export": true, "import": true,
	"vacuum": true, "checkpoint": true, "grant": true, "revoke": true,
}

// fileFunctions are DuckDB table functions that read from the host
// filesystem or network. Any read_* call is rejected as well.
var fileFunctions = map[string]bool{
	"glob": true, "parquet_scan": true, "parquet_metadata": true,
	"parquet_schema": true, "parquet_file_metadata": true,
	"parquet_kv_metadata": true, "sniff_csv": true, "query_table": true,
}

// fromFunctions take FROM as an argument separator, so a literal after FROM
// inside their parentheses is a value and not a table.
var fromFunctions = map[string]bool{
	"extract": true, "substring": true, "trim": true, "overlay": true, "position": true,
}

// CheckReadOnly accepts a single SELECT or WITH statement. Semicolons inside
// string literals, quoted identifiers and comments are ignored; one trailing
// semicolon is allowed. Write keywords, file-reading table functions and
// string literals used as a FROM or JOIN source are rejected.
func CheckReadOnly(sqlText string) error {
	body := stripComments(sqlText)
	if !singleStatement(body) {
		return ErrStatementNotAllowed
	}
	keyword := firstKeyword(body)
	if keyword != "select" && keyword != "with" {
		return ErrStatementNotAllowed
	}
	if !readOnlyWords(body) {
		return ErrStatementNotAllowed
	}
	return nil
}

// readOnlyWords scans the bare words outside quotes.
func readOnlyWords(sqlText string) bool {
	runes := []rune(sqlText)
	var quote rune
	previous := ""
	// callers holds the word before each open parenthesis.
	var callers []string
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		if r == '\'' || r == '"' {
			if r == '\'' && previous == "join" {
				return false
			}
			if r == '\'' && previous == "from" && (len(callers) == 0 || !fromFunctions[callers[len(callers)-1]]) {
				return false
			}
			quote = r
			previous = ""
			continue
		}
		if !isWordRune(r) {
			switch r {
			case '(':
				callers = append(callers, previous)
			case ')':
				if len(callers) > 0 {
					callers = callers[:len(callers)-1]
				}
			}
			if !unicode.IsSpace(r) {
				previous = ""
			}
			continue
		}
		start := i
		for i+1 < len(runes) && isWordRune(runes[i+1]) {
			i++
		}
		word := strings.ToLower(string(runes[start : i+1]))
		if writeKeywords[word] {
			return false
		}
		if nextNonSpace(runes, i+1) == '(' && (fileFunctions[word] || strings.HasPrefix(word, "read_")) {
			return false
		}
		previous = word
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func nextNonSpace(runes []rune, from int) rune {
	for _, r := range runes[from:] {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}

// StripTrailingSemicolons removes any run of trailing semicolons.
func StripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

func firstKeyword(sqlText string) string {
	trimmed := strings.TrimLeftFunc(sqlText, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end < 0 {
		end = len(trimmed)
	}
	return strings.ToLower(trimmed[:end])
}

func singleStatement(sqlText string) bool {
	var quote rune
	sawTerminator := false
	for _, r := range sqlText {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			if sawTerminator {
				return false
			}
			quote = r
		case r == ';':
			sawTerminator = true
		case sawTerminator && !unicode.IsSpace(r):
			return false
		}
	}
	return quote == 0
}

func stripComments(sqlText string) string {
	var out strings.Builder
	runes := []rune(sqlText)
	var quote rune
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			out.WriteRune(r)
			if r == quote {
				quote = 0
			}
			continue
		}
		if r == '\'' || r == '"' {
			quote = r
			out.WriteRune(r)
			continue
		}
		if r == '-' && i+1 < len(runes) && runes[i+1] == '-' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			out.WriteRune('\n')
			continue
		}
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++
			out.WriteRune(' ')
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
