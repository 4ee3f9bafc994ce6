package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/srdex/internal/db"
	"github.com/kailas-cloud/srdex/internal/domain/filter"
)

// SearchJSON runs a filtered FT.SEARCH over a JSON index and returns each
// hit's root document. Text conditions are substring matches: the query
// narrows candidates with infix wildcards and each hit is then checked
// against the returned attribute value.
func (s *Store) SearchJSON(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = db.DefaultSearchLimit
	}

	queryStr := buildFilter(q.Filters)
	if queryStr == "" {
		queryStr = "*"
	}

	texts := textConditions(q.Filters)
	returned := []string{"$"}
	for _, c := range texts {
		returned = append(returned, c.Field())
	}

	args := []string{q.IndexName, queryStr, "RETURN", strconv.Itoa(len(returned))}
	args = append(args, returned...)
	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, "ASC")
	}
	args = append(args, "LIMIT", "0", strconv.Itoa(limit), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	result, err := parseJSONResult(raw)
	if err != nil {
		return nil, err
	}
	if len(texts) > 0 {
		keepSubstringMatches(result, texts)
	}
	return result, nil
}

func textConditions(expr filter.Expression) []filter.Condition {
	var out []filter.Condition
	for _, c := range expr.Conditions() {
		if c.Operator() == filter.OpText {
			out = append(out, c)
		}
	}
	return out
}

// keepSubstringMatches drops hits whose attribute does not contain any of a
// condition's values. Total shrinks by the number of dropped hits.
func keepSubstringMatches(result *db.SearchResult, texts []filter.Condition) {
	kept := result.Entries[:0]
	for _, e := range result.Entries {
		if matchesAllText(e.Attrs, texts) {
			kept = append(kept, e)
		}
	}
	result.Total -= len(result.Entries) - len(kept)
	result.Entries = kept
}

func matchesAllText(attrs map[string]string, texts []filter.Condition) bool {
	for _, c := range texts {
		v, ok := attrs[c.Field()]
		if !ok {
			return false
		}
		v = strings.ToLower(v)
		found := false
		for _, want := range c.Values() {
			if strings.Contains(v, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// --- Result parsing ---

func parseJSONResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, min(total, int64(len(raw)/2)))
	// 2-stride: [total, key1, ["$", json1], key2, ["$", json2], ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		attrs := parseFieldPairs(fields)
		doc, ok := attrs["$"]
		if !ok {
			continue
		}
		delete(attrs, "$")

		entries = append(entries, db.SearchEntry{
			Key:   key,
			Doc:   []byte(doc),
			Attrs: attrs,
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into an FT.SEARCH query string.
// Conditions are AND-ed; values inside a condition are OR-ed.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(expr.Conditions()))
	for _, cond := range expr.Conditions() {
		if part := buildCondition(cond); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	switch cond.Operator() {
	case filter.OpTag, filter.OpScope:
		return buildTagFilter(cond.Field(), cond.Values())
	case filter.OpNumeric:
		return buildNumericFilter(cond.Field(), cond.Numbers())
	case filter.OpText:
		return buildTextFilter(cond.Field(), cond.Values())
	}
	return ""
}

func buildTagFilter(key string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

// buildNumericFilter matches any of the given values with closed single-point ranges.
func buildNumericFilter(key string, values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		n := filter.FormatNumber(v)
		parts = append(parts, fmt.Sprintf("@%s:[%s %s]", key, n, n))
	}
	return orGroup(parts)
}

// buildTextFilter selects candidates for a substring match. Every word of a
// value must occur inside some indexed term (*word*), which holds for any
// text containing the value. Words shorter than minInfixLen cannot be
// expressed as infix queries, so a value made only of such words leaves the
// field unconstrained.
func buildTextFilter(key string, values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		words := infixWords(v)
		if len(words) == 0 {
			return ""
		}
		parts = append(parts, fmt.Sprintf("@%s:(%s)", key, strings.Join(words, " ")))
	}
	return orGroup(parts)
}

const minInfixLen = 2

// infixWords splits v the way the indexer tokenizes text and wraps each
// usable word in infix wildcards.
func infixWords(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minInfixLen {
			continue
		}
		words = append(words, "*"+f+"*")
	}
	return words
}

func orGroup(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"|", "\\|",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"/", "\\/",
	" ", "\\ ",
)
