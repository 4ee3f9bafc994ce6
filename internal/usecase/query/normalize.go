// Package query turns raw request parameters into filter expressions.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/collection/field"
	"github.com/kailas-cloud/srdex/internal/domain/filter"
)

// Normalize builds the canonical filter expression for a list request.
//
// Only the collection's declared filters are read; other parameters are
// ignored. Comma-separated and repeated values are merged and OR-ed.
// Unparseable numeric values are dropped, and a field left without values
// contributes no condition.
func Normalize(col collection.Collection, params url.Values) filter.Expression {
	var conds []filter.Condition
	for _, f := range col.Filters() {
		values := splitValues(params[f.Name()])
		if len(values) == 0 {
			continue
		}
		if c, ok := condition(f, values); ok {
			conds = append(conds, c)
		}
	}
	return filter.NewExpression(conds...)
}

func condition(f field.Field, values []string) (filter.Condition, bool) {
	var (
		c   filter.Condition
		err error
	)
	switch f.FieldType() {
	case field.Numeric:
		nums := parseNumbers(values)
		if len(nums) == 0 {
			return filter.Condition{}, false
		}
		c, err = filter.NewNumericSet(f.Name(), nums...)
	case field.Text:
		c, err = filter.NewText(f.Name(), values...)
	case field.Tag:
		c, err = filter.NewMatch(f.Name(), values...)
	default:
		return filter.Condition{}, false
	}
	return c, err == nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseNumbers(values []string) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}
