package analysis

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ohler55/ojg/jp"
	"github.com/samber/lo"

	errUtils "github.com/cloudposse/specls/errors"
	"github.com/cloudposse/specls/pkg/lsp/sourcemap"
)

// Match is a node selected by a query.
type Match struct {
	Path  sourcemap.Path
	Value any
}

// Query is a compiled JSONPath expression rooted at "$".
type Query struct {
	expr string
	x    jp.Expr
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expr
}

// ParseQuery compiles expr.
func ParseQuery(expr string) (*Query, error) {
	trimmed := strings.TrimSpace(expr)
	if !strings.HasPrefix(trimmed, "$") {
		return nil, errUtils.Build(errUtils.ErrInvalidJSONPath).
			WithContext("expression", expr).
			WithHint("Queries start at the document root: $").
			Err()
	}

	x, err := jp.ParseString(trimmed)
	if err != nil {
		return nil, errUtils.Build(errors.Wrap(err, "parsing JSONPath")).
			WithSentinel(errUtils.ErrInvalidJSONPath).
			WithContext("expression", expr).
			Err()
	}
	return &Query{expr: expr, x: x}, nil
}

// Evaluate returns the nodes of root selected by q in document order (keys sorted, indices
// ascending), without duplicates.
func (q *Query) Evaluate(root any) []Match {
	if isRootOnly(q.x) {
		return []Match{{Path: sourcemap.Path{}, Value: root}}
	}

	var out []Match
	for _, loc := range q.x.Locate(root, 0) {
		path, value, ok := resolveLocation(root, loc)
		if !ok {
			continue
		}
		out = append(out, Match{Path: path, Value: value})
	}

	out = lo.UniqBy(out, func(m Match) string { return m.Path.Key() })
	slices.SortStableFunc(out, func(a, b Match) int { return comparePaths(a.Path, b.Path) })
	return out
}

// ValueAt returns the node of root at path.
func ValueAt(root any, path sourcemap.Path) (any, bool) {
	cur := root
	for _, elem := range path {
		switch key := elem.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = obj[key]; !ok {
				return nil, false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

func isRootOnly(x jp.Expr) bool {
	if len(x) != 1 {
		return false
	}
	_, ok := x[0].(jp.Root)
	return ok
}

// resolveLocation turns a located expression into a concrete path, normalizing negative
// indices against the array they address.
func resolveLocation(root any, loc jp.Expr) (sourcemap.Path, any, bool) {
	path := sourcemap.Path{}
	cur := root
	for _, frag := range loc {
		switch f := frag.(type) {
		case jp.Child:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, nil, false
			}
			v, found := obj[string(f)]
			if !found {
				return nil, nil, false
			}
			path = append(path, string(f))
			cur = v
		case jp.Nth:
			arr, ok := cur.([]any)
			if !ok {
				return nil, nil, false
			}
			idx := int(f)
			if idx < 0 {
				idx += len(arr)
			}
			if idx < 0 || idx >= len(arr) {
				return nil, nil, false
			}
			path = append(path, idx)
			cur = arr[idx]
		}
	}
	return path, cur, true
}

// comparePaths orders paths element-wise; indices sort before keys.
func comparePaths(a, b sourcemap.Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ai, aIsIndex := a[i].(int)
		bi, bIsIndex := b[i].(int)
		switch {
		case aIsIndex && bIsIndex:
			if c := cmp.Compare(ai, bi); c != 0 {
				return c
			}
		case aIsIndex:
			return -1
		case bIsIndex:
			return 1
		default:
			as, _ := a[i].(string)
			bs, _ := b[i].(string)
			if c := cmp.Compare(as, bs); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(a), len(b))
}
