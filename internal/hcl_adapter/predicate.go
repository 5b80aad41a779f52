package hcl_adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// entityVar is the only variable a predicate expression may reference.
const entityVar = "entity"

// predicateFunctions are the functions available to predicate expressions.
var predicateFunctions = map[string]function.Function{
	"can":      tryfunc.CanFunc,
	"contains": stdlib.ContainsFunc,
	"length":   stdlib.LengthFunc,
	"lookup":   stdlib.LookupFunc,
	"lower":    stdlib.LowerFunc,
	"regex":    stdlib.RegexFunc,
	"try":      tryfunc.TryFunc,
	"upper":    stdlib.UpperFunc,
}

// CompilePredicate turns a boolean HCL expression over `entity` into a
// lineage.Predicate. The entity object has the attributes id, kind, known,
// degree, properties (a map of custom properties) and tags.
//
// References and function calls are checked up front. At evaluation time an
// expression that fails or does not yield a boolean matches nothing.
func CompilePredicate(ctx context.Context, expr hcl.Expression) (lineage.Predicate, error) {
	if err := checkReferences(expr); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	return func(r *lineage.Record) bool {
		evalCtx := &hcl.EvalContext{
			Variables: map[string]cty.Value{entityVar: EntityValue(r)},
			Functions: predicateFunctions,
		}
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			logger.Debug("Predicate evaluation failed.", "entity", entityID(r), "error", diags.Error())
			return false
		}
		val, err := convert.Convert(val, cty.Bool)
		if err != nil || val.IsNull() || !val.IsKnown() {
			return false
		}
		return val.True()
	}, nil
}

// EntityValue converts a record into the `entity` object seen by predicate
// expressions. A nil record becomes an unknown entity.
func EntityValue(r *lineage.Record) cty.Value {
	if r == nil {
		return cty.ObjectVal(map[string]cty.Value{
			"id":         cty.StringVal(""),
			"kind":       cty.StringVal(""),
			"known":      cty.False,
			"degree":     cty.NumberIntVal(0),
			"properties": cty.MapValEmpty(cty.String),
			"tags":       cty.ListValEmpty(cty.String),
		})
	}

	props := cty.MapValEmpty(cty.String)
	if len(r.CustomProperties) > 0 {
		m := make(map[string]cty.Value, len(r.CustomProperties))
		for _, p := range r.CustomProperties {
			if _, dup := m[p.Key]; !dup {
				m[p.Key] = cty.StringVal(p.Value)
			}
		}
		props = cty.MapVal(m)
	}

	tags := cty.ListValEmpty(cty.String)
	if len(r.Tags) > 0 {
		vals := make([]cty.Value, 0, len(r.Tags))
		for _, t := range r.Tags {
			vals = append(vals, cty.StringVal(t))
		}
		tags = cty.ListVal(vals)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"id":         cty.StringVal(r.URN),
		"kind":       cty.StringVal(r.Kind()),
		"known":      cty.True,
		"degree":     cty.NumberIntVal(int64(r.Degree)),
		"properties": props,
		"tags":       tags,
	})
}

func entityID(r *lineage.Record) string {
	if r == nil {
		return ""
	}
	return r.URN
}

// checkReferences rejects variables other than `entity` and unknown
// functions.
func checkReferences(expr hcl.Expression) error {
	var problems []string
	for _, traversal := range expr.Variables() {
		if root := traversal.RootName(); root != entityVar {
			problems = append(problems, fmt.Sprintf("unknown variable %q", root))
		}
	}

	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		called := make(map[string]struct{})
		hclsyntax.VisitAll(syntaxExpr, func(n hclsyntax.Node) hcl.Diagnostics {
			if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
				called[call.Name] = struct{}{}
			}
			return nil
		})
		for name := range called {
			if _, ok := predicateFunctions[name]; !ok {
				problems = append(problems, fmt.Sprintf("unknown function %q", name))
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid predicate: %s", strings.Join(problems, ", "))
	}
	return nil
}
