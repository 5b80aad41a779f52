package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// blockIndex remembers where each top-level block type was first defined so
// a second definition, in the same or another file, can be reported.
type blockIndex map[string]hcl.Range

// claim records block and returns a diagnostic if its type was seen before.
func (idx blockIndex) claim(block *hcl.Block) hcl.Diagnostics {
	if first, ok := idx[block.Type]; ok {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Duplicate \"" + block.Type + "\" block",
			Detail:   "Only one \"" + block.Type + "\" block is allowed; the first is defined at " + first.String() + ".",
			Subject:  &block.DefRange,
		}}
	}
	idx[block.Type] = block.DefRange
	return nil
}
