package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/timeliness/internal/config"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths and merges the blocks over
// config.Default(). The merged model is validated before it is returned.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindAll(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := config.Default()
	parser := hclparse.NewParser()
	seen := make(blockIndex)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(fileSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range content.Blocks {
			if diags := seen.claim(block); diags.HasErrors() {
				return nil, fmt.Errorf("invalid HCL file %s: %w", file, diags)
			}
			if err := l.applyBlock(ctx, model, block, hclFile.Bytes); err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
		}
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("HCL loading complete.",
		"files", len(hclFiles),
		"collapse", model.Collapse.Enabled,
		"collapse_when", model.Collapse.WhenSource,
		"storage", model.Storage.Driver,
	)
	return model, nil
}

// applyBlock decodes block and overrides the fields it sets.
func (l *Loader) applyBlock(ctx context.Context, model *config.Model, block *hcl.Block, src []byte) error {
	switch block.Type {
	case blockLineage:
		var b LineageBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s block: %w", block.Type, diags)
		}
		if b.ReversedRelation != nil {
			model.Lineage.ReversedRelation = *b.ReversedRelation
		}
		if b.DatasetKinds != nil {
			model.Lineage.DatasetKinds = b.DatasetKinds
		}

	case blockCollapse:
		var b CollapseBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s block: %w", block.Type, diags)
		}
		if b.Enabled != nil {
			model.Collapse.Enabled = *b.Enabled
		}
		if isExprDefined(ctx, b.When, "collapse.when") {
			pred, err := CompilePredicate(ctx, b.When)
			if err != nil {
				return fmt.Errorf("collapse.when: %w", err)
			}
			model.Collapse.When = pred
			model.Collapse.WhenSource = string(b.When.Range().SliceBytes(src))
		}

	case blockPrediction:
		var b PredictionBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s block: %w", block.Type, diags)
		}
		if b.BudgetProperty != nil {
			model.Prediction.BudgetProperty = *b.BudgetProperty
		}
		if b.Schedule != nil {
			model.Prediction.Schedule = *b.Schedule
		}
		if b.Workers != nil {
			model.Prediction.Workers = *b.Workers
		}

	case blockStorage:
		var b StorageBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s block: %w", block.Type, diags)
		}
		if b.Driver != nil {
			model.Storage.Driver = *b.Driver
		}
		if b.DSN != nil {
			model.Storage.DSN = *b.DSN
		}

	case blockServer:
		var b ServerBlock
		if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s block: %w", block.Type, diags)
		}
		if b.Port != nil {
			model.Server.Port = *b.Port
		}
	}
	return nil
}
