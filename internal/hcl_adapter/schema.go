package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// Top-level block types of a configuration file.
const (
	blockLineage    = "lineage"
	blockCollapse   = "collapse"
	blockPrediction = "prediction"
	blockStorage    = "storage"
	blockServer     = "server"
)

// fileSchema lists every block a configuration file may contain. Each block
// type appears at most once across all loaded files.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockLineage},
		{Type: blockCollapse},
		{Type: blockPrediction},
		{Type: blockStorage},
		{Type: blockServer},
	},
}

// LineageBlock is the `lineage` block.
type LineageBlock struct {
	ReversedRelation *string  `hcl:"reversed_relation,optional"`
	DatasetKinds     []string `hcl:"dataset_kinds,optional"`
}

// CollapseBlock is the `collapse` block. When is kept as an expression and
// compiled into a predicate over entities.
type CollapseBlock struct {
	Enabled *bool          `hcl:"enabled,optional"`
	When    hcl.Expression `hcl:"when,optional"`
}

// PredictionBlock is the `prediction` block.
type PredictionBlock struct {
	BudgetProperty *string `hcl:"budget_property,optional"`
	Schedule       *string `hcl:"schedule,optional"`
	Workers        *int    `hcl:"workers,optional"`
}

// StorageBlock is the `storage` block.
type StorageBlock struct {
	Driver *string `hcl:"driver,optional"`
	DSN    *string `hcl:"dsn,optional"`
}

// ServerBlock is the `server` block.
type ServerBlock struct {
	Port *int `hcl:"port,optional"`
}
