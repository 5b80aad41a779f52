// Package config defines the format-agnostic configuration model of the
// timeliness engine, along with the Loader interface implemented by the
// concrete configuration formats.
//
// The `config.Model` is the single source of truth for how the lineage index
// is derived, how predictions read their budgets, where records are stored
// and how the HTTP host listens. The HCL implementation lives in the
// hcl_adapter package.
package config
