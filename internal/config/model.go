package config

import (
	"fmt"

	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/prediction"
	"github.com/specialistvlad/timeliness/internal/workerpool"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Model is the unified, format-agnostic representation of the engine
// configuration.
type Model struct {
	Lineage    Lineage
	Collapse   Collapse
	Prediction Prediction
	Storage    Storage
	Server     Server
}

// Lineage controls graph construction and SLA propagation.
type Lineage struct {
	ReversedRelation string
	// DatasetKinds are the kinds treated as dataset-like.
	DatasetKinds []string
}

// Collapse controls which nodes are hidden from the collapsed view.
type Collapse struct {
	Enabled bool
	// When selects collapsible entities. Nil means the dataset kinds.
	When lineage.Predicate
	// WhenSource is the source text of When, for logging.
	WhenSource string
}

// Prediction controls landing time prediction.
type Prediction struct {
	BudgetProperty string
	// Schedule is an optional cron expression used to derive the execution
	// instant when none is given.
	Schedule string
	// Workers bounds the concurrent predictions of a batch.
	Workers int
}

// Storage selects the record store.
type Storage struct {
	Driver string
	DSN    string
}

// Server configures the HTTP host.
type Server struct {
	Port int
}

// Default returns the configuration used when no file overrides it.
func Default() *Model {
	return &Model{
		Lineage: Lineage{
			ReversedRelation: lineage.DefaultReversedRelation,
			DatasetKinds:     []string{lineage.KindDataset},
		},
		Collapse: Collapse{Enabled: true},
		Prediction: Prediction{
			BudgetProperty: prediction.DefaultBudgetProperty,
			Workers:        workerpool.DefaultWorkers,
		},
		Storage: Storage{Driver: DriverMemory},
		Server:  Server{Port: 8080},
	}
}

// Validate checks the model for values no component can work with.
func (m *Model) Validate() error {
	if m.Lineage.ReversedRelation == "" {
		return fmt.Errorf("lineage: reversed_relation must not be empty")
	}
	if len(m.Lineage.DatasetKinds) == 0 {
		return fmt.Errorf("lineage: dataset_kinds must name at least one kind")
	}
	if m.Prediction.Workers < 1 {
		return fmt.Errorf("prediction: workers must be at least 1, got %d", m.Prediction.Workers)
	}
	switch m.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if m.Storage.DSN == "" {
			return fmt.Errorf("storage: driver %q requires a dsn", m.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", m.Storage.Driver)
	}
	if m.Server.Port < 0 || m.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", m.Server.Port)
	}
	return nil
}

// LineageOptions translates the model into index options.
func (m *Model) LineageOptions() lineage.Options {
	opts := lineage.Options{
		ReversedRelation: m.Lineage.ReversedRelation,
		IsDataset:        lineage.KindIn(m.Lineage.DatasetKinds...),
		Collapse:         m.Collapse.Enabled,
		IsCollapsible:    m.Collapse.When,
	}
	return opts
}

// PredictionOptions translates the model into tree options.
func (m *Model) PredictionOptions() prediction.Options {
	return prediction.Options{BudgetProperty: m.Prediction.BudgetProperty}
}
