package app

import (
	"time"

	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/prediction"
)

// Edge is one forward edge of an index view.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IndexView is the serialisable form of a lineage index.
type IndexView struct {
	Root          string                `json:"root"`
	Collapsed     bool                  `json:"collapsed"`
	Ranks         map[string]int        `json:"ranks"`
	Layers        [][]string            `json:"layers"`
	Edges         []Edge                `json:"edges"`
	SlaProperties lineage.SlaProperties `json:"slaProperties"`
	Cycle         string                `json:"cycle,omitempty"`
}

// NewIndexView flattens idx. Edges are sorted by source, then target.
func NewIndexView(idx *lineage.Index) IndexView {
	view := IndexView{
		Root:          idx.Root,
		Collapsed:     idx.Collapsed,
		Ranks:         idx.Ranks,
		Layers:        idx.Layers(),
		Edges:         []Edge{},
		SlaProperties: idx.SlaProperties,
	}
	for _, from := range idx.Edges.Sources() {
		for _, to := range idx.Edges.Neighbors(from) {
			view.Edges = append(view.Edges, Edge{From: from, To: to})
		}
	}
	if idx.Cycle != nil {
		view.Cycle = idx.Cycle.Error()
	}
	return view
}

// PredictionView is the serialisable form of a prediction.
type PredictionView struct {
	Root          string            `json:"root"`
	ExecutionDate time.Time         `json:"executionDate"`
	LandingTime   string            `json:"landingTime"`
	Estimable     bool              `json:"estimable"`
	Cycles        []prediction.Edge `json:"cycles,omitempty"`
}

// NewPredictionView renders res. LandingTime holds the RFC 3339 landing time
// or the unestimable literal.
func NewPredictionView(root string, at time.Time, res prediction.Result) PredictionView {
	return PredictionView{
		Root:          root,
		ExecutionDate: at.UTC(),
		LandingTime:   res.String(),
		Estimable:     res.Estimable,
		Cycles:        res.Cycles,
	}
}
