package lineage

// DefaultReversedRelation is the relationship type whose edge direction is
// inverted when building the graph: a job that "Produces" a dataset is
// upstream of it.
const DefaultReversedRelation = "Produces"

// Kinds reported by the lineage query service.
const (
	KindDataset = "DATASET"
	KindDataJob = "DATA_JOB"
)

// Property is a single custom key/value pair attached to an entity or run.
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// EntityRef identifies the far end of a relationship.
type EntityRef struct {
	URN  string `json:"urn" yaml:"urn"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Relationship is a single direct lineage link of an entity.
type Relationship struct {
	Type   string    `json:"type" yaml:"type"`
	Entity EntityRef `json:"entity" yaml:"entity"`
}

// Run is one execution attempt of a job-like entity. Timing information is
// carried as custom properties (executionDate, startDate, endDate, state).
type Run struct {
	ExternalURL      string     `json:"externalUrl,omitempty" yaml:"externalUrl,omitempty"`
	CustomProperties []Property `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
}

// Property returns the value of the first run property with the given key.
func (r Run) Property(key string) (string, bool) {
	return lookup(r.CustomProperties, key)
}

// Record is one search result of the lineage query: an entity together with
// its direct relationships. Records are immutable for the duration of one
// computation.
//
// Relationships feed the lineage graph and follow its direction convention.
// Upstreams are the entity's direct upstream dependencies and feed landing
// time prediction only.
type Record struct {
	URN              string         `json:"urn" yaml:"urn"`
	Type             string         `json:"type" yaml:"type"`
	CustomProperties []Property     `json:"customProperties,omitempty" yaml:"customProperties,omitempty"`
	Relationships    []Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Upstreams        []Relationship `json:"upstreams,omitempty" yaml:"upstreams,omitempty"`
	Tags             []string       `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Degree is the hop distance annotation supplied by the query itself.
	Degree int `json:"degree,omitempty" yaml:"degree,omitempty"`
	// RuntimeSLO is the declared per-run duration budget in seconds.
	RuntimeSLO *float64 `json:"runtimeSLO,omitempty" yaml:"runtimeSLO,omitempty"`
	Runs       []Run    `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// Property returns the value of the first custom property with the given key.
func (r *Record) Property(key string) (string, bool) {
	return lookup(r.CustomProperties, key)
}

func lookup(props []Property, key string) (string, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
