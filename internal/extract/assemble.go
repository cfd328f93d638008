package extract

import (
	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// Assembler folds coerced values into records and tracks the pass counters.
// A record is emitted only when every required field extracted and coerced;
// otherwise the unit is counted as skipped and dropped without error.
type Assembler struct {
	sch      *schema.Schema
	skipped  int
	failures map[string]int
}

// NewAssembler builds an assembler for one pass.
func NewAssembler(sch *schema.Schema) *Assembler {
	return &Assembler{sch: sch, failures: make(map[string]int)}
}

// Assemble merges one unit's extracted values into a record. ok is false when
// the unit was skipped.
func (a *Assembler) Assemble(values []Extracted) (result.Record, bool) {
	emit := true
	for i := range values {
		if values[i].OK {
			continue
		}
		a.failures[values[i].Field.Name]++
		if values[i].Field.Required {
			emit = false
		}
	}
	if !emit {
		a.skipped++
		return nil, false
	}

	rec := make(result.Record, len(values))
	for i := range values {
		if values[i].OK {
			rec[values[i].Field.Name] = values[i].Value
		}
	}
	return rec, true
}

// Skipped returns the number of units dropped so far.
func (a *Assembler) Skipped() int { return a.skipped }

// Failures returns per-field match/coercion failure counts.
func (a *Assembler) Failures() map[string]int { return a.failures }
