package extract

import (
	"strconv"
	"time"

	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// Coerce converts an extracted raw string to the field's declared type,
// populating Value. Failure is local: OK flips to false and the unit's other
// fields are unaffected.
func Coerce(ex *Extracted) {
	if !ex.OK {
		return
	}

	switch ex.Field.Type {
	case schema.TypeString:
		ex.Value = result.StringValue(ex.Raw)
	case schema.TypeInteger:
		n, err := strconv.ParseInt(ex.Raw, 10, 64)
		if err != nil {
			ex.OK = false
			return
		}
		ex.Value = result.IntValue(n)
	case schema.TypeFloat:
		f, err := strconv.ParseFloat(ex.Raw, 64)
		if err != nil {
			ex.OK = false
			return
		}
		ex.Value = result.FloatValue(f)
	case schema.TypeDate:
		t, err := time.Parse(ex.Field.DateLayout(), ex.Raw)
		if err != nil {
			ex.OK = false
			return
		}
		ex.Value = result.TimeValue(t)
	}
}
