package model

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// lenientTime decodes a timestamp from a raw JSON value. A missing, null or
// unparseable value yields the zero time instead of an error, so one bad
// date in an upstream payload cannot fail the whole decode. Consumers treat
// the zero time as "no usable timestamp": the delta engine skips such items
// and listings simply render them undated.
func lenientTime(raw json.RawMessage, field string) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn().Str("field", field).RawJSON("value", raw).Msg("non-string timestamp in upstream record, treating as unset")
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Warn().Str("field", field).Str("value", s).Msg("unparseable timestamp in upstream record, treating as unset")
		return time.Time{}
	}
	return t
}
