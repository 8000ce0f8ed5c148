package rfctime

import (
	"bytes"
	"encoding/json"
	"time"
)

// RFC3339DateTimeFormat stringifies a time.Time with an explicit numeric
// offset, never "Z".
const RFC3339DateTimeFormat string = "2006-01-02T15:04:05.999-07:00"

// RFC3339 is a date-time carried over the wire in RFC 3339 form.
type RFC3339 time.Time

func (rt RFC3339) Time() time.Time {
	return time.Time(rt)
}

// Equal compares by instant, not by representation.
func (rt RFC3339) Equal(other RFC3339) bool {
	return rt.Time().Equal(other.Time())
}

func (rt RFC3339) String() string {
	return rt.Time().Format(RFC3339DateTimeFormat)
}

func Parse(s string) (RFC3339, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return RFC3339{}, err
	}
	return RFC3339(t), nil
}

func (rt RFC3339) MarshalJSON() ([]byte, error) {
	return json.Marshal(rt.String())
}

func (rt *RFC3339) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*rt = parsed
	return nil
}
