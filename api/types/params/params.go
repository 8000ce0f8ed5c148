package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Param is a name/value pair attached to an attachment in a frame.
//
// Parameters distinguish revisions published together: for example,
// {"country": "DE"} and {"country": "US"} variants of the same chart.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (p Param) String() string {
	return p.Key + ":" + p.Value
}

func (a Param) Equal(b Param) bool {
	return a.Key == b.Key && a.Value == b.Value
}

// Parse reads a "KEY:VALUE" formatted string into p.
//
// Leading/trailing spaces around KEY and VALUE are trimmed.
func (p *Param) Parse(s string) error {
	k, v, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("param parse error: %s: no key", s)
	}

	k = strings.TrimSpace(k)
	v = strings.TrimSpace(v)
	if k == "" {
		return fmt.Errorf("param parse error: %s: empty key", s)
	}

	p.Key = k
	p.Value = v
	return nil
}

func (p *Param) UnmarshalJSON(data []byte) error {
	{
		s := new(string)
		if err := json.Unmarshal(data, s); err == nil {
			return p.Parse(*s)
		}
	}

	f := new(struct {
		Key   *string `json:"key"`
		Value *string `json:"value"`
	})
	if err := json.Unmarshal(data, f); err != nil {
		return errors.New("failed to parse Param")
	}
	if f.Key == nil || f.Value == nil {
		return errors.New(`failed to parse Param: required fields: "key", "value"`)
	}

	p.Key = *f.Key
	p.Value = *f.Value
	return nil
}

func (p Param) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
