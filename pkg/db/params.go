package db

// Param is a key-value pair describing an attachment.
//
// Keys are not unique within an attachment. The same key may appear
// with different values.
type Param struct {
	Key   string
	Value string
}

func (p Param) Equal(o Param) bool {
	return p.Key == o.Key && p.Value == o.Value
}
