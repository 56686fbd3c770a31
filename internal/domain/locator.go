package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Locator is an optional page or section reference. Knowledge files write
// it either as a string or as a number; both decode to the same text form.
type Locator string

// UnmarshalJSON accepts strings, numbers and null.
func (l *Locator) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Locator(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = Locator(n.String())
	return nil
}

// IntLocator formats an integer locator such as a page number.
func IntLocator(n int) Locator { return Locator(strconv.Itoa(n)) }

func (l Locator) String() string { return string(l) }
