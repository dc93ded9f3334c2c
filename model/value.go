package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindList
)

// Value is a submitted answer: a string, a number, a list of strings
// (select_multiple) or null (note questions, unanswered fields).
// The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	list []string
}

func Null() Value                 { return Value{} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func List(items ...string) Value { return Value{kind: KindList, list: items} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Str() string     { return v.str }
func (v Value) Num() float64    { return v.num }
func (v Value) Items() []string { return v.list }

// IsEmpty reports whether the value counts as unanswered for required-field
// validation. Numeric zero is deliberately treated as unanswered, matching
// long-standing collection behavior.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindNumber:
		return v.num == 0
	case KindList:
		return len(v.list) == 0
	default:
		return true
	}
}

// Cell renders the value for a spreadsheet or CSV cell.
func (v Value) Cell() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = Value{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, len(raw))
		for i, r := range raw {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				// tolerate non-string list members by keeping their
				// literal JSON text
				s = string(r)
			}
			items[i] = s
		}
		*v = List(items...)
	case '{':
		return errors.New("value: objects are not supported")
	default:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return errors.Wrap(err, "value: parse number")
		}
		*v = Number(n)
	}
	return nil
}
