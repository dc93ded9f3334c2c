package model

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// SubmissionTimeKey is the reserved record key holding the UTC submission
// timestamp. It is always the first key of a record.
const SubmissionTimeKey = "_submission_time"

// Record is one collected submission: question name -> value, in insertion
// order. Order matters because data exports derive their column order from
// it, so it is preserved across JSON round-trips.
type Record struct {
	keys []string
	vals map[string]Value
}

func (r *Record) Set(key string, v Value) {
	if r.vals == nil {
		r.vals = map[string]Value{}
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

func (r Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the record's keys in insertion order.
// The returned slice must not be modified.
func (r Record) Keys() []string { return r.keys }

func (r Record) Len() int { return len(r.keys) }

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.vals[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Record{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "record: read object start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("record: expected a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "record: read key")
		}
		key := tok.(string)

		var v Value
		if err := dec.Decode(&v); err != nil {
			return errors.Wrapf(err, "record: decode value of %q", key)
		}
		r.Set(key, v)
	}
	return nil
}
