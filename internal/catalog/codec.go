package catalog

import (
	"bytes"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/tarungka/sieve/internal/predicate"
)

// record is the stored form of a predicate. The condition is kept by name so that
// reordering the comparison constants does not change stored entries.
type record struct {
	Attribute string `codec:"attribute"`
	Condition string `codec:"condition"`
	Value     string `codec:"value"`
}

func encodePredicate(p predicate.FilterPredicate) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	hd := codec.MsgpackHandle{}
	enc := codec.NewEncoder(buf, &hd)
	err := enc.Encode(record{
		Attribute: p.Attribute(),
		Condition: p.Condition().String(),
		Value:     p.Value(),
	})
	return buf.Bytes(), err
}

func decodePredicate(b []byte) (predicate.FilterPredicate, error) {
	var r record
	hd := codec.MsgpackHandle{}
	dec := codec.NewDecoder(bytes.NewReader(b), &hd)
	if err := dec.Decode(&r); err != nil {
		return predicate.FilterPredicate{}, err
	}
	return predicate.Parse(r.Attribute, r.Condition, r.Value)
}
