// Package skemajson decodes JSON into values described by a schema of
// records, unions, arrays, maps, enums, fixed and primitive types, whatever
// order the object keys arrive in.
//
// - A schema-ordered pull API (Decoder) over a pluggable token Source
// - Out-of-order fields buffered per record and replayed at their position
// - Union branches chosen from explicit null, the tagged {"<branch>": v} form, or the value's shape
// - Absent fields filled from defaults, implicit null, or reported as required
// - A stable error model via Issues (JSON Pointer, code, message)
// - Source enforcement for duplicate keys, nesting depth and input size
//
// Design policy:
// - Keep only public APIs in the root package; put token plumbing under internal/.
// - Build schemas with package schema; materialize generic values with package generic.
// - Place JSON drivers under source/ and the CLI under cmd/skemajson.
//
// Typical usage:
//
//	s := schema.Record("R",
//		schema.NewField("l", schema.Long()),
//		schema.NewField("a", schema.Array(schema.Int())),
//	)
//	d := skemajson.NewStringDecoder(s, `{"a":[1,2],"l":100}`)
//	l, err := d.ReadLong()
//	...
//	err = d.SkipArray()
//
//	v, err := generic.DecodeString(s, `{"a":[1,2],"l":100}`)
package skemajson
