package avrokit

// Package avrokit provides:
//
// - Schema-compiled Avro binary Readers and Writers (Read/Skip, Validate/Write)
// - Writer/reader schema resolution for schema evolution, checked at compile time
// - A stable error model via Issues (JSON Pointer, code, message)
// - Pluggable logical types layered over raw readers and writers
//
// Design policy:
// - Keep only public contracts in the root package; put detailed implementations under internal/.
// - Place the schema model under schema/, nodes under node/, the compiler under compile/,
//   logical types under logical/ and the CLI under cmd/avrokit.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s, err := schema.ParseSchema([]byte(`{"type":"record","name":"User","fields":[...]}`))
//  w, err := compile.Writer(s, avrokit.WriteOpt{})
//  data, err := avrokit.Marshal(w, map[string]any{"id": int64(1)})
//
//  r, err := compile.Reader(writerSchema, readerSchema)
//  v, err := avrokit.Unmarshal(r, data)
//
