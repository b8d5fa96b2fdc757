// Package template renders response bodies through four ordered stages.
//
// Each stage has its own placeholder syntax and sees the output of the stages
// before it:
//
//  1. Dataset: ##field## reads the row selected by the mapping's dbset
//     reference, ##db:key:field## names the dataset and key explicitly.
//  2. Match: <<name>> is replaced with a value captured by the matched mapping.
//  3. Markers: {{now}}, {{uuid}}, {{random.int(1, 6)}}, {{date(+2d)}} and the
//     other built-ins are computed fresh on every render.
//  4. Dumps: [[dump:request]], [[dump:mapping]], [[dump:captures]] and
//     [[dump:row]] embed a serialized structure, JSON by default or YAML with
//     a ":yaml" suffix.
//
// Nothing here fails a response. An unresolved placeholder becomes an empty
// string, except dataset placeholders under the "keep" fallback which are left
// as written. A stage that panics is skipped and its input passes through.
//
// # Markers
//
// Time:
//   - {{now}} - RFC3339 time; {{now("2006-01-02")}} uses a Go layout
//   - {{timestamp}} - Unix seconds; {{timestamp.unix_ms}}, {{timestamp.iso}}
//   - {{date(+2d)}} - today shifted by N days as 2006-01-02; an optional
//     second argument is a Go layout
//
// Random:
//   - {{uuid}}, {{uuid.short}}
//   - {{random}} - 8 hex characters
//   - {{random.int}} or {{random.int(min, max)}}
//   - {{random.float}} or {{random.float(min, max)}}
//   - {{random.string}} or {{random.string(N)}}
//   - {{faker.name}}, {{faker.email}}, {{faker.city}} and friends
//
// Counters:
//   - {{sequence("name")}} or {{sequence("name", start)}}, shared by all
//     requests served by one Pipeline
package template
