// Package payloadpath implements dotted-path access into AavionDB
// payload values (map[string]interface{} trees with []interface{}
// arrays), shared by FilterEngine, ResolverEngine, and ExportEngine so
// all three address nested fields the same way: "a.b.c" descends
// through maps, "a.b[2].c" addresses the third element of an array at
// "a.b". Grounded on spec.md §4.10's "payload accessors use dotted
// paths; array elements are addressable via [n]".
package payloadpath
