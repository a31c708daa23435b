// Package scorefile reads scores from YAML or JSON files.
//
// Loading runs in three steps. The file is parsed into a generic value
// and checked against the embedded CUE schema (schema.cue), which reports
// every violation with its field path. The file is then decoded into a
// score.Score. Finally, omitted values are filled in: default properties,
// a staff scale of 1, a line break at tick 0, hand aliases ("left",
// "right") and ids for entities written without one.
//
// The schema checks shape and ranges only. Semantic checks that need the
// whole score, such as events past the end of the grid, are reported by
// the layout engine.
package scorefile
