// Package db persists collected route tables to SQLite across runs and
// answers the history reads served over HTTP: fingerprint groups, routes,
// legs and steps of earlier runs.
package db

// RouteGroup summarizes routes that share a fingerprint.
type RouteGroup struct {
	Fingerprint       string
	Summary           string
	Routes            int
	MinTrafficSeconds int
	MaxTrafficSeconds int
}

// TableCounts holds row counts of the three tables.
type TableCounts struct {
	Routes int
	Legs   int
	Steps  int
}
