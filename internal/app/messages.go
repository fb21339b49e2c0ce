package app

import "github.com/jwulff/commutes/internal/collect"

// QueryDoneMsg is sent when one planned query has been fetched and added.
type QueryDoneMsg struct {
	Index  int
	Routes int
}

// FetchErrorMsg is sent when a query fails. The run stops.
type FetchErrorMsg struct {
	Plan collect.Plan
	Err  error
}

// SavedMsg is sent when every sink has been attempted.
type SavedMsg struct {
	Err error
}
