package feed

import "tapnews/pkg/news"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// State is everything an observer of an aggregator sees. It is always replaced as
// a whole, so loading, articles and error can never be observed out of step.
// A failed state still carries the articles that were visible before the failure.
type State struct {
	Status   Status
	Articles []news.Article
	Err      error
	Message  string
}

func (s State) Loading() bool {
	return s.Status == StatusLoading
}

// Snapshot exposes the pagination bookkeeping behind the visible window.
type Snapshot struct {
	BufferLen int
	Cursor    int
	Terminal  bool
	Loading   bool
}
