package models

import (
	"sort"
	"sync"
)

// Outcome is the result category of one transfer
type Outcome int

const (
	// OutcomeDownloaded means the remote content was written to the target path
	OutcomeDownloaded Outcome = iota
	// OutcomeSkippedIgnored means the target path matched the ignore predicate
	OutcomeSkippedIgnored
	// OutcomeSkippedUpToDate means a local copy exists and was kept
	OutcomeSkippedUpToDate
	// OutcomeFailed means a network or local I/O error stopped the transfer
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkippedIgnored:
		return "skipped (ignored)"
	case OutcomeSkippedUpToDate:
		return "skipped (up to date)"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of the transfer of a single item
type Result struct {
	Item    *Item
	Outcome Outcome
	Bytes   int64
	Err     error
}

// Failure identifies a failed item or discovery branch
type Failure struct {
	Path   string
	Reason string
}

// Summary aggregates the results of a transfer phase
type Summary struct {
	mu sync.Mutex

	Downloaded      int
	SkippedIgnored  int
	SkippedUpToDate int
	Bytes           int64
	Failed          []Failure
}

// Record adds one result to the summary. Safe for concurrent use.
func (s *Summary) Record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Outcome {
	case OutcomeDownloaded:
		s.Downloaded++
		s.Bytes += r.Bytes
	case OutcomeSkippedIgnored:
		s.SkippedIgnored++
	case OutcomeSkippedUpToDate:
		s.SkippedUpToDate++
	case OutcomeFailed:
		reason := "unknown error"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		path := ""
		if r.Item != nil {
			path = r.Item.TargetPath
		}
		s.Failed = append(s.Failed, Failure{Path: path, Reason: reason})
	}
}

// Total returns the number of recorded results
func (s *Summary) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Downloaded + s.SkippedIgnored + s.SkippedUpToDate + len(s.Failed)
}

// SortedFailures returns the failures ordered by path
func (s *Summary) SortedFailures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	failures := make([]Failure, len(s.Failed))
	copy(failures, s.Failed)
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Path < failures[j].Path
	})
	return failures
}
