package models

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary_Record(t *testing.T) {
	s := &Summary{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(4)
		go func() { defer wg.Done(); s.Record(Result{Outcome: OutcomeDownloaded, Bytes: 10}) }()
		go func() { defer wg.Done(); s.Record(Result{Outcome: OutcomeSkippedIgnored}) }()
		go func() { defer wg.Done(); s.Record(Result{Outcome: OutcomeSkippedUpToDate}) }()
		go func() {
			defer wg.Done()
			s.Record(Result{Item: &Item{TargetPath: "/f"}, Outcome: OutcomeFailed, Err: errors.New("boom")})
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Downloaded)
	assert.Equal(t, int64(100), s.Bytes)
	assert.Equal(t, 10, s.SkippedIgnored)
	assert.Equal(t, 10, s.SkippedUpToDate)
	assert.Len(t, s.Failed, 10)
	assert.Equal(t, 40, s.Total())
	assert.Equal(t, Failure{Path: "/f", Reason: "boom"}, s.SortedFailures()[0])
}
