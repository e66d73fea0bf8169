package metrics

import (
	"sync"
	"time"
)

// Metrics counts what the client did during this process lifetime.
type Metrics struct {
	mu                  sync.RWMutex
	InterviewsStarted   int64
	InterviewsCompleted int64
	ResponsesSubmitted  int64
	RecordingsStarted   int64
	PlaybacksStarted    int64
	APICallsTotal       int64
	APICallsSuccessful  int64
	LastUpdateTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.bump(func() { m.InterviewsStarted++ })
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.bump(func() { m.InterviewsCompleted++ })
}

func (m *Metrics) IncrementResponsesSubmitted() {
	m.bump(func() { m.ResponsesSubmitted++ })
}

func (m *Metrics) IncrementRecordingsStarted() {
	m.bump(func() { m.RecordingsStarted++ })
}

func (m *Metrics) IncrementPlaybacksStarted() {
	m.bump(func() { m.PlaybacksStarted++ })
}

func (m *Metrics) IncrementAPICall(success bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

// bump runs inc under the lock. A nil Metrics discards everything.
func (m *Metrics) bump(inc func()) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inc()
	m.LastUpdateTime = time.Now()
}

// Snapshot is a lock-free copy of the counters.
type Snapshot struct {
	InterviewsStarted   int64
	InterviewsCompleted int64
	ResponsesSubmitted  int64
	RecordingsStarted   int64
	PlaybacksStarted    int64
	APICallsTotal       int64
	APICallsSuccessful  int64
	LastUpdateTime      time.Time
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:   m.InterviewsStarted,
		InterviewsCompleted: m.InterviewsCompleted,
		ResponsesSubmitted:  m.ResponsesSubmitted,
		RecordingsStarted:   m.RecordingsStarted,
		PlaybacksStarted:    m.PlaybacksStarted,
		APICallsTotal:       m.APICallsTotal,
		APICallsSuccessful:  m.APICallsSuccessful,
		LastUpdateTime:      m.LastUpdateTime,
	}
}
