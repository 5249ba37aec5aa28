package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trident/internal/device"
	"trident/internal/platform/circuit"
)

type RecorderSuite struct {
	suite.Suite

	mu       sync.Mutex
	batches  []batch
	fail     bool
	requests int
	server   *httptest.Server
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.batches = nil
	s.fail = false
	s.requests = 0
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.requests++
		if s.fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var b batch
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&b))
		s.Equal("Bearer test-auth", r.Header.Get("Authorization"))
		s.batches = append(s.batches, b)
		w.WriteHeader(http.StatusAccepted)
	}))
}

func (s *RecorderSuite) TearDownTest() {
	s.server.Close()
}

func (s *RecorderSuite) newRecorder(opts ...Option) *Recorder {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		// Keep the background flusher out of the way; tests flush explicitly.
		WithFlushInterval(time.Hour),
	}
	return NewRecorder(s.server.URL, "test-auth", device.Metadata{Platform: "desktop"},
		append(base, opts...)...)
}

func (s *RecorderSuite) uploadedBatches() []batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]batch(nil), s.batches...)
}

func (s *RecorderSuite) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *RecorderSuite) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *RecorderSuite) TestFlushPreservesPerAttemptOrder() {
	r := s.newRecorder()
	defer r.Close(context.Background())

	r.Record("attempt-1", "initialized")
	r.Record("attempt-1", "setup-completed")
	r.Record("attempt-1", "verification-flow.completed")

	s.Require().NoError(r.Flush(context.Background()))

	batches := s.uploadedBatches()
	s.Require().Len(batches, 1)
	names := make([]string, 0, 3)
	for _, ev := range batches[0].Events {
		s.Equal("attempt-1", ev.AttemptID)
		names = append(names, ev.Name)
	}
	s.Equal([]string{"initialized", "setup-completed", "verification-flow.completed"}, names)
	s.Equal("desktop", batches[0].Device.Platform)
}

func (s *RecorderSuite) TestFlushBatchesPerAttempt() {
	r := s.newRecorder()
	defer r.Close(context.Background())

	r.Record("attempt-1", "initialized")
	r.Record("attempt-2", "initialized")
	r.Record("attempt-1", "verification-flow.completed")

	s.Require().NoError(r.Flush(context.Background()))

	batches := s.uploadedBatches()
	s.Require().Len(batches, 2)
	for _, b := range batches {
		attemptID := b.Events[0].AttemptID
		for _, ev := range b.Events {
			s.Equal(attemptID, ev.AttemptID, "a batch must never mix attempts")
		}
	}
}

func (s *RecorderSuite) TestFailedUploadRequeuesInOrder() {
	r := s.newRecorder()
	defer r.Close(context.Background())

	r.Record("attempt-1", "initialized")
	r.Record("attempt-1", "verification-flow.completed")

	s.setFail(true)
	s.Error(r.Flush(context.Background()))
	s.Empty(s.uploadedBatches())

	// New events recorded after the failure must still come after the
	// requeued ones.
	r.Record("attempt-1", "late-event")
	s.setFail(false)
	s.Require().NoError(r.Flush(context.Background()))

	batches := s.uploadedBatches()
	s.Require().Len(batches, 1)
	names := make([]string, 0, 3)
	for _, ev := range batches[0].Events {
		names = append(names, ev.Name)
	}
	s.Equal([]string{"initialized", "verification-flow.completed", "late-event"}, names)
}

func (s *RecorderSuite) TestFlushWithEmptyQueueIsANoOp() {
	r := s.newRecorder()
	defer r.Close(context.Background())

	s.Require().NoError(r.Flush(context.Background()))
	s.Empty(s.uploadedBatches())
}

func (s *RecorderSuite) TestCloseDrainsTheQueue() {
	r := s.newRecorder()
	r.Record("attempt-1", "initialized")

	s.Require().NoError(r.Close(context.Background()))

	s.Require().Len(s.uploadedBatches(), 1)
}

func (s *RecorderSuite) TestOpenCircuitCollapsesFlushesToOneProbe() {
	b := circuit.New(circuit.WithFailureThreshold(2))
	r := s.newRecorder(WithBreaker(b))
	defer r.Close(context.Background())

	s.setFail(true)
	r.Record("attempt-1", "initialized")
	s.Error(r.Flush(context.Background()))
	s.Error(r.Flush(context.Background()))
	s.Require().True(b.IsOpen(), "two consecutive failed uploads should open the circuit")

	// Three attempts are queued, but an open circuit sends a single probe
	// batch per flush instead of one upload per attempt.
	r.Record("attempt-2", "initialized")
	r.Record("attempt-3", "initialized")
	before := s.requestCount()
	s.Error(r.Flush(context.Background()))
	s.Equal(1, s.requestCount()-before)
	s.True(b.IsOpen())
	s.Empty(s.uploadedBatches())
}

func (s *RecorderSuite) TestSuccessfulProbeClosesTheCircuitAndDelivers() {
	b := circuit.New(circuit.WithFailureThreshold(1))
	r := s.newRecorder(WithBreaker(b))
	defer r.Close(context.Background())

	s.setFail(true)
	r.Record("attempt-1", "initialized")
	r.Record("attempt-1", "verification-flow.completed")
	s.Error(r.Flush(context.Background()))
	s.Require().True(b.IsOpen())

	r.Record("attempt-2", "initialized")

	// The first flush after recovery sends only the probe batch; the next
	// one drains the rest in order.
	s.setFail(false)
	s.Require().NoError(r.Flush(context.Background()))
	s.False(b.IsOpen())
	s.Require().Len(s.uploadedBatches(), 1)

	s.Require().NoError(r.Flush(context.Background()))
	batches := s.uploadedBatches()
	s.Require().Len(batches, 2)
	names := make([]string, 0, 2)
	for _, ev := range batches[0].Events {
		names = append(names, ev.Name)
	}
	s.Equal([]string{"initialized", "verification-flow.completed"}, names)
	s.Equal("attempt-1", batches[0].Events[0].AttemptID)
	s.Equal("attempt-2", batches[1].Events[0].AttemptID)
}

func (s *RecorderSuite) TestRecordNeverBlocksOnTheNetwork() {
	s.setFail(true)
	r := s.newRecorder()
	defer r.Close(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Record("attempt-1", "event")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Record blocked")
	}
}
