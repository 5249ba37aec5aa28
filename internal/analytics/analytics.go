// Package analytics buffers verification-flow events and uploads them to the
// gateway in batches. Relative order of events within one attempt is
// preserved end to end; batching and delivery are asynchronous.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trident/internal/device"
	"trident/internal/platform/circuit"
	domainerrors "trident/pkg/domain-errors"
)

const (
	defaultFlushInterval = 15 * time.Second
	defaultUploadTimeout = 10 * time.Second

	// maxUploadConcurrency bounds parallel per-attempt uploads. Events from
	// one attempt always travel in a single ordered batch, so concurrency
	// across attempts cannot reorder an attempt's events.
	maxUploadConcurrency = 4

	// uploadFailureThreshold is how many consecutive failed batch uploads
	// open the upload circuit.
	uploadFailureThreshold = 3
)

// Event is one recorded flow event.
type Event struct {
	ID        string    `json:"id"`
	AttemptID string    `json:"attempt_id"`
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
}

// batch is the upload wire body.
type batch struct {
	Events []Event         `json:"events"`
	Device device.Metadata `json:"device"`
}

// Recorder implements threedsecure.AnalyticsRecorder with an in-memory
// ordered queue and a background flusher. Uploads are circuit-breaker
// guarded: after uploadFailureThreshold consecutive failures the recorder
// stops hitting the network and each subsequent flush sends a single probe
// batch until one succeeds.
type Recorder struct {
	endpoint      string
	authorization string
	deviceMeta    device.Metadata
	httpClient    *http.Client
	logger        *slog.Logger
	flushInterval time.Duration
	breaker       *circuit.Breaker

	mu      sync.Mutex
	pending []Event

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets the logger for the recorder.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = l
	}
}

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(r *Recorder) {
		r.httpClient = client
	}
}

// WithFlushInterval overrides how often the background flusher runs.
func WithFlushInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		r.flushInterval = interval
	}
}

// WithBreaker replaces the upload circuit breaker (for testing or custom
// thresholds).
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Recorder) {
		r.breaker = b
	}
}

// NewRecorder builds a recorder uploading to the given analytics endpoint
// and starts its background flusher. Call Close to stop it and drain the
// queue.
func NewRecorder(endpoint, authorization string, meta device.Metadata, opts ...Option) *Recorder {
	r := &Recorder{
		endpoint:      endpoint,
		authorization: authorization,
		deviceMeta:    meta,
		logger:        slog.Default(),
		flushInterval: defaultFlushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: defaultUploadTimeout}
	}
	if r.breaker == nil {
		r.breaker = circuit.New(circuit.WithFailureThreshold(uploadFailureThreshold))
	}
	go r.loop()
	return r
}

// Record appends an event to the queue. Never blocks on the network.
func (r *Recorder) Record(attemptID, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Event{
		ID:        uuid.NewString(),
		AttemptID: attemptID,
		Name:      event,
		At:        time.Now(),
	})
}

func (r *Recorder) loop() {
	defer close(r.done)
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.Flush(context.Background()); err != nil {
				r.logger.Warn("analytics flush failed, events requeued", "error", err)
			}
		case <-r.stop:
			return
		}
	}
}

// Flush uploads everything queued so far, one ordered batch per attempt,
// with bounded concurrency across attempts. Failed batches are requeued at
// the front so order is kept for the next flush. While the upload circuit
// is open only the first batch goes out, as a probe.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	taken := r.pending
	r.pending = nil
	r.mu.Unlock()
	if len(taken) == 0 {
		return nil
	}

	order, groups := groupByAttempt(taken)

	if r.breaker.IsOpen() {
		return r.probe(ctx, taken, order, groups)
	}

	var failedMu sync.Mutex
	var failed []Event

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxUploadConcurrency)
	for _, attemptID := range order {
		events := groups[attemptID]
		g.Go(func() error {
			if r.breaker.IsOpen() {
				failedMu.Lock()
				failed = append(failed, events...)
				failedMu.Unlock()
				return domainerrors.New(domainerrors.CodeTransport,
					"analytics uploads suspended while the circuit is open")
			}
			if err := r.upload(ctx, events); err != nil {
				if r.breaker.RecordFailure() {
					r.logger.Warn("analytics uploads failing, pausing deliveries",
						"error", err)
				}
				failedMu.Lock()
				failed = append(failed, events...)
				failedMu.Unlock()
				return err
			}
			r.breaker.RecordSuccess()
			return nil
		})
	}
	err := g.Wait()

	r.requeue(failed)
	return err
}

// probe sends the first queued batch while the circuit is open. On success
// the circuit may close and the remaining batches wait for the next flush;
// on failure everything is requeued untouched.
func (r *Recorder) probe(ctx context.Context, taken []Event, order []string, groups map[string][]Event) error {
	first := groups[order[0]]
	if err := r.upload(ctx, first); err != nil {
		r.breaker.RecordFailure()
		r.requeue(taken)
		return err
	}
	if r.breaker.RecordSuccess() {
		r.logger.Info("analytics uploads resumed after successful probe")
	}
	rest := make([]Event, 0, len(taken)-len(first))
	for _, attemptID := range order[1:] {
		rest = append(rest, groups[attemptID]...)
	}
	r.requeue(rest)
	return nil
}

// groupByAttempt splits events into one ordered batch per attempt, keeping
// the recording order inside each group and a stable group order.
func groupByAttempt(events []Event) (order []string, groups map[string][]Event) {
	order = make([]string, 0, 4)
	groups = make(map[string][]Event, 4)
	for _, ev := range events {
		if _, seen := groups[ev.AttemptID]; !seen {
			order = append(order, ev.AttemptID)
		}
		groups[ev.AttemptID] = append(groups[ev.AttemptID], ev)
	}
	return order, groups
}

// requeue puts events back at the front of the queue so they go out before
// anything recorded since the flush started.
func (r *Recorder) requeue(events []Event) {
	if len(events) == 0 {
		return
	}
	r.mu.Lock()
	r.pending = append(events, r.pending...)
	r.mu.Unlock()
}

func (r *Recorder) upload(ctx context.Context, events []Event) error {
	payload, err := json.Marshal(batch{Events: events, Device: r.deviceMeta})
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to marshal analytics batch")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal,
			"failed to create analytics request")
	}
	req.Header.Set("Content-Type", "application/json")
	if r.authorization != "" {
		req.Header.Set("Authorization", "Bearer "+r.authorization)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeTransport,
			"analytics upload failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return domainerrors.New(domainerrors.CodeTransport,
			fmt.Sprintf("analytics endpoint returned status %d", resp.StatusCode))
	}
	return nil
}

// Close stops the background flusher and drains the queue once.
func (r *Recorder) Close(ctx context.Context) error {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	<-r.done
	return r.Flush(ctx)
}
