package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/metrics"
)

const (
	DefaultQueueSize = 1024
	writeTimeout     = 5 * time.Second
)

// Recorder writes audit entries off the request path. Record never fails: a full queue
// drops the entry and sink errors are only logged and counted.
type Recorder struct {
	repo      domain.Repository
	publisher domain.Publisher // optional
	log       *logrus.Entry
	metrics   *metrics.Metrics
	now       func() time.Time

	queue     chan *domain.Log
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type Option func(*Recorder)

func WithPublisher(p domain.Publisher) Option { return func(r *Recorder) { r.publisher = p } }
func WithMetrics(m *metrics.Metrics) Option   { return func(r *Recorder) { r.metrics = m } }
func WithLogger(l *logrus.Entry) Option       { return func(r *Recorder) { r.log = l } }
func WithClock(now func() time.Time) Option   { return func(r *Recorder) { r.now = now } }

// NewRecorder starts the background writer. Call Close to drain it.
func NewRecorder(repo domain.Repository, queueSize int, opts ...Option) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	r := &Recorder{
		repo:  repo,
		log:   logrus.NewEntry(logrus.StandardLogger()),
		now:   func() time.Time { return time.Now().UTC() },
		queue: make(chan *domain.Log, queueSize),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.WithField("component", "audit")
	go r.run()
	return r
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	l := &domain.Log{
		EventID:       uuid.NewString(),
		ApplicationID: e.ApplicationID,
		Action:        e.Action,
		Details:       e.Details,
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		Timestamp:     r.now(),
	}
	if e.UserID != "" {
		uid := e.UserID
		l.UserID = &uid
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.log.WithField("action", l.Action).Warn("audit: recorder closed, entry dropped")
		r.metrics.AuditDropped()
		return
	}
	select {
	case r.queue <- l:
	default:
		r.log.WithFields(logrus.Fields{
			"action":         l.Action,
			"application_id": l.ApplicationID,
		}).Warn("audit: queue full, entry dropped")
		r.metrics.AuditDropped()
	}
}

// Close stops accepting entries and waits until queued ones are written or ctx ends.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for l := range r.queue {
		r.write(l)
	}
}

func (r *Recorder) write(l *domain.Log) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	entry := r.log.WithFields(logrus.Fields{
		"event_id":       l.EventID,
		"action":         l.Action,
		"application_id": l.ApplicationID,
	})
	if err := r.repo.Create(ctx, l); err != nil {
		entry.WithError(err).Error("audit: store write failed")
		r.metrics.AuditSinkFailed("db")
	}
	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, l); err != nil {
			entry.WithError(err).Error("audit: publish failed")
			r.metrics.AuditSinkFailed("kafka")
		}
	}
}
