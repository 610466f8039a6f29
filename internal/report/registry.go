package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/domain"
	"github.com/hamed0406/storewatch/internal/notify"
	"github.com/hamed0406/storewatch/internal/repo"
	"github.com/hamed0406/storewatch/internal/sink"
)

type job struct {
	id          string
	state       domain.ReportState
	path        string
	reason      string
	submittedAt time.Time
	finishedAt  *time.Time
}

func (j *job) view() domain.JobView {
	v := domain.JobView{
		ReportID:    j.id,
		State:       j.state,
		Path:        j.path,
		Reason:      j.reason,
		SubmittedAt: j.submittedAt,
	}
	if j.finishedAt != nil {
		t := *j.finishedAt
		v.FinishedAt = &t
	}
	return v
}

// Registry owns the report job table. Submit and Poll are cheap and never
// block on a run; each run happens on its own goroutine and is the only
// writer for its job after Submit. All job state lives behind one mutex so a
// poller can never see a completed job without its artifact path.
type Registry struct {
	log      *zap.Logger
	store    repo.ObservationStore
	sink     sink.Sink
	notifier notify.Notifier

	runTimeout time.Duration
	now        func() time.Time // swapped in tests

	mu   sync.Mutex
	jobs map[string]*job

	wg sync.WaitGroup
}

func NewRegistry(log *zap.Logger, store repo.ObservationStore, s sink.Sink, notifier notify.Notifier, runTimeout time.Duration) *Registry {
	if runTimeout <= 0 {
		runTimeout = 5 * time.Minute
	}
	return &Registry{
		log:        log,
		store:      store,
		sink:       s,
		notifier:   notifier,
		runTimeout: runTimeout,
		now:        time.Now,
		jobs:       make(map[string]*job),
	}
}

// Submit validates the requested range, records a QUEUED job and schedules
// the aggregation off the calling path. Defaults: end = now, start = end-24h.
func (r *Registry) Submit(req domain.ReportRequest) (string, error) {
	now := r.now().UTC()
	end := now
	if req.End != nil {
		end = req.End.UTC()
	}
	start := end.Add(-windowDay)
	if req.Start != nil {
		start = req.Start.UTC()
	}
	if start.After(end) {
		return "", domain.ErrInvalidRange
	}

	id := uuid.NewString()
	r.mu.Lock()
	r.jobs[id] = &job{id: id, state: domain.StateQueued, submittedAt: now}
	r.mu.Unlock()
	jobsSubmitted.Inc()

	r.wg.Add(1)
	go r.run(id, req.StoreID, start, end)

	r.log.Info("report_queued",
		zap.String("report_id", id),
		zap.String("store_id", string(req.StoreID)),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return id, nil
}

// Poll returns the current snapshot for a job, or ErrReportNotFound.
func (r *Registry) Poll(reportID string) (domain.JobView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[reportID]
	if !ok {
		return domain.JobView{}, domain.ErrReportNotFound
	}
	return j.view(), nil
}

// Wait blocks until every scheduled run has reached a terminal state.
// Used for drain-on-shutdown and in tests.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// EvictExpired drops terminal jobs that finished more than ttl ago and
// returns the artifact paths they held so the caller can remove those too.
func (r *Registry) EvictExpired(ttl time.Duration) []string {
	cutoff := r.now().UTC().Add(-ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	var paths []string
	for id, j := range r.jobs {
		if !j.state.Terminal() || j.finishedAt == nil || j.finishedAt.After(cutoff) {
			continue
		}
		if j.path != "" {
			paths = append(paths, j.path)
		}
		delete(r.jobs, id)
	}
	return paths
}

func (r *Registry) run(reportID string, storeID domain.StoreID, start, end time.Time) {
	defer r.wg.Done()
	began := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), r.runTimeout)
	defer cancel()

	r.transition(reportID, func(j *job) { j.state = domain.StateInProgress })

	path, err := r.generate(ctx, reportID, storeID, start, end)

	finished := r.now().UTC()
	runSeconds.Observe(time.Since(began).Seconds())
	if err != nil {
		r.transition(reportID, func(j *job) {
			j.state = domain.StateFailed
			j.reason = err.Error()
			j.finishedAt = &finished
		})
		jobsFinished.WithLabelValues(string(domain.StateFailed)).Inc()
		r.log.Warn("report_failed", zap.String("report_id", reportID), zap.Error(err))
		if r.notifier != nil {
			nctx, ncancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = r.notifier.Send(nctx, "Report FAILED",
				fmt.Sprintf("report_id: %s\nreason: %s", reportID, err.Error()))
			ncancel()
		}
		return
	}

	r.transition(reportID, func(j *job) {
		j.state = domain.StateCompleted
		j.path = path
		j.finishedAt = &finished
	})
	jobsFinished.WithLabelValues(string(domain.StateCompleted)).Inc()
	r.log.Info("report_completed",
		zap.String("report_id", reportID),
		zap.String("path", path),
		zap.Duration("took", time.Since(began)),
	)
}

// generate does the slow part: fresh snapshot read, aggregation, artifact
// write. A panic anywhere in here becomes an error so the job still reaches a
// terminal state instead of sticking at IN_PROGRESS.
func (r *Registry) generate(ctx context.Context, reportID string, storeID domain.StoreID, start, end time.Time) (path string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("report run panicked: %v", p)
		}
	}()

	observations, err := r.store.ListStatusObservations(ctx, storeID)
	if err != nil {
		return "", fmt.Errorf("list observations: %w", err)
	}
	timezones, err := r.store.ListTimezones(ctx)
	if err != nil {
		return "", fmt.Errorf("list timezones: %w", err)
	}
	// Business hours ride along with every snapshot for parity with
	// ingestion; the windowed counts do not consume them yet.
	hours, err := r.store.ListBusinessHours(ctx)
	if err != nil {
		return "", fmt.Errorf("list business hours: %w", err)
	}
	r.log.Debug("report_snapshot",
		zap.String("report_id", reportID),
		zap.Int("observations", len(observations)),
		zap.Int("timezones", len(timezones)),
		zap.Int("business_hours", len(hours)),
	)

	records := Aggregate(observations, timezones, start, end)
	path, err = r.sink.Write(ctx, reportID, records)
	if err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

func (r *Registry) transition(reportID string, apply func(*job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[reportID]; ok {
		apply(j)
	}
}
