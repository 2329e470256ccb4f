package simulator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type State int

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	default:
		return "STOPPED"
	}
}

// Progress is notified once per bootstrap record. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(num int) error
}

type Stats struct {
	TicksRun        int64 `json:"ticks_run"`
	TicksSkipped    int64 `json:"ticks_skipped"`
	SamplesAppended int64 `json:"samples_appended"`
	AppendFailures  int64 `json:"append_failures"`
}

type Option func(*Simulator)

func WithOutput(output OutputDestination) Option {
	return func(s *Simulator) { s.output = output }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func WithProgress(p Progress) Option {
	return func(s *Simulator) { s.progress = p }
}

// Simulator drives the traffic sample factory for every monitored location,
// either on a recurring schedule (Start) or as a one-shot backfill (Bootstrap),
// and appends the results to the repository.
type Simulator struct {
	Config *models.Config

	locations []string
	repo      repositories.TrafficSampleRepository
	factory   *factories.TrafficSampleFactory
	output    OutputDestination
	topic     string
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	progress  Progress

	mu        sync.Mutex // guards state, cron and runCtx
	state     State
	cron      *cron.Cron
	runCtx    context.Context
	cancelRun context.CancelFunc

	ticking atomic.Bool

	ticksRun        atomic.Int64
	ticksSkipped    atomic.Int64
	samplesAppended atomic.Int64
	appendFailures  atomic.Int64
}

func NewSimulator(config *models.Config, repo repositories.TrafficSampleRepository, factory *factories.TrafficSampleFactory, opts ...Option) *Simulator {
	s := &Simulator{
		Config:    config,
		locations: append([]string(nil), config.Locations...),
		repo:      repo,
		factory:   factory,
		topic:     config.KafkaTopic,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     cuid.New,
	}
	if s.topic == "" {
		s.topic = models.TopicTrafficSamples
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locations returns a copy of the monitored set.
func (s *Simulator) Locations() []string {
	return append([]string(nil), s.locations...)
}

// RunLiveTick generates one sample per monitored location stamped with the
// current time and appends each one. A failed append does not stop the batch;
// all failures are returned together once every location has been processed.
// Only one tick runs at a time, a concurrent call gets ErrTickInProgress.
func (s *Simulator) RunLiveTick(ctx context.Context) error {
	if !s.ticking.CompareAndSwap(false, true) {
		s.ticksSkipped.Add(1)
		return ErrTickInProgress
	}
	defer s.ticking.Store(false)

	start := s.now()
	var errs error
	for _, location := range s.locations {
		sample := s.factory.CreateTrafficSample(location, start)
		errs = multierr.Append(errs, s.persist(ctx, sample))
	}
	s.ticksRun.Add(1)

	if errs != nil {
		s.logger.Warn("live tick completed with errors",
			zap.Int("locations", len(s.locations)),
			zap.Int("failures", len(multierr.Errors(errs))),
			zap.Error(errs))
		return errs
	}
	s.logger.Debug("live tick completed", zap.Int("locations", len(s.locations)), zap.Time("timestamp", start))
	return nil
}

// Bootstrap backfills cycles rounds of history. Each record gets a timestamp
// up to the configured window (24h by default) in the past. Records are
// appended immediately; failures are isolated per record and returned together.
func (s *Simulator) Bootstrap(ctx context.Context, cycles int) error {
	window := s.Config.BootstrapWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	now := s.now()

	s.logger.Info("bootstrapping traffic history",
		zap.Int("cycles", cycles),
		zap.Int("locations", len(s.locations)),
		zap.Duration("window", window))

	var errs error
	for i := 0; i < cycles; i++ {
		for _, location := range s.locations {
			if err := ctx.Err(); err != nil {
				return multierr.Append(errs, err)
			}
			sample := s.factory.CreateTrafficSample(location, s.factory.PastTimestamp(now, window))
			errs = multierr.Append(errs, s.persist(ctx, sample))
			if s.progress != nil {
				_ = s.progress.Add(1)
			}
		}
	}

	if errs != nil {
		s.logger.Warn("bootstrap completed with errors", zap.Int("failures", len(multierr.Errors(errs))))
		return errs
	}
	s.logger.Info("bootstrap completed", zap.Int("samples", cycles*len(s.locations)))
	return nil
}

func (s *Simulator) persist(ctx context.Context, sample *models.TrafficSample) error {
	sample.ID = s.newID()
	if err := s.repo.Append(ctx, sample); err != nil {
		s.appendFailures.Add(1)
		return &StoreError{Op: "append", Location: sample.Location, Err: err}
	}
	s.samplesAppended.Add(1)

	if s.output == nil {
		return nil
	}
	msg, err := serializeSample(sample)
	if err == nil {
		err = s.output.WriteMessage(s.topic, msg)
	}
	if err != nil {
		return &OutputError{Topic: s.topic, SampleID: sample.ID, Err: err}
	}
	return nil
}

// Start runs RunLiveTick every interval until Stop is called. Calling Start
// on a running simulator does nothing.
func (s *Simulator) Start(interval time.Duration) error {
	if interval <= 0 {
		return errors.New("simulator: interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return nil
	}

	cl := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	c.Schedule(fixedInterval(interval), cron.FuncJob(s.scheduledTick))

	s.runCtx, s.cancelRun = context.WithCancel(context.Background())
	s.cron = c
	s.state = StateRunning
	c.Start()

	s.logger.Info("traffic simulator started",
		zap.Duration("interval", interval),
		zap.Strings("locations", s.locations))
	return nil
}

func (s *Simulator) scheduledTick() {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	err := s.RunLiveTick(ctx)
	if errors.Is(err, ErrTickInProgress) {
		s.logger.Warn("previous tick still running, skipping")
	}
}

// Stop stops scheduling new ticks and waits for the in-flight tick, if any, to
// finish. The state only becomes STOPPED after that tick completes. If ctx ends
// first Stop returns its error and the transition completes in the background.
func (s *Simulator) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.mu.Unlock()

	drained := c.Stop()
	finish := func() {
		s.mu.Lock()
		if s.cron == c {
			s.cancelRun()
			s.cron = nil
			s.runCtx = nil
			s.state = StateStopped
		}
		s.mu.Unlock()
	}

	select {
	case <-drained.Done():
		finish()
		s.logger.Info("traffic simulator stopped")
		return nil
	case <-ctx.Done():
		go func() {
			<-drained.Done()
			finish()
		}()
		return ctx.Err()
	}
}

func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulator) Stats() Stats {
	return Stats{
		TicksRun:        s.ticksRun.Load(),
		TicksSkipped:    s.ticksSkipped.Load(),
		SamplesAppended: s.samplesAppended.Load(),
		AppendFailures:  s.appendFailures.Load(),
	}
}

// LatestByLocation returns the newest sample of each monitored location, in
// monitored-set order. Locations without samples are left out.
func (s *Simulator) LatestByLocation(ctx context.Context) ([]*models.TrafficSample, error) {
	latest, err := s.repo.FindLatestPerLocation(ctx)
	if err != nil {
		return nil, &StoreError{Op: "find latest", Err: err}
	}

	byLocation := make(map[string]*models.TrafficSample, len(latest))
	for _, sample := range latest {
		byLocation[sample.Location] = sample
	}
	out := make([]*models.TrafficSample, 0, len(s.locations))
	for _, location := range s.locations {
		if sample, ok := byLocation[location]; ok {
			out = append(out, sample)
		}
	}
	return out, nil
}

// HistoryByLocation returns every stored sample for location, newest first.
func (s *Simulator) HistoryByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error) {
	history, err := s.repo.FindByLocation(ctx, location)
	if err != nil {
		return nil, &StoreError{Op: "find", Location: location, Err: err}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})
	return history, nil
}

// fixedInterval fires every d after the previous activation. Unlike
// cron.Every it keeps sub-second precision.
type fixedInterval time.Duration

func (d fixedInterval) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// cronLogger routes cron's own logging into zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
