package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Sweeper interface {
	Sweep() int
}

type Warmer interface {
	WarmWeather(ctx context.Context, codes []string) int
}

type Options struct {
	SweepSchedule string
	WarmSchedule  string
	WarmAirports  []string
}

// Scheduler runs the weather cache housekeeping jobs on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	sweeper    Sweeper
	warmer     Warmer
	opts       Options
	logger     *zap.Logger
	mu         sync.Mutex
	running    bool
	sweepID    cron.EntryID
	warmID     cron.EntryID
	lastRun    time.Time
	lastSwept  int
	lastWarmed int
}

func NewScheduler(sweeper Sweeper, warmer Warmer, opts Options, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		warmer:  warmer,
		opts:    opts,
		logger:  logger,
	}
}

// newCron returns an empty cron so a restart never inherits old entries.
func (s *Scheduler) newCron() *cron.Cron {
	cl := cronLogger{s.logger.Sugar()}
	return cron.New(cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))
}

// Start registers the jobs and starts the cron loop. The warm-up job is only
// registered when airports are configured.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	c := s.newCron()
	sweepID, err := c.AddFunc(s.opts.SweepSchedule, s.runSweep)
	if err != nil {
		return err
	}

	var warmID cron.EntryID
	if len(s.opts.WarmAirports) > 0 && s.warmer != nil {
		warmID, err = c.AddFunc(s.opts.WarmSchedule, s.runWarm)
		if err != nil {
			return err
		}
	}

	s.cron = c
	s.sweepID = sweepID
	s.warmID = warmID
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("sweep_schedule", s.opts.SweepSchedule),
		zap.String("warm_schedule", s.opts.WarmSchedule),
		zap.Strings("warm_airports", s.opts.WarmAirports))

	// Warm immediately on start
	if s.warmID != 0 {
		go s.runWarm()
	}
	return nil
}

func (s *Scheduler) runSweep() {
	removed := s.sweeper.Sweep()

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastSwept = removed
	s.mu.Unlock()

	s.logger.Debug("Weather cache swept", zap.Int("removed", removed))
}

func (s *Scheduler) runWarm() {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	warmed := s.warmer.WarmWeather(ctx, s.opts.WarmAirports)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastWarmed = warmed
	s.mu.Unlock()

	s.logger.Info("Scheduled weather warm-up completed",
		zap.Int("warmed", warmed),
		zap.Duration("duration", time.Since(startTime)))
}

// RunOnce runs every job synchronously.
func (s *Scheduler) RunOnce() {
	s.runSweep()
	if len(s.opts.WarmAirports) > 0 && s.warmer != nil {
		s.runWarm()
	}
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering scheduled jobs")
	go s.RunOnce()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-c.Stop().Done()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":        s.running,
		"sweep_schedule": s.opts.SweepSchedule,
		"warm_schedule":  s.opts.WarmSchedule,
		"warm_airports":  s.opts.WarmAirports,
		"last_run":       s.lastRun,
		"last_swept":     s.lastSwept,
		"last_warmed":    s.lastWarmed,
	}
	if s.running {
		status["next_sweep"] = s.cron.Entry(s.sweepID).Next
		if s.warmID != 0 {
			status["next_warm"] = s.cron.Entry(s.warmID).Next
		}
	}
	return status
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
