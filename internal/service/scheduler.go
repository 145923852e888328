package service

import (
	"github.com/robfig/cron/v3"

	"github.com/iliyamo/garage-api/internal/logger"
)

// Sweeper is anything holding per-client state that expires, such as the
// login limiter and the API throttle.  Sweep returns how many entries it
// dropped.
type Sweeper interface {
	Sweep() int
}

// Scheduler runs periodic eviction of rate limit state.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// NewScheduler registers every sweeper under spec, a standard five-field
// cron expression or a descriptor such as "@every 1m".
func NewScheduler(spec string, log *logger.Logger, sweepers map[string]Sweeper) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Scheduler{cron: cron.New(), log: log.WithComponent("scheduler")}
	for name, sw := range sweepers {
		if sw == nil {
			continue
		}
		name, sw := name, sw
		if _, err := s.cron.AddFunc(spec, func() {
			if n := sw.Sweep(); n > 0 {
				s.log.Debugw("swept expired entries", "store", name, "removed", n)
			}
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start launches the cron goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running sweeps to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }

// Len reports how many jobs are registered.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }
