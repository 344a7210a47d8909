package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

// TimerUpdate is published after every change of a timer.
type TimerUpdate struct {
	State  domain.TimerState
	Events []domain.TimerEvent
}

// timerDriver runs one domain.Timer against a wall clock ticker. A running
// timer owns exactly one ticker; any transition out of running stops it.
type timerDriver struct {
	timer     *domain.Timer
	newTicker ports.TickerFactory
	interval  time.Duration
	cues      ports.CuePlayer
	logger    *slog.Logger
	publish   func(TimerUpdate)

	mu  sync.Mutex
	run *timerRun
}

type timerRun struct {
	ticker ports.Ticker
	stop   chan struct{}
}

func newTimerDriver(timer *domain.Timer, newTicker ports.TickerFactory, interval time.Duration, cues ports.CuePlayer, logger *slog.Logger, publish func(TimerUpdate)) *timerDriver {
	if newTicker == nil {
		newTicker = ports.NewSystemTicker
	}
	if interval <= 0 {
		interval = time.Second
	}
	if publish == nil {
		publish = func(TimerUpdate) {}
	}

	return &timerDriver{
		timer:     timer,
		newTicker: newTicker,
		interval:  interval,
		cues:      cues,
		logger:    logger,
		publish:   publish,
	}
}

func (d *timerDriver) state() domain.TimerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer.State()
}

func (d *timerDriver) start() (domain.TimerState, error) {
	d.mu.Lock()
	if err := d.timer.Start(); err != nil {
		d.mu.Unlock()
		return domain.TimerState{}, err
	}
	run := &timerRun{ticker: d.newTicker(d.interval), stop: make(chan struct{})}
	d.run = run
	state := d.timer.State()
	d.mu.Unlock()

	go d.loop(run)
	d.publish(TimerUpdate{State: state})
	return state, nil
}

func (d *timerDriver) pause() error {
	d.mu.Lock()
	if err := d.timer.Pause(); err != nil {
		d.mu.Unlock()
		return err
	}
	d.stopLocked()
	state := d.timer.State()
	d.mu.Unlock()

	d.publish(TimerUpdate{State: state})
	return nil
}

func (d *timerDriver) reset() {
	d.mu.Lock()
	d.stopLocked()
	d.timer.Reset()
	state := d.timer.State()
	d.mu.Unlock()

	d.publish(TimerUpdate{State: state})
}

func (d *timerDriver) configure(cfg domain.TimerConfig) error {
	d.mu.Lock()
	if err := d.timer.Configure(cfg); err != nil {
		d.mu.Unlock()
		return err
	}
	state := d.timer.State()
	d.mu.Unlock()

	d.publish(TimerUpdate{State: state})
	return nil
}

func (d *timerDriver) nextSpeaker() error {
	d.mu.Lock()
	if err := d.timer.NextSpeaker(); err != nil {
		d.mu.Unlock()
		return err
	}
	state := d.timer.State()
	d.mu.Unlock()

	d.emit(domain.CueWarning)
	d.publish(TimerUpdate{State: state})
	return nil
}

func (d *timerDriver) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *timerDriver) loop(run *timerRun) {
	for {
		select {
		case <-run.stop:
			return
		case <-run.ticker.C():
			d.advance(run)
		}
	}
}

// advance applies one tick if run is still the live registration.
func (d *timerDriver) advance(run *timerRun) {
	d.mu.Lock()
	if d.run != run {
		d.mu.Unlock()
		return
	}
	events := d.timer.Tick()
	state := d.timer.State()
	if state.Phase != domain.PhaseRunning {
		d.stopLocked()
	}
	d.mu.Unlock()

	for _, event := range events {
		if cue, ok := domain.CueFor(event); ok {
			d.emit(cue)
		}
	}
	d.publish(TimerUpdate{State: state, Events: events})
}

func (d *timerDriver) stopLocked() {
	if d.run == nil {
		return
	}
	d.run.ticker.Stop()
	close(d.run.stop)
	d.run = nil
}

func (d *timerDriver) emit(cue domain.CueKind) {
	if d.cues == nil {
		return
	}
	if err := d.cues.EmitCue(context.Background(), cue); err != nil {
		d.logger.Debug("cue failed", "cue", cue, "error", err)
	}
}
