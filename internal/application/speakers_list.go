package application

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

type SpeakersListOptions struct {
	Config    domain.TimerConfig
	Interval  time.Duration
	NewTicker ports.TickerFactory
	Cues      ports.CuePlayer
	Logger    *slog.Logger
}

// SpeakersList is the general speakers list: a queue of delegations and a
// speaker timer. A speaker whose time runs out is marked as spoken and the
// next one in line is called, without starting the clock.
type SpeakersList struct {
	roster *RosterService
	driver *timerDriver
	logger *slog.Logger

	mu      sync.Mutex
	queue   []string
	current string

	observersMu  sync.Mutex
	observers    map[int]func(TimerUpdate)
	nextObserver int
}

func NewSpeakersList(roster *RosterService, opts SpeakersListOptions) (*SpeakersList, error) {
	if opts.Config.Total == 0 {
		opts.Config = domain.DefaultTimerConfig(domain.TimerSpeaker)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	timer, err := domain.NewTimer(domain.TimerSpeaker, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("new speaker timer: %w", err)
	}

	s := &SpeakersList{
		roster:    roster,
		logger:    opts.Logger.With("component", "speakers"),
		observers: map[int]func(TimerUpdate){},
	}
	s.driver = newTimerDriver(timer, opts.NewTicker, opts.Interval, opts.Cues, s.logger, func(update TimerUpdate) {
		for _, event := range update.Events {
			if event == domain.EventExpired {
				s.expired()
				update.State = s.driver.state()
			}
		}
		s.notify(update)
	})
	return s, nil
}

func (s *SpeakersList) Add(country string) error {
	entry, err := s.roster.Find(country)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Country == s.current || indexOf(s.queue, entry.Country) >= 0 {
		v := domain.NewValidationError()
		v.Add("country", fmt.Sprintf("%s is already on the list", entry.Country))
		return v
	}
	s.queue = append(s.queue, entry.Country)
	return nil
}

func (s *SpeakersList) Remove(country string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, queued := range s.queue {
		if strings.EqualFold(queued, strings.TrimSpace(country)) {
			s.queue = append(s.queue[:i:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (s *SpeakersList) Queue() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queue...)
}

func (s *SpeakersList) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SpeakersList) Timer() domain.TimerState {
	return s.driver.state()
}

// Start calls the next speaker when nobody holds the floor and runs the clock.
func (s *SpeakersList) Start() error {
	s.mu.Lock()
	if s.current == "" {
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return fmt.Errorf("start speaker: list is empty: %w", domain.ErrInvalidTransition)
		}
		s.current = s.queue[0]
		s.queue = s.queue[1:]
	}
	s.mu.Unlock()

	_, err := s.driver.start()
	return err
}

func (s *SpeakersList) Pause() error {
	return s.driver.pause()
}

func (s *SpeakersList) Reset() {
	s.driver.reset()
}

func (s *SpeakersList) Configure(cfg domain.TimerConfig) error {
	return s.driver.configure(cfg)
}

// YieldToChair ends the current speech and calls the next speaker.
func (s *SpeakersList) YieldToChair() error {
	s.driver.reset()

	s.mu.Lock()
	speaker := s.current
	s.advanceLocked()
	s.mu.Unlock()

	if speaker == "" {
		return nil
	}
	return s.roster.MarkSpoken(speaker)
}

// YieldToQuestions stops the clock and keeps the speaker on the floor.
func (s *SpeakersList) YieldToQuestions() error {
	if err := s.driver.pause(); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}

	s.mu.Lock()
	speaker := s.current
	s.mu.Unlock()

	if speaker == "" {
		return nil
	}
	return s.roster.MarkSpoken(speaker)
}

// Observe registers fn for every speaker timer update. An update carrying
// domain.EventExpired is delivered after the next speaker has been called.
func (s *SpeakersList) Observe(fn func(TimerUpdate)) func() {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() {
		s.observersMu.Lock()
		defer s.observersMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *SpeakersList) notify(update TimerUpdate) {
	s.observersMu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(TimerUpdate), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.observersMu.Unlock()

	for _, fn := range fns {
		fn(update)
	}
}

func (s *SpeakersList) Close() {
	s.driver.close()
}

func (s *SpeakersList) expired() {
	s.mu.Lock()
	speaker := s.current
	if len(s.queue) > 0 {
		s.advanceLocked()
	}
	s.mu.Unlock()

	if speaker != "" {
		if err := s.roster.MarkSpoken(speaker); err != nil {
			s.logger.Warn("mark speaker as spoken", "country", speaker, "error", err)
		}
	}
	if s.Current() != speaker {
		s.driver.reset()
	}
}

func (s *SpeakersList) advanceLocked() {
	if len(s.queue) == 0 {
		s.current = ""
		return
	}
	s.current = s.queue[0]
	s.queue = s.queue[1:]
}

func indexOf(list []string, value string) int {
	for i, item := range list {
		if item == value {
			return i
		}
	}
	return -1
}
