package application

import (
	"fmt"
	"strings"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

type AgendaService struct {
	state *SyncEngine[domain.SessionState]
}

var _ AgendaClearer = (*AgendaService)(nil)

func NewAgendaService(state *SyncEngine[domain.SessionState]) *AgendaService {
	return &AgendaService{state: state}
}

func (s *AgendaService) Current() string {
	items := s.state.Items()
	if len(items) == 0 {
		return ""
	}
	return items[0].Agenda
}

func (s *AgendaService) Set(agenda string) error {
	agenda = strings.TrimSpace(agenda)
	if agenda == "" {
		return domain.Required("agenda")
	}
	return s.write(agenda)
}

func (s *AgendaService) Clear() error {
	return s.write("")
}

func (s *AgendaService) write(agenda string) error {
	sessionID := s.state.SessionID()
	if sessionID == "" {
		return fmt.Errorf("set agenda: %w", domain.ErrNoActiveSession)
	}

	if s.state.Mutate(ports.Filter{"session_id": sessionID}, ports.Patch{"current_agenda": agenda}) > 0 {
		return nil
	}
	if agenda == "" {
		return nil
	}
	if _, err := s.state.Insert(domain.SessionState{SessionID: sessionID, Agenda: agenda}); err != nil {
		return fmt.Errorf("set agenda: %w", err)
	}
	return nil
}
