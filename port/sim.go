package port

import "github.com/gammazero/deque"

// Sim is an in-memory stand-in for a hardware controller, used for dry
// runs and in tests. Slave responses are scripted in a queue consumed one
// word per exchange; when the queue runs dry the slave answers
// DefaultResponse. Every Configure call and every word shifted out is
// recorded.
type Sim struct {
	responses deque.Deque[uint16]
	sent      []uint16
	configs   []Format

	DefaultResponse uint16
	// When set, every Exchange / Configure fails with this error.
	ExchangeErr  error
	ConfigureErr error
}

func NewSim() *Sim {
	return &Sim{}
}

// Script appends slave responses to the queue.
func (s *Sim) Script(responses ...uint16) {
	for _, r := range responses {
		s.responses.PushBack(r)
	}
}

func (s *Sim) Configure(f Format) error {
	if s.ConfigureErr != nil {
		return s.ConfigureErr
	}
	s.configs = append(s.configs, f)
	return nil
}

func (s *Sim) Exchange(w uint16) (uint16, error) {
	if s.ExchangeErr != nil {
		return 0, s.ExchangeErr
	}
	s.sent = append(s.sent, w)
	if s.responses.Len() == 0 {
		return s.DefaultResponse, nil
	}
	return s.responses.PopFront(), nil
}

func (s *Sim) Close() error {
	return nil
}

// Sent returns the words shifted out so far, in order.
func (s *Sim) Sent() []uint16 {
	return s.sent
}

// Configs returns the formats applied so far, in order.
func (s *Sim) Configs() []Format {
	return s.configs
}

// Reset clears the recorded traffic and the response queue.
func (s *Sim) Reset() {
	s.sent = nil
	s.configs = nil
	s.responses.Clear()
}
