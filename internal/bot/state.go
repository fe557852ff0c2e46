package bot

import "sync"

type dialogStep string

const (
	stepNone           dialogStep = "none"
	stepName           dialogStep = "name"
	stepPhone          dialogStep = "phone"
	stepDate           dialogStep = "date"
	stepRescheduleDate dialogStep = "reschedule_date"
)

type bookingDraft struct {
	Name  string
	Phone string
}

type userState struct {
	Step  dialogStep
	Draft bookingDraft
}

type stateStore struct {
	mu sync.Mutex
	m  map[int64]*userState
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]*userState)}
}

func (s *stateStore) get(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[userID]
	if st == nil {
		st = &userState{Step: stepNone}
		s.m[userID] = st
	}
	return st
}

func (s *stateStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
