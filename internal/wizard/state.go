package wizard

import "github.com/magabrotheeeer/club-checkout/internal/models"

// StepState - состояние одного шага для индикатора прогресса.
type StepState struct {
	Number   Step `json:"number"`
	Active   bool `json:"active"`
	Complete bool `json:"complete"`
}

// State - согласованный снимок сессии для отдачи клиенту.
// Пароль в снимок не попадает.
type State struct {
	ID             string            `json:"id"`
	CurrentStep    Step              `json:"currentStep"`
	Steps          []StepState       `json:"steps"`
	Progress       float64           `json:"progress"`
	Club           *models.Club      `json:"club"`
	Plan           *models.Plan      `json:"plan"`
	Plans          []models.Plan     `json:"plans"`
	PlansLoading   bool              `json:"plansLoading"`
	PersonalData   PersonalData      `json:"personalData"`
	Errors         map[string]string `json:"errors"`
	Valid          bool              `json:"valid"`
	StartDate      string            `json:"startDate"`
	MinStartDate   string            `json:"minStartDate"`
	StartDateLabel string            `json:"startDateLabel,omitempty"`
	EndDate        string            `json:"endDate,omitempty"`
	TotalDue       float64           `json:"totalDue"`
	Submitting     bool              `json:"submitting"`
}

// State возвращает снимок сессии, снятый под одной блокировкой.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.todayLocked()
	st := State{
		ID:             s.id,
		CurrentStep:    s.step,
		Progress:       s.progressLocked(),
		Plans:          make([]models.Plan, len(s.catalog)),
		PlansLoading:   s.pending > 0,
		PersonalData:   s.data,
		Errors:         s.data.Errors(s.touched),
		Valid:          s.data.Valid(),
		StartDate:      FormatDate(s.startDate),
		MinStartDate:   FormatDate(today),
		StartDateLabel: RelativeLabel(s.startDate, today),
		Submitting:     s.submitting,
	}
	st.PersonalData.Password = ""
	copy(st.Plans, s.catalog)

	for n := StepClub; n <= StepPersonalData; n++ {
		st.Steps = append(st.Steps, StepState{
			Number:   n,
			Active:   n == s.step,
			Complete: s.stepCompleteLocked(n),
		})
	}
	if s.club != nil {
		club := *s.club
		st.Club = &club
	}
	if s.plan != nil {
		plan := *s.plan
		st.Plan = &plan
		st.TotalDue = plan.TotalDue()
		st.EndDate = FormatDate(EndDate(s.startDate, plan.Duration))
	}
	return st
}
