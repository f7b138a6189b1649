// Package wizard реализует мастер оформления абонемента из трёх шагов:
// выбор клуба, выбор тарифа и ввод персональных данных.
//
// Session хранит состояние одного оформления, следит за переходами между
// шагами, нормализует и проверяет поля формы, асинхронно обновляет каталог
// тарифов выбранного клуба и передаёт готовый заказ в точку инициации платежа.
package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// Step - номер шага мастера.
type Step int

// Шаги мастера.
const (
	StepClub         Step = 1
	StepPlan         Step = 2
	StepPersonalData Step = 3
)

// StepCount количество шагов мастера.
const StepCount = 3

// PlanSource отдаёт каталог тарифов. Пустой clubID означает цены без
// привязки к клубу. Список отсортирован по возрастанию длительности.
type PlanSource interface {
	Plans(ctx context.Context, clubID string) ([]models.Plan, error)
}

// PaymentInitiator принимает готовый заказ и возвращает URL для редиректа на оплату.
type PaymentInitiator interface {
	Initiate(ctx context.Context, order models.Order) (string, error)
}

// Config задаёт таймауты и часы сессии.
type Config struct {
	CatalogTimeout time.Duration
	SubmitTimeout  time.Duration
	Now            func() time.Time
}

func (c Config) withDefaults() Config {
	if c.CatalogTimeout <= 0 {
		c.CatalogTimeout = 5 * time.Second
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 10 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Session - состояние одного оформления абонемента.
type Session struct {
	id       string
	log      *slog.Logger
	plans    PlanSource
	payments PaymentInitiator
	cfg      Config

	mu        sync.Mutex
	settled   *sync.Cond
	step      Step
	club      *models.Club
	plan      *models.Plan
	data      PersonalData
	touched   map[string]bool
	startDate time.Time

	catalog    []models.Plan
	catalogSeq uint64
	pending    int

	submitting bool
}

// New создаёт сессию на первом шаге с каталогом по умолчанию и сразу
// запрашивает актуальные тарифы без привязки к клубу.
func New(id string, plans PlanSource, payments PaymentInitiator, log *slog.Logger, cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		id:        id,
		log:       log.With(slog.String("session_id", id)),
		plans:     plans,
		payments:  payments,
		cfg:       cfg,
		step:      StepClub,
		data:      PersonalData{PhonePrefix: DefaultPhonePrefix},
		touched:   make(map[string]bool),
		startDate: Midnight(cfg.Now()),
		catalog:   models.DefaultPlans(),
	}
	s.settled = sync.NewCond(&s.mu)

	s.mu.Lock()
	s.refreshPlansLocked("")
	s.mu.Unlock()
	return s
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// CurrentStep возвращает активный шаг.
func (s *Session) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Advance переходит на следующий шаг. Полнота текущего шага не проверяется.
// На последнем шаге возвращает false.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step >= StepPersonalData {
		return false
	}
	s.step++
	return true
}

// GoTo возвращает пользователя на уже пройденный шаг.
// Переход вперёд или на текущий шаг запрещён.
func (s *Session) GoTo(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < StepClub || step >= s.step {
		return ErrStepNotReachable
	}
	s.step = step
	return nil
}

// StepComplete сообщает, заполнен ли шаг.
func (s *Session) StepComplete(step Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepCompleteLocked(step)
}

func (s *Session) stepCompleteLocked(step Step) bool {
	switch step {
	case StepClub:
		return s.club != nil
	case StepPlan:
		return s.plan != nil
	case StepPersonalData:
		return s.data.Valid()
	default:
		return false
	}
}

// Progress возвращает заполненность линейного индикатора в процентах:
// каждый пройденный шаг даёт полный отрезок, а заполненный текущий шаг -
// ещё половину отрезка. На заполненном последнем шаге значение больше 100.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() float64 {
	segment := 100.0 / float64(StepCount-1)
	progress := float64(s.step-1) * segment
	if s.stepCompleteLocked(s.step) {
		progress += segment * 0.5
	}
	return progress
}

// SelectClub выбирает клуб. Смена клуба сбрасывает выбранный тариф и
// запускает обновление каталога для нового клуба. Повторный выбор того же
// клуба ничего не меняет.
func (s *Session) SelectClub(club models.Club) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.club != nil && s.club.ID == club.ID {
		return
	}
	s.club = &club
	s.plan = nil
	s.refreshPlansLocked(club.ID)
}

// SelectedClub возвращает выбранный клуб или nil.
func (s *Session) SelectedClub() *models.Club {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.club == nil {
		return nil
	}
	club := *s.club
	return &club
}

// SelectPlan выбирает тариф из текущего каталога.
func (s *Session) SelectPlan(planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.catalog {
		if p.ID == planID {
			plan := p
			s.plan = &plan
			return nil
		}
	}
	return ErrUnknownPlan
}

// SelectedPlan возвращает выбранный тариф или nil.
func (s *Session) SelectedPlan() *models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil
	}
	plan := *s.plan
	return &plan
}

// SetField нормализует и записывает поле формы, отмечая его как тронутое.
func (s *Session) SetField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.data.Set(field, value); err != nil {
		return err
	}
	s.touched[field] = true
	return nil
}

// PersonalData возвращает копию формы.
func (s *Session) PersonalData() PersonalData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// FieldErrors возвращает ошибки тронутых непустых полей.
func (s *Session) FieldErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Errors(s.touched)
}

// SetStartDate задаёт дату начала абонемента. Дата раньше сегодняшней отклоняется.
func (s *Session) SetStartDate(date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	date = Midnight(date.In(s.cfg.Now().Location()))
	if date.Before(s.todayLocked()) {
		return ErrStartDateInPast
	}
	s.startDate = date
	return nil
}

// StartDate возвращает дату начала абонемента.
func (s *Session) StartDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startDate
}

func (s *Session) todayLocked() time.Time {
	return Midnight(s.cfg.Now())
}
