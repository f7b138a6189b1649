package wizard

import "errors"

var (
	// ErrStepNotReachable - переход на шаг, который ещё не пройден.
	ErrStepNotReachable = errors.New("step is not reachable")
	// ErrUnknownField - неизвестное поле формы.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownPlan - тарифа нет в текущем каталоге.
	ErrUnknownPlan = errors.New("plan is not in the current catalog")
	// ErrStartDateInPast - дата начала раньше сегодняшней.
	ErrStartDateInPast = errors.New("start date is before today")
	// ErrIncompleteSelection - не выбран клуб или тариф.
	ErrIncompleteSelection = errors.New("club and plan must be selected")
	// ErrSubmissionInFlight - предыдущая отправка ещё не завершилась.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrPaymentInitiation - платёж не удалось инициировать.
	ErrPaymentInitiation = errors.New("payment initiation failed")
	// ErrSessionNotFound - сессии нет или она истекла.
	ErrSessionNotFound = errors.New("checkout session not found")
)
