package wizard

import (
	"time"

	"github.com/magabrotheeeer/club-checkout/internal/lib/month"
)

const dateLayout = "2006-01-02"

// Подписи относительной даты начала абонемента.
const (
	LabelToday            = "Today"
	LabelTomorrow         = "Tomorrow"
	LabelDayAfterTomorrow = "Day after tomorrow"
)

// Midnight возвращает начало суток t в его часовом поясе.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayNumber переводит календарную дату в номер дня, не завися от перехода на летнее время.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// RelativeLabel подписывает дату начала относительно сегодняшнего дня:
// "Today", "Tomorrow", "Day after tomorrow" или пустая строка.
func RelativeLabel(start, today time.Time) string {
	switch dayNumber(start) - dayNumber(today) {
	case 0:
		return LabelToday
	case 1:
		return LabelTomorrow
	case 2:
		return LabelDayAfterTomorrow
	default:
		return ""
	}
}

// EndDate возвращает дату окончания абонемента длиной months месяцев.
func EndDate(start time.Time, months int) time.Time {
	return month.Add(start, months)
}

// ParseDate разбирает дату YYYY-MM-DD в указанном часовом поясе.
func ParseDate(v string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, v, loc)
}

// FormatDate форматирует дату как YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
