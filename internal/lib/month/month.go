// Package month содержит календарную арифметику абонементов.
package month

import (
	"time"
)

// Add прибавляет n календарных месяцев к t. Переполнение дня не обрезается,
// а переносится в следующий месяц: 31 января + 1 месяц = 3 марта
// (2 марта в високосный год). Так считаются даты окончания договоров.
func Add(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// Remaining считает, сколько месяцев абонемента длиной months,
// начавшегося start, остаётся на момент at.
func Remaining(start time.Time, months int, at time.Time) int {
	end := Add(start, months)

	// Абонемент уже закончился
	if !at.Before(end) {
		return 0
	}

	// Абонемент ещё не начался
	if !at.After(start) {
		return months
	}

	passed := (at.Year()-start.Year())*12 + int(at.Month()) - int(start.Month())

	// Начатый месяц считается прошедшим
	if at.Day() > start.Day() {
		passed++
	}

	remaining := months - passed
	if remaining < 0 {
		return 0
	}

	return remaining
}
