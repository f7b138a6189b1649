package wizard

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize переводит первую букву каждого слова в верхний регистр,
// остальные буквы не трогает.
func Capitalize(v string) string {
	// cases.Caser хранит состояние, поэтому создаётся на каждый вызов.
	return cases.Title(language.Italian, cases.NoLower).String(v)
}

// Upper переводит строку в верхний регистр.
func Upper(v string) string {
	return cases.Upper(language.Italian).String(v)
}

func truncate(v string, limit int) string {
	if limit <= 0 {
		return v
	}
	runes := []rune(v)
	if len(runes) <= limit {
		return v
	}
	return string(runes[:limit])
}

// normalizePhone убирает пробелы из номера телефона.
func normalizePhone(v string) string {
	return strings.Join(strings.Fields(v), "")
}
