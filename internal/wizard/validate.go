package wizard

import (
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	emailRe      = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)
	fiscalCodeRe = regexp.MustCompile(`(?i)^[A-Z]{6}[0-9]{2}[A-Z][0-9]{2}[A-Z][0-9]{3}[A-Z]$`)
	phoneRe      = regexp.MustCompile(`^[0-9]{6,15}$`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
)

// DefaultPhonePrefix префикс телефона по умолчанию.
const DefaultPhonePrefix = "+39"

// PhonePrefixes фиксированный список международных кодов, доступных в форме.
var PhonePrefixes = []string{
	"+39", "+41", "+43", "+33", "+49", "+34", "+351", "+44", "+353",
	"+32", "+31", "+30", "+40", "+48", "+385", "+386", "+1",
}

// ValidGender принимает только "male" и "female".
func ValidGender(v string) bool {
	return v == "male" || v == "female"
}

// ValidName требует минимум два символа после обрезки пробелов.
func ValidName(v string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(v)) >= 2
}

// ValidEmail проверяет адрес регулярным выражением формы.
func ValidEmail(v string) bool {
	return emailRe.MatchString(v)
}

// ValidPhonePrefix проверяет, что префикс есть в списке PhonePrefixes.
func ValidPhonePrefix(v string) bool {
	return slices.Contains(PhonePrefixes, v)
}

// ValidPhone требует от 6 до 15 цифр без учёта пробелов.
func ValidPhone(v string) bool {
	return phoneRe.MatchString(strings.Join(strings.Fields(v), ""))
}

// ValidBirthDate принимает дату YYYY-MM-DD, в которой ни год, ни месяц,
// ни день не пустые и не состоят из одних нулей ("0000", "00").
func ValidBirthDate(v string) bool {
	parts := strings.Split(v, "-")
	if len(parts) != 3 {
		return false
	}
	for i, part := range parts {
		want := 2
		if i == 0 {
			want = 4
		}
		if len(part) != want || !digitsRe.MatchString(part) || strings.Trim(part, "0") == "" {
			return false
		}
	}
	_, err := time.Parse(dateLayout, v)
	return err == nil
}

// ValidFiscalCode проверяет итальянский codice fiscale без учёта регистра.
func ValidFiscalCode(v string) bool {
	return fiscalCodeRe.MatchString(v)
}

// ValidText требует непустое значение после обрезки пробелов.
func ValidText(v string) bool {
	return strings.TrimSpace(v) != ""
}

// ValidPostalCode принимает от 1 до 5 символов.
func ValidPostalCode(v string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	return n >= 1 && n <= 5
}

// ValidProvince принимает от 1 до 2 символов.
func ValidProvince(v string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	return n >= 1 && n <= 2
}

// ValidPassword требует минимум 8 символов.
func ValidPassword(v string) bool {
	return utf8.RuneCountInString(v) >= 8
}
