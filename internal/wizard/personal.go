package wizard

import "fmt"

// Имена полей формы персональных данных.
const (
	FieldGender      = "gender"
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPhonePrefix = "phonePrefix"
	FieldPhone       = "phone"
	FieldBirthDate   = "birthDate"
	FieldBirthPlace  = "birthPlace"
	FieldFiscalCode  = "fiscalCode"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldPostalCode  = "postalCode"
	FieldProvince    = "province"
	FieldPassword    = "password"
)

type fieldRule struct {
	valid     func(string) bool
	normalize func(string) string
	maxLen    int
	message   string
}

var fieldRules = map[string]fieldRule{
	FieldGender:      {valid: ValidGender, message: "select a gender"},
	FieldFirstName:   {valid: ValidName, normalize: Capitalize, message: "first name must be at least 2 characters"},
	FieldLastName:    {valid: ValidName, normalize: Capitalize, message: "last name must be at least 2 characters"},
	FieldEmail:       {valid: ValidEmail, message: "invalid email address"},
	FieldPhonePrefix: {valid: ValidPhonePrefix, message: "unsupported phone prefix"},
	FieldPhone:       {valid: ValidPhone, message: "phone must contain 6 to 15 digits"},
	FieldBirthDate:   {valid: ValidBirthDate, message: "invalid birth date"},
	FieldBirthPlace:  {valid: ValidText, normalize: Capitalize, message: "birth place is required"},
	FieldFiscalCode:  {valid: ValidFiscalCode, normalize: Upper, message: "invalid fiscal code"},
	FieldAddress:     {valid: ValidText, normalize: Capitalize, message: "address is required"},
	FieldCity:        {valid: ValidText, normalize: Capitalize, message: "city is required"},
	FieldPostalCode:  {valid: ValidPostalCode, maxLen: 5, message: "postal code must be at most 5 characters"},
	FieldProvince:    {valid: ValidProvince, normalize: Upper, maxLen: 2, message: "province must be at most 2 characters"},
	FieldPassword:    {valid: ValidPassword, message: "password must be at least 8 characters"},
}

// Fields возвращает имена полей в порядке отображения формы.
func Fields() []string {
	return []string{
		FieldGender, FieldFirstName, FieldLastName, FieldEmail, FieldPhonePrefix,
		FieldPhone, FieldBirthDate, FieldBirthPlace, FieldFiscalCode, FieldAddress,
		FieldCity, FieldPostalCode, FieldProvince, FieldPassword,
	}
}

// PersonalData - форма третьего шага. Значения хранятся уже нормализованными.
type PersonalData struct {
	Gender      string `json:"gender"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhonePrefix string `json:"phonePrefix"`
	Phone       string `json:"phone"`
	BirthDate   string `json:"birthDate"`
	BirthPlace  string `json:"birthPlace"`
	FiscalCode  string `json:"fiscalCode"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Province    string `json:"province"`
	Password    string `json:"password,omitempty"`
}

func (p *PersonalData) ref(field string) *string {
	switch field {
	case FieldGender:
		return &p.Gender
	case FieldFirstName:
		return &p.FirstName
	case FieldLastName:
		return &p.LastName
	case FieldEmail:
		return &p.Email
	case FieldPhonePrefix:
		return &p.PhonePrefix
	case FieldPhone:
		return &p.Phone
	case FieldBirthDate:
		return &p.BirthDate
	case FieldBirthPlace:
		return &p.BirthPlace
	case FieldFiscalCode:
		return &p.FiscalCode
	case FieldAddress:
		return &p.Address
	case FieldCity:
		return &p.City
	case FieldPostalCode:
		return &p.PostalCode
	case FieldProvince:
		return &p.Province
	case FieldPassword:
		return &p.Password
	}
	return nil
}

// Get возвращает значение поля по имени.
func (p PersonalData) Get(field string) (string, error) {
	ref := p.ref(field)
	if ref == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return *ref, nil
}

// Set нормализует значение и записывает его в поле.
func (p *PersonalData) Set(field, value string) error {
	rule, ok := fieldRules[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if rule.normalize != nil {
		value = rule.normalize(value)
	}
	*p.ref(field) = truncate(value, rule.maxLen)
	return nil
}

// FieldValid проверяет одно поле.
func (p PersonalData) FieldValid(field string) bool {
	rule, ok := fieldRules[field]
	if !ok {
		return false
	}
	return rule.valid(*p.ref(field))
}

// Valid - конъюнкция проверок всех полей. Пустое обязательное поле делает
// форму невалидной, хотя само по себе ошибкой не подсвечивается.
func (p PersonalData) Valid() bool {
	for _, field := range Fields() {
		if !p.FieldValid(field) {
			return false
		}
	}
	return true
}

// Errors возвращает сообщения для полей из touched, которые непусты
// и не проходят проверку.
func (p PersonalData) Errors(touched map[string]bool) map[string]string {
	errs := make(map[string]string)
	for _, field := range Fields() {
		if !touched[field] {
			continue
		}
		value := *p.ref(field)
		if value == "" || p.FieldValid(field) {
			continue
		}
		errs[field] = fieldRules[field].message
	}
	return errs
}
