package model

import "time"

type Sex int

const (
	SexMan Sex = iota + 1
	SexWoman
	SexUndefined
)

// Profile общие данные человека, зарегистрированного в системе
type Profile struct {
	ID         int64      `json:"id"`
	TelegramID int64      `json:"telegram_id"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Patronymic string     `json:"patronymic"`
	Birthday   *time.Time `json:"birthday"` // указатель - может быть nil
	Sex        Sex        `json:"sex"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Person это либо *Doctor, либо *Patient.
// Ветвление по роли делается через type switch, а не по флагу.
type Person interface {
	Base() *Profile
	person()
}

// Doctor врач, для которого генерируется расписание
type Doctor struct {
	Profile
}

// Patient пациент, который записывается на приём
type Patient struct {
	Profile
}

func (d *Doctor) Base() *Profile  { return &d.Profile }
func (p *Patient) Base() *Profile { return &p.Profile }

func (*Doctor) person()  {}
func (*Patient) person() {}

// NewPerson собирает вариант по флагу из хранилища
func NewPerson(profile Profile, isDoctor bool) Person {
	if isDoctor {
		return &Doctor{Profile: profile}
	}
	return &Patient{Profile: profile}
}

// IsDoctor нужен только на границе с хранилищем
func IsDoctor(p Person) bool {
	_, ok := p.(*Doctor)
	return ok
}

// Requester тот, от чьего имени выполняется операция
type Requester struct {
	PersonID int64 // 0 если человек не зарегистрирован
	IsAdmin  bool
}
