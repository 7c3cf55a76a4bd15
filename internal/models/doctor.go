package models

// Doctor врач со связанными клиниками и услугами.
// Связи заполняются хранилищем только там, где они нужны ответу.
type Doctor struct {
	ID          int64    `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	PhoneNumber string   `json:"phoneNumber"`
	Email       string   `json:"email"`
	Clinics     []Clinic `json:"clinics,omitempty"`
	Favors      []Favor  `json:"favors,omitempty"`
}

// DoctorUpdate частичное обновление врача, nil означает "не менять".
type DoctorUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Email       *string
}
