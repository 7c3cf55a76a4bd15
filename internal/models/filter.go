package models

// Направления сортировки.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Поля сортировки списка врачей.
const (
	SortByFirstName = "firstName"
	SortByLastName  = "lastName"
)

// ClinicFilter параметры списка клиник. Текстовые поля ищутся по подстроке без учёта регистра.
type ClinicFilter struct {
	Name       string // Часть названия клиники
	FavorName  string // Часть названия услуги любого из врачей
	DoctorName string // Часть имени или фамилии любого из врачей
	Sort       string // asc или desc по названию
}

// DoctorFilter параметры списка врачей.
type DoctorFilter struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	SortBy      string // firstName или lastName
	SortOrder   string // asc или desc
}

// FavorFilter параметры списка услуг.
type FavorFilter struct {
	Name string
	Sort string
}
