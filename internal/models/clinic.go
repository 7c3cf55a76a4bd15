package models

// Clinic запись клиники без связей.
type Clinic struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ClinicWithFavors клиника вместе с врачами и объединением их услуг.
// Favors вычисляется при чтении и не хранится.
type ClinicWithFavors struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Doctors []Doctor `json:"doctors"`
	Favors  []Favor  `json:"favors"`
}

// NewClinicWithFavors собирает представление клиники: услуги врачей объединяются
// без повторов по ID в порядке первого появления.
func NewClinicWithFavors(c Clinic, doctors []Doctor) ClinicWithFavors {
	if doctors == nil {
		doctors = []Doctor{}
	}
	return ClinicWithFavors{
		ID:      c.ID,
		Name:    c.Name,
		Doctors: doctors,
		Favors:  UnionFavors(doctors),
	}
}

// UnionFavors возвращает услуги всех врачей без дубликатов.
func UnionFavors(doctors []Doctor) []Favor {
	seen := make(map[int64]struct{})
	favors := make([]Favor, 0)
	for _, d := range doctors {
		for _, f := range d.Favors {
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			favors = append(favors, Favor{ID: f.ID, Name: f.Name})
		}
	}
	return favors
}
