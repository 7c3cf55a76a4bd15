package models

// Favor медицинская услуга, которую оказывают врачи.
type Favor struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Doctors []Doctor `json:"doctors,omitempty"`
}
