// Package models содержит доменные структуры справочника клиник: пользователей,
// клиник, врачей и услуг, а также параметры фильтрации списков.
// Структуры используются в бизнес‑логике, в хранилище и при сериализации ответов.
package models

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64  // Уникальный идентификатор пользователя
	Name         string // Имя пользователя
	Email        string // Электронная почта (уникальная)
	PasswordHash string // Хэш пароля пользователя
	Role         string // Роль пользователя, admin или user
}

// Identity — данные пользователя, которые переносятся в access и refresh токенах.
// Используется и как безопасное представление пользователя в ответах: хэша пароля в нём нет.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity возвращает представление пользователя без хэша пароля.
func (u User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}
