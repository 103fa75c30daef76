package entity

import "time"

// Papéis de usuário da oficina.
const (
	RoleAdmin     = "admin"
	RoleMecanico  = "mecanico"
	RoleAtendente = "atendente"
)

// User representa um usuário do sistema, vinculado a uma empresa.
type User struct {
	ID           string
	CompanyID    string
	Nome         string
	Email        string
	PasswordHash string
	Role         string // ver constantes Role*
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
