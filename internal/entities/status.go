package entities

import apperrors "renovation-system/pkg/errors"

// Status — фиксированный этап жизненного цикла заказа.
// MANAGER → ZAMIR → ZAVOD → USTANOVCHIK → DONE; CANCEL достижим
// из любого нетерминального этапа.
type Status string

const (
	StatusManager     Status = "MANAGER"
	StatusZamir       Status = "ZAMIR"
	StatusZavod       Status = "ZAVOD"
	StatusUstanovchik Status = "USTANOVCHIK"
	StatusDone        Status = "DONE"
	StatusCancel      Status = "CANCEL"
)

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusManager, StatusZamir, StatusZavod, StatusUstanovchik, StatusDone, StatusCancel:
		return s, nil
	}
	return "", apperrors.NewValidationError("неизвестный статус заказа: %q", raw)
}

func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancel
}

// Role — роль пользователя системы.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleManager     Role = "MANAGER"
	RoleZamir       Role = "ZAMIR"
	RoleUstanovchik Role = "USTANOVCHIK"
	RoleZavod       Role = "ZAVOD"
)

func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	switch r {
	case RoleAdmin, RoleManager, RoleZamir, RoleUstanovchik, RoleZavod:
		return r, nil
	}
	return "", apperrors.NewValidationError("неизвестная роль: %q", raw)
}

// IsWorker сообщает, является ли роль рабочей (со своим слотом на заказе).
func (r Role) IsWorker() bool {
	return r == RoleZamir || r == RoleUstanovchik || r == RoleZavod
}

// IsPrivileged — ADMIN и MANAGER видят и меняют все заказы.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// WorkStage — этап конвейера, на котором работает данная роль.
func (r Role) WorkStage() Status {
	switch r {
	case RoleZamir:
		return StatusZamir
	case RoleUstanovchik:
		return StatusUstanovchik
	case RoleZavod:
		return StatusZavod
	}
	return ""
}
