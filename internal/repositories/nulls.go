package repositories

import (
	"github.com/google/uuid"
)

func nullUUIDToPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	u := v.UUID
	return &u
}

func ptrToNullUUID(p *uuid.UUID) uuid.NullUUID {
	if p == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *p, Valid: true}
}
