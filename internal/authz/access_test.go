package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"renovation-system/internal/entities"
)

func orderWithSlot(status entities.Status, role entities.Role, holder *uuid.UUID) *entities.Order {
	order := &entities.Order{ID: uuid.New(), Status: status}
	if holder != nil {
		slot := order.SlotFor(role)
		slot.UserID = holder
	}
	return order
}

func TestCanViewPrivileged(t *testing.T) {
	order := orderWithSlot(entities.StatusZavod, entities.RoleZavod, nil)

	assert.True(t, CanView(order, Actor{ID: uuid.New(), Role: entities.RoleAdmin}))
	assert.True(t, CanView(order, Actor{ID: uuid.New(), Role: entities.RoleManager}))
}

func TestCanViewWorkerPool(t *testing.T) {
	worker := Actor{ID: uuid.New(), Role: entities.RoleZamir}

	// Свободный заказ своего этапа виден.
	assert.True(t, CanView(orderWithSlot(entities.StatusZamir, entities.RoleZamir, nil), worker))

	// Чужой этап не виден.
	assert.False(t, CanView(orderWithSlot(entities.StatusZavod, entities.RoleZavod, nil), worker))

	// Заказ своего этапа, но уже занятый другим, не виден.
	other := uuid.New()
	assert.False(t, CanView(orderWithSlot(entities.StatusZamir, entities.RoleZamir, &other), worker))
}

func TestCanViewWorkerOwnSlot(t *testing.T) {
	worker := Actor{ID: uuid.New(), Role: entities.RoleZavod}

	// Свой заказ виден даже после ухода с этапа роли.
	order := orderWithSlot(entities.StatusUstanovchik, entities.RoleZavod, &worker.ID)
	assert.True(t, CanView(order, worker))
}

func TestCanMutate(t *testing.T) {
	worker := Actor{ID: uuid.New(), Role: entities.RoleUstanovchik}
	other := uuid.New()

	assert.True(t, CanMutate(orderWithSlot(entities.StatusUstanovchik, entities.RoleUstanovchik, nil), worker))
	assert.True(t, CanMutate(orderWithSlot(entities.StatusUstanovchik, entities.RoleUstanovchik, &worker.ID), worker))
	assert.False(t, CanMutate(orderWithSlot(entities.StatusUstanovchik, entities.RoleUstanovchik, &other), worker))

	// Свободный заказ чужого этапа рабочему недоступен: захват
	// разрешён только на этапе роли.
	assert.False(t, CanMutate(orderWithSlot(entities.StatusManager, entities.RoleUstanovchik, nil), worker))
	assert.False(t, CanMutate(orderWithSlot(entities.StatusZavod, entities.RoleUstanovchik, nil), worker))

	// Уже закреплённый заказ остаётся доступен и после ухода с этапа.
	assert.True(t, CanMutate(orderWithSlot(entities.StatusZavod, entities.RoleUstanovchik, &worker.ID), worker))

	assert.True(t, CanMutate(orderWithSlot(entities.StatusManager, entities.RoleZamir, nil), Actor{ID: uuid.New(), Role: entities.RoleAdmin}))
}

func TestAllowedFields(t *testing.T) {
	privileged := AllowedFields(entities.RoleManager)
	assert.True(t, privileged[FieldName])
	assert.True(t, privileged[FieldTotal])
	assert.True(t, privileged[FieldStatus])

	worker := AllowedFields(entities.RoleZavod)
	assert.True(t, worker[FieldComment])
	assert.True(t, worker[FieldEndDateJob])
	assert.True(t, worker[FieldStatus])
	assert.False(t, worker[FieldName])
	assert.False(t, worker[FieldTotal])
	assert.False(t, worker[FieldPrePayment])
	assert.False(t, worker[FieldRegionID])
}

func TestCanUseStatusFilter(t *testing.T) {
	assert.True(t, CanUseStatusFilter(entities.RoleAdmin))
	assert.True(t, CanUseStatusFilter(entities.RoleManager))
	assert.False(t, CanUseStatusFilter(entities.RoleZamir))
}
