package authz

import (
	"github.com/google/uuid"

	"renovation-system/internal/entities"
)

// Actor — аутентифицированный вызывающий.
type Actor struct {
	ID   uuid.UUID
	Role entities.Role
}

// CanView — видимость конкретного заказа для вызывающего.
// ADMIN/MANAGER видят всё; рабочий видит заказ своего этапа,
// если его слот свободен (пул) либо занят им самим.
func CanView(order *entities.Order, actor Actor) bool {
	if actor.Role.IsPrivileged() {
		return true
	}
	if !actor.Role.IsWorker() {
		return false
	}
	slot := order.SlotFor(actor.Role)
	if slot == nil {
		return false
	}
	if slot.HeldBy(actor.ID) {
		return true
	}
	return order.Status == actor.Role.WorkStage() && slot.IsEmpty()
}

// CanMutate — право менять заказ. Рабочий может менять заказ, слот
// которого занят им, либо свободный заказ своего этапа (claim-on-edit
// довершает движок жизненного цикла). Свободный заказ чужого этапа
// недоступен — захват возможен только на этапе роли, как и при
// пакетном назначении.
func CanMutate(order *entities.Order, actor Actor) bool {
	if actor.Role.IsPrivileged() {
		return true
	}
	if !actor.Role.IsWorker() {
		return false
	}
	slot := order.SlotFor(actor.Role)
	if slot == nil {
		return false
	}
	if slot.HeldBy(actor.ID) {
		return true
	}
	return order.Status == actor.Role.WorkStage() && slot.IsEmpty()
}

// Поля патча заказа.
const (
	FieldName              = "name"
	FieldPhone             = "phone"
	FieldComment           = "comment"
	FieldLongitude         = "longitude"
	FieldLatitude          = "latitude"
	FieldRegionID          = "regionId"
	FieldSocialID          = "socialId"
	FieldOrderStatusID     = "orderStatusId"
	FieldWorkerArrivalDate = "workerArrivalDate"
	FieldEndDateJob        = "endDateJob"
	FieldTotal             = "total"
	FieldPrePayment        = "prePayment"
	FieldDueAmount         = "dueAmount"
	FieldStatus            = "status"
)

// AllowedFields — белый список полей патча для роли. ADMIN/MANAGER
// меняют всё; рабочим доступны комментарий, дата окончания работ и
// статус.
func AllowedFields(role entities.Role) map[string]bool {
	if role.IsPrivileged() {
		return map[string]bool{
			FieldName: true, FieldPhone: true, FieldComment: true,
			FieldLongitude: true, FieldLatitude: true,
			FieldRegionID: true, FieldSocialID: true, FieldOrderStatusID: true,
			FieldWorkerArrivalDate: true, FieldEndDateJob: true,
			FieldTotal: true, FieldPrePayment: true, FieldDueAmount: true,
			FieldStatus: true,
		}
	}
	return map[string]bool{
		FieldComment:    true,
		FieldEndDateJob: true,
		FieldStatus:     true,
	}
}

// CanUseStatusFilter — свободный статус-фильтр листинга доступен
// только привилегированным ролям.
func CanUseStatusFilter(role entities.Role) bool {
	return role.IsPrivileged()
}
