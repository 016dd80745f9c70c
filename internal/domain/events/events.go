// Package events defines outbound domain events and their delivery rooms.
//
// Services never push to sockets directly. They return or enqueue typed
// events inside the same transaction as the state change; a relay worker
// dispatches them after commit. A failed transaction leaves no events
// behind, and a crashed relay re-reads the outbox.
package events

import (
	"encoding/json"
	"time"

	"woodline/internal/core/id"
)

// Room is a pub/sub channel grouping events by audience.
type Room string

const (
	RoomSales    Room = "room:sales"
	RoomService  Room = "room:service"
	RoomWorkshop Room = "room:workshop"
	RoomStock    Room = "room:stock"
	RoomBoss     Room = "room:boss"
)

// Event types.
const (
	TypeSaleCreated         = "sale.created"
	TypeSaleCompleted       = "sale.completed"
	TypeSaleCancelled       = "sale.cancelled"
	TypePaymentReceived     = "payment.received"
	TypeStockLow            = "stock.low"
	TypeStockTransferred    = "stock.transferred"
	TypeWorkshopTaskCreated = "workshop.task.created"
	TypeWorkshopTaskDone    = "workshop.task.completed"
	TypeInventoryApplied    = "inventory.applied"
)

// Event is a single outbound notification.
type Event struct {
	ID        id.ID           `db:"id" json:"id"`
	Type      string          `db:"type" json:"type"`
	Room      Room            `db:"room" json:"room"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// New builds an event, marshalling the payload. Marshal failures are
// programming errors and produce an event with a null payload rather
// than failing the business operation.
func New(eventType string, room Room, payload any) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		ID:        id.New(),
		Type:      eventType,
		Room:      room,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
}

// SaleCreatedPayload notifies cashiers and the owner about a new sale.
type SaleCreatedPayload struct {
	SaleID      id.ID  `json:"saleId"`
	Number      string `json:"number"`
	CustomerID  id.ID  `json:"customerId"`
	TotalUZS    string `json:"totalUzs"`
	TotalUSD    string `json:"totalUsd"`
	HasWorkshop bool   `json:"hasWorkshop"`
	CreatedBy   id.ID  `json:"createdBy"`
}

// SaleStatusPayload notifies about completion or cancellation.
type SaleStatusPayload struct {
	SaleID  id.ID  `json:"saleId"`
	Number  string `json:"number"`
	Status  string `json:"status"`
	ActorID id.ID  `json:"actorId"`
}

// PaymentReceivedPayload notifies about money entering a register.
type PaymentReceivedPayload struct {
	PaymentID  id.ID  `json:"paymentId"`
	SaleID     *id.ID `json:"saleId,omitempty"`
	CustomerID id.ID  `json:"customerId"`
	AmountUZS  string `json:"amountUzs"`
	Register   string `json:"register"`
	Kind       string `json:"kind"`
}

// StockLowPayload fires when a balance drops to or below its threshold.
type StockLowPayload struct {
	ProductID   id.ID  `json:"productId"`
	ProductName string `json:"productName"`
	WarehouseID id.ID  `json:"warehouseId"`
	Remaining   string `json:"remaining"`
	Threshold   string `json:"threshold"`
}

// StockTransferredPayload notifies about a completed transfer.
type StockTransferredPayload struct {
	TransferID  id.ID  `json:"transferId"`
	Number      string `json:"number"`
	FromID      id.ID  `json:"fromId"`
	ToID        id.ID  `json:"toId"`
	LineCount   int    `json:"lineCount"`
	PerformedBy id.ID  `json:"performedBy"`
}

// WorkshopTaskPayload notifies masters about task lifecycle changes.
type WorkshopTaskPayload struct {
	TaskID      id.ID  `json:"taskId"`
	SaleID      id.ID  `json:"saleId"`
	ServiceName string `json:"serviceName"`
	Status      string `json:"status"`
	AssigneeID  *id.ID `json:"assigneeId,omitempty"`
}

// InventoryAppliedPayload notifies about an applied inventory check.
type InventoryAppliedPayload struct {
	CheckID     id.ID `json:"checkId"`
	WarehouseID id.ID `json:"warehouseId"`
	Adjustments int   `json:"adjustments"`
	AppliedBy   id.ID `json:"appliedBy"`
}
