package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// CancellableStatuses are the states a customer may cancel from.
var CancellableStatuses = []OrderStatus{OrderStatusPending, OrderStatusConfirmed}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Cancellable() bool {
	for _, c := range CancellableStatuses {
		if s == c {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCrypto       PaymentMethod = "crypto"
)

// OrderItem snapshots the product at purchase time so later product edits
// don't rewrite order history.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type BillingDetails struct {
	Name          string `bson:"name" json:"name" validate:"required,max=100"`
	Email         string `bson:"email" json:"email" validate:"required,email"`
	Phone         string `bson:"phone" json:"phone" validate:"max=30"`
	WalletAddress string `bson:"walletAddress,omitempty" json:"walletAddress,omitempty"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber       string             `bson:"orderNumber" json:"orderNumber"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	Items             []OrderItem        `bson:"items" json:"items"`
	TotalAmount       float64            `bson:"totalAmount" json:"totalAmount"`
	Status            OrderStatus        `bson:"status" json:"status"`
	PaymentStatus     PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod     PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	ShippingAddress   Address            `bson:"shippingAddress" json:"shippingAddress"`
	BillingDetails    BillingDetails     `bson:"billingDetails" json:"billingDetails"`
	TrackingNumber    string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time         `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelledAt       *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	DeliveredAt       *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderLineRequest struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000"`
}

// PlaceOrderRequest is the checkout payload. Either ShippingAddress or
// AddressID (a saved address) must be given.
type PlaceOrderRequest struct {
	Items           []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required,oneof=cod card upi bank_transfer crypto"`
	BillingDetails  BillingDetails     `json:"billingDetails"`
	ShippingAddress *Address           `json:"shippingAddress" validate:"omitempty"`
	AddressID       string             `json:"addressId" validate:"omitempty,len=24,hexadecimal"`
	Notes           string             `json:"notes" validate:"max=1000"`
	FromCart        bool               `json:"fromCart"`
}

type OrderStatusUpdate struct {
	Status            string     `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	TrackingNumber    string     `json:"trackingNumber" validate:"max=100"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

type PaymentStatusUpdate struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=pending paid failed refunded"`
}

// OrderTransition is a status change plus the fields that may ride along.
type OrderTransition struct {
	Status            OrderStatus
	TrackingNumber    string
	EstimatedDelivery *time.Time
}
