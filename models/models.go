package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	Phone             string `json:"phone"`
	District          string `json:"district"`
	Village           string `json:"village"`
	RationCardNumber  string `json:"rationCardNumber"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// User represents an account in the system: an operator (admin) or a
// subscriber (citizen).
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	IsActive          bool      `json:"is_active"`
	Phone             *string   `json:"phone,omitempty"`
	District          *string   `json:"district,omitempty"`
	Village           *string   `json:"village,omitempty"`
	RationCardNumber  *string   `json:"ration_card_number,omitempty"`
	PreferredLanguage *string   `json:"preferred_language,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// --- Shops & Stock ---

// Shop represents a single fair price shop / PDS outlet.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	District  *string   `json:"district,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// DistanceKm is only populated by nearby-shop searches.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// StockLevel is the latest observed stock position for one commodity at a
// shop, as shown on the stock dashboard.
type StockLevel struct {
	ShopID       string    `json:"shop_id"`
	Commodity    string    `json:"commodity"`
	CurrentStock float64   `json:"current_stock"`
	Capacity     *float64  `json:"capacity,omitempty"`
	Status       string    `json:"status"` // good, low, critical, out
	LastUpdated  time.Time `json:"last_updated"`
}

// --- Alerts & Notifications ---

// StockAlert is a single declared arrival event, created by an operator.
// Immutable except for SentAt, which is set once dispatch has run.
type StockAlert struct {
	ID            string     `json:"id"`
	ShopID        string     `json:"shop_id"`
	ShopName      string     `json:"shop_name"`
	CommodityName string     `json:"commodity_name"`
	ArrivalDate   time.Time  `json:"arrival_date"`
	QuantityKg    *float64   `json:"quantity_kg,omitempty"`
	Message       *string    `json:"message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

type CreateAlertRequest struct {
	ShopID        string   `json:"shopId" validate:"required"`
	ShopName      string   `json:"shopName" validate:"required"`
	CommodityName string   `json:"commodityName" validate:"required"`
	ArrivalDate   string   `json:"arrivalDate" validate:"required,datetime=2006-01-02"`
	QuantityKg    *float64 `json:"quantityKg" validate:"omitempty,gt=0"`
	Message       *string  `json:"message"`
}

// AlertPreference is one subscriber's notification configuration. Empty
// preferred sets are wildcards: they match every shop or commodity.
type AlertPreference struct {
	UserID               string    `json:"user_id"`
	Email                string    `json:"email,omitempty"`
	EmailEnabled         bool      `json:"email_enabled"`
	SMSEnabled           bool      `json:"sms_enabled"`
	PhoneNumber          string    `json:"phone_number,omitempty"`
	PreferredShops       []string  `json:"preferred_shops"`
	PreferredCommodities []string  `json:"preferred_commodities"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type PreferenceRequest struct {
	EmailEnabled         bool     `json:"emailEnabled"`
	SMSEnabled           bool     `json:"smsEnabled"`
	PhoneNumber          string   `json:"phoneNumber" validate:"required_if=SMSEnabled true,omitempty,e164"`
	PreferredShops       []string `json:"preferredShops"`
	PreferredCommodities []string `json:"preferredCommodities"`
}

// SentNotification is the idempotency record behind at-most-once delivery.
// The triple (user, alert, channel) is unique in the store.
type SentNotification struct {
	UserID  string    `json:"user_id"`
	AlertID string    `json:"alert_id"`
	Channel string    `json:"channel"`
	SentAt  time.Time `json:"sent_at"`
}

// --- Community Reports ---

type Report struct {
	ID              string    `json:"id"`
	ReferenceNumber string    `json:"reference_number"`
	UserID          *string   `json:"user_id,omitempty"`
	IssueType       string    `json:"issue_type"`
	Description     string    `json:"description"`
	ShopName        string    `json:"shop_name"`
	Status          string    `json:"status"` // pending, investigating, resolved
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateReportRequest struct {
	IssueType   string `json:"issueType" validate:"required"`
	Description string `json:"description" validate:"required,min=10"`
	ShopName    string `json:"shopName" validate:"required"`
}

// --- Forecast API ---

type ForecastRequest struct {
	ShopID      string `json:"shopId" validate:"required"`
	Commodity   string `json:"commodity" validate:"required"`
	HorizonDays int    `json:"horizonDays" validate:"omitempty,gt=0,lte=365"`

	// ExternalRiskFactors are caller-supplied context (weather, festivals)
	// surfaced through the summarizer's risk hooks.
	ExternalRiskFactors []string `json:"externalRiskFactors"`
}

// --- Data ingestion ---

type ObservationInput struct {
	ShopID        string   `json:"shopId" validate:"required"`
	Commodity     string   `json:"commodity" validate:"required"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	StockLevel    float64  `json:"stockLevel" validate:"gte=0"`
	ArrivalAmount float64  `json:"arrivalAmount" validate:"gte=0"`
	IsScheduled   bool     `json:"isScheduled"`
	Capacity      *float64 `json:"capacity" validate:"omitempty,gt=0"`
}

type ScheduleEntryInput struct {
	ShopID         string  `json:"shopId" validate:"required"`
	Commodity      string  `json:"commodity" validate:"required"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	ExpectedAmount float64 `json:"expectedAmount" validate:"gte=0"`
}
