package response

type UserServiceValidate struct {
	IsValid   bool   `json:"is_valid"`
	UserID    int64  `json:"user_id"`
	EmailUser string `json:"email_user"`
	Role      string `json:"role"`
}

type Car struct {
	ID          int64   `json:"id"`
	PricePerDay float64 `json:"price_per_day"`
	Available   bool    `json:"available"`
}

type Booking struct {
	ID              string  `json:"id"`
	CarID           int64   `json:"car_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"payment_status"`
	TotalPrice      float64 `json:"total_price"`
	Insurance       bool    `json:"insurance"`
	InsuranceType   string  `json:"insurance_type"`
	PaymentMethod   string  `json:"payment_method"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
}

type BookingCreated struct {
	Booking
	ClientSecret  string `json:"client_secret,omitempty"`
	PaymentExpiry string `json:"payment_expiry,omitempty"`
}

type PaymentHistory struct {
	BookingID        string  `json:"booking_id"`
	CarID            int64   `json:"car_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	PaymentStatus    string  `json:"payment_status"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentIntentRef string  `json:"payment_intent_ref,omitempty"`
	Date             string  `json:"date"`
}

type Availability struct {
	CarID     int64  `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}
