package request

type CreateBooking struct {
	CarID              int64         `json:"car_id" validate:"required"`
	StartDate          string        `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate            string        `json:"end_date" validate:"required,datetime=2006-01-02"`
	PaymentMethod      string        `json:"payment_method" validate:"required,oneof=credit_card debit_card paypal"`
	PickupLocation     string        `json:"pickup_location" validate:"required"`
	DropoffLocation    string        `json:"dropoff_location" validate:"required"`
	Insurance          bool          `json:"insurance"`
	InsuranceType      string        `json:"insurance_type" validate:"omitempty,oneof=none basic premium"`
	AdditionalRequests string        `json:"additional_requests"`
	Driver             DriverDetails `json:"driver_details"`
}

type DriverDetails struct {
	Name          string `json:"name" validate:"required"`
	Age           int    `json:"age" validate:"required,gte=18"`
	LicenseNumber string `json:"license_number" validate:"required"`
}

type PaymentExpiration struct {
	BookingID string `json:"booking_id" validate:"required"`
	CarID     int64  `json:"car_id" validate:"required"`
}

type BookingCompletion struct {
	BookingID string `json:"booking_id" validate:"required"`
	CarID     int64  `json:"car_id" validate:"required"`
}

type PoisonedQueue struct {
	TopicTarget string      `json:"topic_target" validate:"required"`
	ErrorMsg    string      `json:"error_msg" validate:"required"`
	Payload     interface{} `json:"payload" validate:"required"`
}

type NotificationMessage struct {
	BookingID string `json:"booking_id" validate:"required"`
	UserID    int64  `json:"user_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type NotificationInvoice struct {
	BookingID         string  `json:"booking_id" validate:"required"`
	UserID            int64   `json:"user_id" validate:"required"`
	PaymentAmount     float64 `json:"payment_amount" validate:"required"`
	PaymentExpiration string  `json:"payment_expiration" validate:"required"`
}
