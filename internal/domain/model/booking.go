package model

type BookingPaymentStatus string

const (
	BookingPaymentStatusUnpaid BookingPaymentStatus = "unpaid"
	BookingPaymentStatusPaid   BookingPaymentStatus = "paid"
)
