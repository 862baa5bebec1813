package service

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotUnavailable = errors.New("slot is already booked")
)
