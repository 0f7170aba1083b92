package client

import (
	"context"
	"time"

	"github.com/lodgeworks/booking-saga/internal/domain/payment"
	"github.com/lodgeworks/booking-saga/internal/paymentservice"
)

type PaymentAdapter struct {
	svc     *paymentservice.Service
	timeout time.Duration
}

func NewPaymentAdapter(svc *paymentservice.Service, timeout time.Duration) *PaymentAdapter {
	return &PaymentAdapter{svc: svc, timeout: timeout}
}

func (a *PaymentAdapter) Charge(ctx context.Context, req ChargeRequest) (*payment.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.svc.Charge(ctx, paymentservice.ChargeRequest{
		UserID:         req.UserID,
		BookingID:      req.BookingID,
		AmountCents:    req.AmountCents,
		Method:         req.Method,
		IdempotencyKey: req.IdempotencyKey,
	})
	return result, classifyRemoteErr(ctx, err)
}
