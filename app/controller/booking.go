package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/factory"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/mapper"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/service"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/signature"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/types"
)

const systemFailure = "SystemFailure"

type BookingController struct {
	bookingService *service.BookingService
	logger         logrus.FieldLogger
}

func NewBookingController(bookingService *service.BookingService) *BookingController {
	return &BookingController{
		bookingService: bookingService,
		logger:         factory.NewModuleLogger("bookings-controller"),
	}
}

func (c *BookingController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *BookingController) Availability(ctx echo.Context) error {
	req, err := types.NewGetAvailabilityRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.bookingService.Availability(ctx.Request().Context(), req.GetDate())
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Availability failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.AvailabilityToResponse(item))
}

func (c *BookingController) History(ctx echo.Context) error {
	req, err := types.NewGetHistoryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.bookingService.History(ctx.Request().Context(), service.HistoryQuery{
		Tab:    req.GetTab(),
		Sender: req.GetSender(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("History failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	if item.Tab != "" {
		return ctx.JSON(http.StatusOK, mapper.HistoryTabToResponse(item, c.bookingService.Catalog()))
	}
	return ctx.JSON(http.StatusOK, mapper.HistoryToResponse(item, c.bookingService.Catalog()))
}

func (c *BookingController) Transaction(ctx echo.Context) error {
	req, err := types.NewGetTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.bookingService.GetTransaction(ctx.Request().Context(), req.GetTxHash(), req.GetChainId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get transaction failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.TransactionToResponse(item))
}

func (c *BookingController) CreatePaymentRequest(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.bookingService.CreatePaymentRequest(ctx.Request().Context(), req.GetDate(), req.GetSlotId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSlotNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSlotUnavailable):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create payment request failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, mapper.PaymentRequestToResponse(item))
}

func (c *BookingController) Webhook(ctx echo.Context) error {
	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	reqCtx := factory.ContextWithRequestID(ctx.Request().Context(), req.RequestId)
	_, err = c.bookingService.HandleWebhook(reqCtx, service.WebhookInput{
		Body:      req.Body,
		Signature: req.Signature,
		RequestID: req.RequestId,
	})
	if err != nil {
		var verr *signature.VerificationError
		if errors.As(err, &verr) {
			return c.writeError(ctx, verr.Status, verr.Message)
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Webhook failed")
		return c.writeError(ctx, http.StatusInternalServerError, systemFailure)
	}

	return ctx.JSON(http.StatusOK, &types.EmptyResponse{})
}

func (c *BookingController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
