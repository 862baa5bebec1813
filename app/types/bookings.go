package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const signatureHeader = "X-Yodl-Signature"

var historyTabs = map[string]bool{"recent": true, "upcoming": true, "past": true, "invalid": true}

type GetAvailabilityRequest struct {
	Date string `json:"date" query:"date"`
}

func (r *GetAvailabilityRequest) GetDate() string {
	if r == nil {
		return ""
	}
	return r.Date
}

func NewGetAvailabilityRequestFromContext(ctx echo.Context) (*GetAvailabilityRequest, error) {
	return &GetAvailabilityRequest{Date: strings.TrimSpace(ctx.QueryParam("date"))}, nil
}

func (r *GetAvailabilityRequest) Validate() error {
	if r.GetDate() != "" && !isDate(r.GetDate()) {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}

type GetHistoryRequest struct {
	Tab    string `json:"tab" query:"tab"`
	Sender string `json:"sender" query:"sender"`
}

func (r *GetHistoryRequest) GetTab() string {
	if r == nil {
		return ""
	}
	return r.Tab
}

func (r *GetHistoryRequest) GetSender() string {
	if r == nil {
		return ""
	}
	return r.Sender
}

func NewGetHistoryRequestFromContext(ctx echo.Context) (*GetHistoryRequest, error) {
	return &GetHistoryRequest{
		Tab:    strings.ToLower(strings.TrimSpace(ctx.QueryParam("tab"))),
		Sender: strings.TrimSpace(ctx.QueryParam("sender")),
	}, nil
}

func (r *GetHistoryRequest) Validate() error {
	if tab := r.GetTab(); tab != "" && !historyTabs[tab] {
		return errors.New("tab must be recent, upcoming, past, or invalid")
	}
	if sender := r.GetSender(); sender != "" && !isHexAddress(sender) {
		return errors.New("sender must be a 0x address")
	}
	return nil
}

type GetTransactionRequest struct {
	TxHash  string `json:"txHash" query:"txHash"`
	ChainId int64  `json:"chainId" query:"chainId"`
}

func (r *GetTransactionRequest) GetTxHash() string {
	if r == nil {
		return ""
	}
	return r.TxHash
}

func (r *GetTransactionRequest) GetChainId() int64 {
	if r == nil {
		return 0
	}
	return r.ChainId
}

func NewGetTransactionRequestFromContext(ctx echo.Context) (*GetTransactionRequest, error) {
	req := &GetTransactionRequest{TxHash: strings.TrimSpace(ctx.QueryParam("txHash"))}

	if raw := strings.TrimSpace(ctx.QueryParam("chainId")); raw != "" {
		chainID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("chainId must be a number")
		}
		req.ChainId = chainID
	}

	return req, nil
}

func (r *GetTransactionRequest) Validate() error {
	if r.GetTxHash() == "" {
		return errors.New("txHash is required")
	}
	if r.GetChainId() <= 0 {
		return errors.New("chainId must be > 0")
	}
	return nil
}

type CreatePaymentRequest struct {
	Date   string `json:"date"`
	SlotId string `json:"slotId"`
}

func (r *CreatePaymentRequest) GetDate() string {
	if r == nil {
		return ""
	}
	return r.Date
}

func (r *CreatePaymentRequest) GetSlotId() string {
	if r == nil {
		return ""
	}
	return r.SlotId
}

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	var body CreatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Date = strings.TrimSpace(body.Date)
	body.SlotId = strings.TrimSpace(body.SlotId)

	return &body, nil
}

func (r *CreatePaymentRequest) Validate() error {
	if r.GetDate() != "" && !isDate(r.GetDate()) {
		return errors.New("date must be YYYY-MM-DD")
	}
	if r.GetSlotId() == "" {
		return errors.New("slotId is required")
	}
	return nil
}

type WebhookRequest struct {
	RequestId string
	Signature string
	Body      []byte
}

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	requestID := strings.TrimSpace(ctx.Response().Header().Get(echo.HeaderXRequestID))
	if requestID == "" {
		requestID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
	}

	return &WebhookRequest{
		RequestId: requestID,
		Signature: strings.TrimSpace(ctx.Request().Header.Get(signatureHeader)),
		Body:      rawBody,
	}, nil
}
