// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-transfers/internal/domain"
	"github.com/go-petr/pet-transfers/pkg/errorspkg"
	"github.com/go-petr/pet-transfers/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, req domain.TransferRequest) (domain.Transfer, error)
	Get(ctx context.Context, id string) (domain.Transfer, error)
	List(ctx context.Context) []domain.Transfer
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	FromAccountID string      `json:"from" binding:"required"`
	ToAccountID   string      `json:"to" binding:"required"`
	Amount        json.Number `json:"amount" binding:"required,positive"`
}

type data struct {
	Transfer domain.Transfer `json:"transfer"`
}

type listData struct {
	Transfers []domain.Transfer `json:"transfers"`
}

// Create handles http request to create a transfer between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

		return
	}

	arg := domain.TransferRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
	}

	result, err := h.service.Transfer(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch {
		case
			errors.Is(err, domain.ErrAccountNotFound),
			errors.Is(err, domain.ErrInsufficientFunds),
			errors.Is(err, domain.ErrTransferNotCompleted),
			errors.Is(err, domain.ErrInvalidAmount):
			res := web.Error(err)
			if result.ID != "" {
				res.Data = data{result}
			}

			gctx.JSON(http.StatusBadRequest, res)

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{result}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required"`
}

// Get handles http request to get a recorded transfer.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	t, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTransferNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{t}})
}

// List handles http request to list all recorded transfers.
func (h *Handler) List(gctx *gin.Context) {
	transfers := h.service.List(gctx.Request.Context())
	if transfers == nil {
		transfers = []domain.Transfer{}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: listData{transfers}})
}
