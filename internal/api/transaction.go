package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/engine"
	"github.com/vectrabank/ledger-engine/internal/models"
)

// transactionKindNames maps the wire names onto domain kinds.
var transactionKindNames = map[string]models.TransactionKind{
	"saque":         models.KindWithdrawal,
	"deposito":      models.KindDeposit,
	"pix":           models.KindPix,
	"transferencia": models.KindTransfer,

	"withdrawal": models.KindWithdrawal,
	"deposit":    models.KindDeposit,
	"transfer":   models.KindTransfer,
}

type TransactionHandler struct {
	Engine *engine.Engine
}

type transactionRequest struct {
	AccountID         string          `json:"account_id"`
	Amount            decimal.Decimal `json:"valor"`
	Description       string          `json:"descricao"`
	DestinationNumber string          `json:"destino_conta"`
}

func (h *TransactionHandler) Saque(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, req transactionRequest) (models.Transaction, error) {
		return h.Engine.Withdraw(ctx, req.AccountID, req.Amount, req.Description)
	})
}

func (h *TransactionHandler) Deposito(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, req transactionRequest) (models.Transaction, error) {
		return h.Engine.Deposit(ctx, req.AccountID, req.Amount, req.Description)
	})
}

func (h *TransactionHandler) Pix(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, req transactionRequest) (models.Transaction, error) {
		return h.Engine.InstantTransfer(ctx, req.AccountID, req.Amount, req.DestinationNumber, req.Description)
	})
}

func (h *TransactionHandler) Transferencia(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context, req transactionRequest) (models.Transaction, error) {
		return h.Engine.AccountTransfer(ctx, req.AccountID, req.Amount, req.DestinationNumber, req.Description)
	})
}

func (h *TransactionHandler) run(c *fiber.Ctx, op func(context.Context, transactionRequest) (models.Transaction, error)) error {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if req.AccountID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "account_id is required"})
	}

	tx, err := op(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(tx)
}

// List serves the account statement: filters by account, kind, and
// date range, paged with skip/limit.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter := models.TransactionFilter{
		AccountID: c.Query("account_id"),
	}

	if kindName := c.Query("tipo_transacao"); kindName != "" {
		kind, ok := transactionKindNames[kindName]
		if !ok {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "unknown transaction kind: " + kindName})
		}
		filter.Kind = kind
	}
	if from := c.Query("data_inicio"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid data_inicio"})
		}
		filter.From = t
	}
	if to := c.Query("data_fim"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid data_fim"})
		}
		// inclusive end of day
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	skip, err := queryInt(c, "skip")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid skip"})
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid limit"})
	}
	filter.Offset = skip
	filter.Limit = limit

	txs, err := h.Engine.History(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(txs)
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	value := c.Query(key)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
