package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"

	"github.com/vectrabank/ledger-engine/internal/ledger"
	"github.com/vectrabank/ledger-engine/internal/models"
)

// ownerHeader carries the authenticated principal's CPF. Resolving it
// is the job of the auth layer in front of this service; the engine
// performs no authentication of its own.
const ownerHeader = "X-Owner-CPF"

// accountTypeNames maps the wire names (the Portuguese product names
// the clients send) onto domain account types. The English names are
// accepted as-is.
var accountTypeNames = map[string]models.AccountType{
	"corrente":      models.TypeChecking,
	"poupanca":      models.TypeSavings,
	"salario":       models.TypePayroll,
	"universitaria": models.TypeStudent,
	"empresarial":   models.TypeBusiness,
	"black":         models.TypePremium,

	"checking": models.TypeChecking,
	"savings":  models.TypeSavings,
	"payroll":  models.TypePayroll,
	"student":  models.TypeStudent,
	"business": models.TypeBusiness,
	"premium":  models.TypePremium,
}

type AccountHandler struct {
	Ledger *ledger.Ledger
}

type createAccountRequest struct {
	AccountType    string          `json:"tipo_conta"`
	BirthDate      string          `json:"data_nascimento"` // DD/MM/AAAA
	OpeningBalance decimal.Decimal `json:"saldo_inicial"`
}

// owner returns the principal's CPF detached from the request buffer.
// Header and path values are zero-copy views into fasthttp's reusable
// buffers; anything handed to the ledger must be copied first, or the
// bytes mutate once the connection serves its next request.
func owner(c *fiber.Ctx) string {
	return utils.CopyString(c.Get(ownerHeader))
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	ownerCPF := owner(c)
	if ownerCPF == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "missing " + ownerHeader + " header"})
	}

	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}

	accountType, ok := accountTypeNames[req.AccountType]
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "unknown account type: " + req.AccountType})
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid birth date, expected DD/MM/AAAA"})
	}

	acct, err := h.Ledger.CreateAccount(c.Context(), ownerCPF, accountType, birthDate, req.OpeningBalance)
	if err != nil {
		return fail(c, err)
	}
	slog.Info("account created", "account_id", acct.ID, "account_number", acct.Number, "type", string(acct.Type))
	return c.Status(http.StatusCreated).JSON(acct)
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	ownerCPF := owner(c)
	if ownerCPF == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "missing " + ownerHeader + " header"})
	}

	accounts, err := h.Ledger.ListAccounts(ownerCPF)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(accounts)
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	acct, err := h.Ledger.GetAccount(utils.CopyString(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(acct)
}

func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	acct, err := h.Ledger.GetAccount(utils.CopyString(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	// balances are 2-digit currency values on the wire
	return c.JSON(fiber.Map{
		"account_id": acct.ID,
		"balance":    acct.Balance.StringFixed(2),
	})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *AccountHandler) SetActive(c *fiber.Ctx) error {
	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}

	acct, err := h.Ledger.SetActive(c.Context(), utils.CopyString(c.Params("id")), req.Active)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(acct)
}

// parseDate accepts the DD/MM/AAAA form the clients send and ISO 8601
// as a fallback.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("02/01/2006", value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
