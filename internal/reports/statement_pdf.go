package reports

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/ledger"
	"github.com/brennuck/sprout/internal/money"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type statementRow struct {
	Type        string
	ID          string
	Description string
	Account     string
	Amount      decimal.Decimal
	Date        string
}

// StatementPDF renders the caller's transactions for a date range as a PDF.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		end := time.Now()
		start := end.AddDate(0, 0, -29)
		from = start.Format("2006-01-02")
		to = end.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", from); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}

	ctx := ledger.UserContext(c)
	rows, err := h.Pool.Query(ctx, `
		SELECT t.type, t.id::text, COALESCE(t.description, ''), a.name, t.amount::text, t.date::date::text
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1::uuid AND t.date::date BETWEEN $2::date AND $3::date
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT 2000`,
		actor, from, to,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed statement: "+err.Error())
	}
	defer rows.Close()

	var items []statementRow
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for rows.Next() {
		var (
			r   statementRow
			amt string
		)
		if err := rows.Scan(&r.Type, &r.ID, &r.Description, &r.Account, &amt, &r.Date); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan statement: "+err.Error())
		}
		amount, err := decimal.NewFromString(amt)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "bad amount: "+err.Error())
		}
		r.Amount = amount
		switch r.Type {
		case "INCOME":
			totalIncome = totalIncome.Add(amount)
		case "EXPENSE":
			totalExpense = totalExpense.Add(amount)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "statement rows: "+err.Error())
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(235, 235, 235)
	pdf.Text(25, 140, "SPROUT")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Sprout Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+from+" to "+to)
	pdf.Ln(5)
	pdf.Cell(0, 6, "User: "+maskID(actor))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expense", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Net", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, money.String(totalIncome), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, money.String(totalExpense), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, money.String(totalIncome.Sub(totalExpense)), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)

	colW := []float64{24, 26, 70, 28, 26, 12}
	header := func() {
		pdf.CellFormat(colW[0], 8, "TYPE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[2], 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "ACCOUNT", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[4], 8, "AMOUNT", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[5], 8, "ID", "1", 1, "C", true, 0, "")
	}
	header()

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)

	maxRows := 200
	for i, it := range items {
		if i >= maxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "...truncated (too many rows)", "1", 1, "C", false, 0, "")
			break
		}

		if pdf.GetY() > 270 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 10)
			header()
			pdf.SetFont("Helvetica", "", 9)
		}

		pdf.CellFormat(colW[0], 8, it.Type, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, it.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 8, trimTo(it.Description, 60), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, trimTo(it.Account, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 8, signedAmount(it.Amount, it.Type), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[5], 8, shortID(it.ID), "1", 1, "C", false, 0, "")
	}

	var buf strings.Builder
	if err := pdf.Output(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render pdf")
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="sprout-statement.pdf"`)
	return c.SendString(buf.String())
}

func signedAmount(d decimal.Decimal, typ string) string {
	switch typ {
	case "EXPENSE", "TRANSFER":
		return "-" + money.String(d)
	default:
		return "+" + money.String(d)
	}
}

func trimTo(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func maskID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:8] + "…" + id[len(id)-4:]
}
