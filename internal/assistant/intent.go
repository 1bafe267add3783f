package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

// Args is the argument set shared by the function-calling path and the
// rule-based fallback. Account fields may carry either ids or account names;
// the bridge resolves names against the caller's snapshot.
type Args struct {
	AccountID       string  `json:"accountId,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	Description     string  `json:"description,omitempty"`
	Type            string  `json:"type,omitempty"`
	Date            string  `json:"date,omitempty"`
	Name            string  `json:"name,omitempty"`
	StartingBalance float64 `json:"startingBalance,omitempty"`
	FromAccountID   string  `json:"fromAccountId,omitempty"`
	ToAccountID     string  `json:"toAccountId,omitempty"`
	TransactionID   string  `json:"transactionId,omitempty"`
}

var (
	transferRe = regexp.MustCompile(`(?i)^(?:transfer|move)\s+\$?(\d+(?:\.\d+)?)\s+from\s+(.+?)\s+to\s+(.+?)\s*$`)
	expenseRe  = regexp.MustCompile(`(?i)^(?:i\s+)?(?:spent|paid|bought)\s+\$?(\d+(?:\.\d+)?)\s*(?:on|at|for)?\s*(.*)$`)
	incomeRe   = regexp.MustCompile(`(?i)^(?:i\s+)?(?:received|earned|got|was paid)\s+\$?(\d+(?:\.\d+)?)\s*(?:from|for)?\s*(.*)$`)
	accountRe  = regexp.MustCompile(`(?i)\s+(?:from|in|into|using)\s+(?:my\s+)?([a-z0-9 ]+?)\s+account\s*$`)
)

// ParseIntent maps a plain instruction onto one structured action without a
// language model. It recognizes the few phrasings the product's quick-entry
// box teaches; anything else returns ok=false and the bridge asks the user to
// rephrase.
func ParseIntent(text string) (name string, args Args, ok bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", Args{}, false
	}

	if m := transferRe.FindStringSubmatch(t); m != nil {
		amt, err := strconv.ParseFloat(m[1], 64)
		if err != nil || amt <= 0 {
			return "", Args{}, false
		}
		return "transfer_money", Args{
			Amount:        amt,
			FromAccountID: strings.TrimSpace(m[2]),
			ToAccountID:   strings.TrimSpace(m[3]),
		}, true
	}

	if m := expenseRe.FindStringSubmatch(t); m != nil {
		return parseEntry(m[1], m[2], "EXPENSE")
	}
	if m := incomeRe.FindStringSubmatch(t); m != nil {
		return parseEntry(m[1], m[2], "INCOME")
	}

	return "", Args{}, false
}

func parseEntry(amountStr, rest, typ string) (string, Args, bool) {
	amt, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amt <= 0 {
		return "", Args{}, false
	}

	rest = strings.TrimSpace(rest)
	account := ""
	if m := accountRe.FindStringSubmatch(" " + rest); m != nil {
		account = strings.TrimSpace(m[1])
		rest = strings.TrimSpace(accountRe.ReplaceAllString(" "+rest, ""))
	}

	desc := strings.TrimSpace(rest)
	if desc == "" {
		if typ == "EXPENSE" {
			desc = "Expense"
		} else {
			desc = "Income"
		}
	}

	return "add_transaction", Args{
		Amount:      amt,
		Description: desc,
		Type:        typ,
		AccountID:   account,
	}, true
}
