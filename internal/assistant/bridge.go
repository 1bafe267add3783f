package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brennuck/sprout/internal/domain"
	"github.com/brennuck/sprout/internal/ledger"
	"github.com/brennuck/sprout/internal/money"
)

// Bridge turns a natural-language instruction into at most one ledger
// operation. It is an untrusted caller: every dispatch goes through
// ledger.Service with the actor attached, so ownership and validation are
// re-checked exactly as they are for the direct API.
type Bridge struct {
	Ledger *ledger.Service
	Client *OpenAIClient
}

func NewBridge(led *ledger.Service, client *OpenAIClient) *Bridge {
	return &Bridge{Ledger: led, Client: client}
}

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Reply struct {
	Reply           string `json:"reply"`
	ActionPerformed bool   `json:"action_performed"`
}

const systemPrompt = `You are Bud, a friendly personal gardener who helps users manage their finances in the Sprout budgeting app.

Your personality:
- Warm, friendly, and encouraging
- Use gardening metaphors when talking about finances (money "growing", "planting seeds" for savings, "harvesting" for income)
- Keep responses concise (1-2 short paragraphs max)

You can add transactions, create accounts, transfer money, delete transactions, and delete accounts using the provided functions.

IMPORTANT RULES:
- If required info is missing (like which account), ask the user instead of guessing
- Use the account IDs provided in the context, not names
- Amounts are always positive; the system derives the sign from the type`

var functionDefs = []FunctionDef{
	{
		Name:        "add_transaction",
		Description: "Add a new expense or income transaction to an account",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"accountId": {"type": "string", "description": "ID of the account"},
				"amount": {"type": "number", "description": "Positive amount"},
				"description": {"type": "string", "description": "What the transaction was for"},
				"type": {"type": "string", "enum": ["EXPENSE", "INCOME"]},
				"date": {"type": "string", "description": "RFC3339 date, defaults to today"}
			},
			"required": ["accountId", "amount", "description", "type"]
		}`),
	},
	{
		Name:        "create_account",
		Description: "Create a new account for the user",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"type": {"type": "string", "enum": ["SAVINGS", "BUDGET", "ALLOWANCE", "RETIREMENT", "STOCK"]},
				"startingBalance": {"type": "number"}
			},
			"required": ["name", "type"]
		}`),
	},
	{
		Name:        "transfer_money",
		Description: "Transfer money between two of the user's accounts",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"fromAccountId": {"type": "string"},
				"toAccountId": {"type": "string"},
				"amount": {"type": "number"},
				"description": {"type": "string"}
			},
			"required": ["fromAccountId", "toAccountId", "amount"]
		}`),
	},
	{
		Name:        "delete_transaction",
		Description: "Delete a transaction by its ID",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"transactionId": {"type": "string"}
			},
			"required": ["transactionId"]
		}`),
	},
	{
		Name:        "delete_account",
		Description: "Delete an account and its transactions",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"accountId": {"type": "string"}
			},
			"required": ["accountId"]
		}`),
	},
}

// Handle answers one chat message, performing at most one ledger operation.
func (b *Bridge) Handle(ctx context.Context, actor, message string, history []Turn) (Reply, error) {
	accounts, err := b.Ledger.ListAccounts(ctx, actor)
	if err != nil {
		return Reply{}, err
	}
	recent, err := b.Ledger.ListTransactions(ctx, actor, 15)
	if err != nil {
		return Reply{}, err
	}

	if b.Client.Enabled() {
		return b.handleWithModel(ctx, actor, message, history, accounts, recent)
	}

	name, args, ok := ParseIntent(message)
	if !ok {
		return Reply{Reply: "I can log things like \"spent 30 on groceries\", \"received 500 for salary\", or \"transfer 40 from Budget to Savings\"."}, nil
	}
	msg, performed := b.dispatch(ctx, actor, accounts, name, args)
	return Reply{Reply: msg, ActionPerformed: performed}, nil
}

func (b *Bridge) handleWithModel(ctx context.Context, actor, message string, history []Turn, accounts []domain.Account, recent []domain.Transaction) (Reply, error) {
	messages := []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: contextMessage(accounts, recent)},
	}
	for _, h := range history {
		role := h.Role
		if role != "user" && role != "assistant" {
			continue
		}
		messages = append(messages, ChatMessage{Role: role, Content: h.Content})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	msg, err := b.Client.Complete(ctx, messages, functionDefs)
	if err != nil {
		return Reply{}, err
	}

	if msg.FunctionCall == nil {
		return Reply{Reply: msg.Content}, nil
	}

	var args Args
	if err := json.Unmarshal([]byte(msg.FunctionCall.Arguments), &args); err != nil {
		return Reply{Reply: "I didn't quite catch that. Could you rephrase?"}, nil
	}

	result, performed := b.dispatch(ctx, actor, accounts, msg.FunctionCall.Name, args)

	// Let the model phrase the confirmation; fall back to the raw result.
	followUp := append(messages, msg, ChatMessage{
		Role:    "function",
		Name:    msg.FunctionCall.Name,
		Content: result,
	})
	final, err := b.Client.Complete(ctx, followUp, nil)
	if err != nil || strings.TrimSpace(final.Content) == "" {
		return Reply{Reply: result, ActionPerformed: performed}, nil
	}
	return Reply{Reply: final.Content, ActionPerformed: performed}, nil
}

func contextMessage(accounts []domain.Account, recent []domain.Transaction) string {
	var sb strings.Builder
	sb.WriteString("THE USER'S ACCOUNTS (use these IDs):\n")
	for _, a := range accounts {
		fmt.Fprintf(&sb, "- %q (%s) | ID: %s | Balance: $%s\n", a.Name, a.Type, a.ID, money.String(a.Balance))
	}
	sb.WriteString("\nRECENT TRANSACTIONS:\n")
	for _, t := range recent {
		desc := ""
		if t.Description != nil {
			desc = *t.Description
		}
		fmt.Fprintf(&sb, "- %s: $%s (%s) | ID: %s | Date: %s\n", desc, money.String(t.Amount), t.Type, t.ID, t.Date.Format("2006-01-02"))
	}
	if len(accounts) == 1 {
		fmt.Fprintf(&sb, "\nThe user has a single account; use it when they don't specify one (ID: %s).\n", accounts[0].ID)
	} else {
		sb.WriteString("\nIf the user doesn't specify an account, ask which one to use.\n")
	}
	return sb.String()
}

// resolveAccount maps an id or account name onto an account. An empty ref
// resolves only when exactly one account exists.
func resolveAccount(accounts []domain.Account, ref string) (domain.Account, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if len(accounts) == 1 {
			return accounts[0], true
		}
		return domain.Account{}, false
	}
	for _, a := range accounts {
		if a.ID == ref || strings.EqualFold(a.Name, ref) {
			return a, true
		}
	}
	return domain.Account{}, false
}

func accountNames(accounts []domain.Account) string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// dispatch performs the structured call and describes the outcome. Failures
// never leak internals; the ledger's own error kinds decide the wording.
func (b *Bridge) dispatch(ctx context.Context, actor string, accounts []domain.Account, name string, args Args) (string, bool) {
	switch name {
	case "add_transaction":
		account, ok := resolveAccount(accounts, args.AccountID)
		if !ok {
			if len(accounts) == 0 {
				return "You don't have any accounts yet. Want me to plant one first?", false
			}
			return "Which account should I use? You have: " + accountNames(accounts) + ".", false
		}

		in := ledger.CreateTransactionInput{
			AccountID:   account.ID,
			Amount:      money.FromFloat(args.Amount),
			Description: args.Description,
			Type:        domain.TransactionType(strings.ToUpper(args.Type)),
		}
		if strings.TrimSpace(args.Date) != "" {
			if d, err := time.Parse(time.RFC3339, args.Date); err == nil {
				in.Date = &d
			}
		}

		created, err := b.Ledger.CreateTransaction(ctx, actor, in)
		if err != nil {
			return actionFailed(err), false
		}
		return fmt.Sprintf("Added %s of $%s for %q in %s.", strings.ToLower(string(created.Type)), money.String(created.Amount), args.Description, account.Name), true

	case "create_account":
		created, err := b.Ledger.CreateAccount(ctx, actor, ledger.CreateAccountInput{
			Name:            args.Name,
			Type:            domain.AccountType(strings.ToUpper(args.Type)),
			StartingBalance: money.FromFloat(args.StartingBalance),
		})
		if err != nil {
			return actionFailed(err), false
		}
		return fmt.Sprintf("Created new %s account %q with $%s.", strings.ToLower(string(created.Type)), created.Name, money.String(created.Balance)), true

	case "transfer_money":
		from, ok := resolveAccount(accounts, args.FromAccountID)
		if !ok {
			return "Which account should the money come from? You have: " + accountNames(accounts) + ".", false
		}
		to, ok := resolveAccount(accounts, args.ToAccountID)
		if !ok {
			return "Which account should the money go to? You have: " + accountNames(accounts) + ".", false
		}

		created, err := b.Ledger.Transfer(ctx, actor, from.ID, to.ID, money.FromFloat(args.Amount), args.Description)
		if err != nil {
			return actionFailed(err), false
		}
		return fmt.Sprintf("Transferred $%s from %s to %s.", money.String(created.Amount), from.Name, to.Name), true

	case "delete_transaction":
		if err := b.Ledger.DeleteTransaction(ctx, actor, args.TransactionID); err != nil {
			return actionFailed(err), false
		}
		return "Deleted that transaction and restored the balance.", true

	case "delete_account":
		if err := b.Ledger.DeleteAccount(ctx, actor, args.AccountID); err != nil {
			return actionFailed(err), false
		}
		return "Deleted that account and its transactions.", true

	default:
		return "I don't know how to do that yet.", false
	}
}

func actionFailed(err error) string {
	switch ledger.Status(err) {
	case 400:
		return "I couldn't do that: " + ledger.Message(err) + "."
	case 404:
		return "I couldn't find that. Double-check the account or transaction."
	case 409:
		return "That would conflict with existing data: " + ledger.Message(err) + "."
	default:
		return "Something went wrong on my end. Try again in a moment."
	}
}
