package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PostedLine is a stored journal line with its journal header and account already resolved.
type PostedLine struct {
	JournalID          string
	JournalSeq         int64
	JournalNumber      string
	JournalDescription string
	Date               time.Time
	LineNumber         int
	AccountID          string
	AccountCode        string
	AccountName        string
	AccountType        AccountType
	Side               Side
	Amount             decimal.Decimal
	Description        string
}

func (l PostedLine) DebitAmount() decimal.Decimal {
	if l.Side == Debit {
		return l.Amount
	}
	return decimal.Zero
}

func (l PostedLine) CreditAmount() decimal.Decimal {
	if l.Side == Credit {
		return l.Amount
	}
	return decimal.Zero
}

// Before orders lines by date, then journal creation order, then line number.
func (l PostedLine) Before(o PostedLine) bool {
	if !l.Date.Equal(o.Date) {
		return l.Date.Before(o.Date)
	}
	if l.JournalSeq != o.JournalSeq {
		return l.JournalSeq < o.JournalSeq
	}
	return l.LineNumber < o.LineNumber
}

// SortPosted sorts lines in place into posting order.
func SortPosted(lines []PostedLine) {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Before(lines[j]) })
}

// SignedAmount is the contribution of one line to the balance of a t-typed account.
func SignedAmount(side Side, amount decimal.Decimal, t AccountType) decimal.Decimal {
	if side == t.NormalSide() {
		return amount
	}
	return amount.Neg()
}

// Apply adds a single line to balance.
func Apply(balance decimal.Decimal, side Side, amount decimal.Decimal, t AccountType) decimal.Decimal {
	return balance.Add(SignedAmount(side, amount, t))
}

// Fold applies lines to initial in the order given.
func Fold(initial decimal.Decimal, lines []PostedLine, t AccountType) decimal.Decimal {
	balance := initial
	for _, l := range lines {
		balance = Apply(balance, l.Side, l.Amount, t)
	}
	return balance
}

// accountLines is one account's slice of a ledger snapshot, in posting order.
type accountLines struct {
	AccountID   string
	AccountCode string
	AccountName string
	AccountType AccountType
	Lines       []PostedLine
}

// groupByAccount partitions lines by account without touching the input. Groups come
// back sorted by account code and each group is in posting order.
func groupByAccount(lines []PostedLine) []accountLines {
	index := make(map[string]int)
	var groups []accountLines
	for _, l := range lines {
		i, ok := index[l.AccountID]
		if !ok {
			i = len(groups)
			index[l.AccountID] = i
			groups = append(groups, accountLines{
				AccountID:   l.AccountID,
				AccountCode: l.AccountCode,
				AccountName: l.AccountName,
				AccountType: l.AccountType,
			})
		}
		groups[i].Lines = append(groups[i].Lines, l)
	}

	for i := range groups {
		SortPosted(groups[i].Lines)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].AccountCode != groups[j].AccountCode {
			return groups[i].AccountCode < groups[j].AccountCode
		}
		return groups[i].AccountID < groups[j].AccountID
	})
	return groups
}

func filterLines(lines []PostedLine, keep func(PostedLine) bool) []PostedLine {
	out := make([]PostedLine, 0, len(lines))
	for _, l := range lines {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
