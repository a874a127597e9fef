// Package allocator turns escrow account records into per-beneficiary
// disbursement breakdowns.
//
// Fixed amounts and expenses are taken first and compete for the balance.
// Percentage rules then share whatever remains. Accounts that were already
// paid out this month are still itemised, with every amount at zero.
package allocator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/disburse/internal/logging"
	"github.com/cleared-dev/disburse/internal/model"
)

// ErrReferenceAccountsNotFound is returned when a record's ownership has no
// platform-fee or expense account. It aborts the whole batch.
var ErrReferenceAccountsNotFound = errors.New("reference accounts not found")

var hundred = decimal.NewFromInt(100)

// SkipReason explains why a record is absent from the output.
type SkipReason string

const (
	SkipNoRules             SkipReason = "no_rules"
	SkipInsufficientBalance SkipReason = "insufficient_balance"
)

// Skip describes a record left out of the output.
type Skip struct {
	EscrowAccount string
	Ownership     string
	Reason        SkipReason
	Detail        string
}

// Result is the outcome of one allocation batch.
type Result struct {
	Disbursements []model.AccountDisbursement
	Skipped       []Skip
}

// ReferenceLookup resolves the reference accounts for an ownership.
type ReferenceLookup interface {
	Lookup(ownership string) (model.ReferenceAccounts, error)
}

// Allocator computes disbursements. It performs no I/O besides logging and
// is safe for concurrent use.
type Allocator struct {
	policy Policy
	log    logging.Logger
}

// New creates an Allocator. A nil logger discards output.
func New(policy Policy, log logging.Logger) *Allocator {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Allocator{policy: policy, log: log}
}

// Policy returns the policy the allocator was built with.
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Allocate computes a disbursement for every eligible, solvent record, in
// input order.
func (a *Allocator) Allocate(records []model.AccountRecord, refs ReferenceLookup) (*Result, error) {
	result := &Result{}
	resolved := make(map[string]model.ReferenceAccounts)

	for _, rec := range records {
		log := a.log.WithFields(
			logging.F(logging.FieldEscrowAccount, rec.EscrowAccountIdentifier),
			logging.F(logging.FieldOwnership, rec.Ownership),
		)

		if len(rec.Rules) == 0 || !rec.Rules[0].HasAmount() {
			log.Warn("No disbursement rules, skipping")
			result.Skipped = append(result.Skipped, Skip{
				EscrowAccount: rec.EscrowAccountIdentifier,
				Ownership:     rec.Ownership,
				Reason:        SkipNoRules,
				Detail:        "no fixed amount or percentage on first rule",
			})
			continue
		}

		ref, ok := resolved[rec.Ownership]
		if !ok {
			var err error
			ref, err = resolve(refs, rec.Ownership)
			if err != nil {
				return nil, err
			}
			resolved[rec.Ownership] = ref
		}

		disb, totalFixed := a.allocateRecord(rec, ref)
		if totalFixed.GreaterThan(rec.Balance) && !a.policy.IsExempt(rec.Ownership) {
			detail := fmt.Sprintf("total fixed amounts %s exceed current balance %s",
				totalFixed.StringFixed(2), rec.Balance.StringFixed(2))
			log.Error("Fixed amounts exceed balance, please check",
				logging.F(logging.FieldTotalFixed, totalFixed.StringFixed(2)),
				logging.F(logging.FieldBalance, rec.Balance.StringFixed(2)),
			)
			result.Skipped = append(result.Skipped, Skip{
				EscrowAccount: rec.EscrowAccountIdentifier,
				Ownership:     rec.Ownership,
				Reason:        SkipInsufficientBalance,
				Detail:        detail,
			})
			continue
		}

		if disb.AlreadyDisbursedForTheMonth {
			log.Info("Already disbursed this month, amounts zeroed",
				logging.F(logging.FieldDisbursed, disb.DisbursedThisMonth.StringFixed(2)),
				logging.F(logging.FieldRent, rec.Rent.StringFixed(2)),
			)
		}
		result.Disbursements = append(result.Disbursements, disb)
	}

	return result, nil
}

func resolve(refs ReferenceLookup, ownership string) (model.ReferenceAccounts, error) {
	if refs == nil {
		return model.ReferenceAccounts{}, fmt.Errorf("%w: ownership %q: no lookup configured", ErrReferenceAccountsNotFound, ownership)
	}
	ref, err := refs.Lookup(ownership)
	if err != nil {
		return model.ReferenceAccounts{}, fmt.Errorf("%w: ownership %q: %w", ErrReferenceAccountsNotFound, ownership, err)
	}
	if ref.PlatformFeeAccount.IsZero() {
		return model.ReferenceAccounts{}, fmt.Errorf("%w: ownership %q has no platform fee account", ErrReferenceAccountsNotFound, ownership)
	}
	if ref.ExpenseAccount.IsZero() {
		return model.ReferenceAccounts{}, fmt.Errorf("%w: ownership %q has no expense account", ErrReferenceAccountsNotFound, ownership)
	}
	return ref, nil
}

// allocateRecord builds the breakdown for one record and returns it together
// with the total of fixed amounts and expenses.
func (a *Allocator) allocateRecord(rec model.AccountRecord, ref model.ReferenceAccounts) (model.AccountDisbursement, decimal.Decimal) {
	flagged := a.policy.AlreadyDisbursed(rec.DisbursedThisMonth, rec.Rent)
	amount := func(d decimal.Decimal) decimal.Decimal {
		if flagged {
			return decimal.Zero
		}
		return d
	}

	// One slot per rule; a percentage rule overwrites its fixed slot.
	slots := make([]*model.LineItem, len(rec.Rules))
	totalFixed := decimal.Zero

	for i, rule := range rec.Rules {
		if rule.FixedAmount == nil {
			continue
		}
		amt := amount(*rule.FixedAmount)
		toPlatform := isPlatformFee(rule, ref)
		if toPlatform && rule.TaxesExtra {
			amt = a.policy.WithTax(amt)
		}
		slots[i] = lineItem(amt, rule, toPlatform)
		totalFixed = totalFixed.Add(amt)
	}

	var expenses []model.LineItem
	for _, exp := range rec.Expenses {
		if exp.Amount == nil {
			continue
		}
		amt := amount(*exp.Amount)
		expenses = append(expenses, model.LineItem{
			Amount:  amt,
			Kind:    model.KindExpense,
			Account: withDefaults(ref.ExpenseAccount),
		})
		totalFixed = totalFixed.Add(amt)
	}

	for i, rule := range rec.Rules {
		if rule.Percentage == nil {
			continue
		}
		pool := decimal.Max(rec.Balance.Sub(totalFixed), decimal.Zero)
		amt := amount(pool.Mul(*rule.Percentage).Div(hundred).Round(2))
		slots[i] = lineItem(amt, rule, isPlatformFee(rule, ref))
	}

	items := make([]model.LineItem, 0, len(slots)+len(expenses))
	for _, s := range slots {
		if s != nil {
			items = append(items, *s)
		}
	}
	items = append(items, expenses...)

	return model.AccountDisbursement{
		Ownership:                   rec.Ownership,
		PropertyAddress:             rec.PropertyAddress,
		EscrowAccountIdentifier:     rec.EscrowAccountIdentifier,
		Balance:                     rec.Balance,
		Rent:                        rec.Rent,
		DisbursedThisMonth:          rec.DisbursedThisMonth.Abs(),
		AlreadyDisbursedForTheMonth: flagged,
		LineItems:                   items,
	}, totalFixed
}

func isPlatformFee(rule model.DisbursementRule, ref model.ReferenceAccounts) bool {
	return rule.DepositAccount.AccountNum != "" &&
		rule.DepositAccount.AccountNum == ref.PlatformFeeAccount.AccountNum
}

func lineItem(amt decimal.Decimal, rule model.DisbursementRule, toPlatform bool) *model.LineItem {
	kind := model.KindRent
	if toPlatform {
		kind = model.KindPMSFee
	}
	return &model.LineItem{Amount: amt, Kind: kind, Account: withDefaults(rule.DepositAccount)}
}

func withDefaults(acct model.DepositAccount) model.DepositAccount {
	if acct.AccountType == "" {
		acct.AccountType = model.DefaultAccountType
	}
	return acct
}
