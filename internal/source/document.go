package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/disburse/internal/model"
)

// ErrNotASequence is returned when the input document is not a list of records.
var ErrNotASequence = errors.New("expected a sequence of account records")

// utf8BOM prefixes exports written by some Windows and database tools.
var utf8BOM = []byte("\xEF\xBB\xBF")

// document mirrors the aggregated escrow record as stored upstream.
type document struct {
	Ownership                string              `json:"ownership"`
	Balance                  decimal.NullDecimal `json:"balance"`
	Rent                     decimal.NullDecimal `json:"rent"`
	AmountDisbursedThisMonth decimal.NullDecimal `json:"amountDisbursedThisMonth"`
	DisbursedThisMonth       decimal.NullDecimal `json:"disbursedThisMonth"`
	DisbursementRules        ruleSet             `json:"disbursementRules"`
	Expenses                 expenseList         `json:"expenses"`
	PropertyAddress          stringOrFirst       `json:"propertyAddress"`
	EscrowAccountIdentifier  string              `json:"escrowAccountIdentifier"`
	Escrow                   *escrowDoc          `json:"escrow"`
}

type escrowDoc struct {
	AccountNum string   `json:"accountNum"`
	OwnerID    objectID `json:"ownerId"`
}

type ruleDoc struct {
	FixedAmount    decimal.NullDecimal  `json:"fixedAmount"`
	Percentage     decimal.NullDecimal  `json:"percentage"`
	DepositAccount model.DepositAccount `json:"depositAccount"`
	TaxesExtra     bool                 `json:"taxesExtra"`
}

type expenseDoc struct {
	Amount decimal.NullDecimal `json:"amount"`
}

// ruleSet accepts either a flat rule list or a list of rule-sets, in which
// case only the first rule-set is used.
type ruleSet []ruleDoc

func (s *ruleSet) UnmarshalJSON(data []byte) error {
	nested, err := splitNested(data)
	if err != nil {
		return fmt.Errorf("disbursementRules: %w", err)
	}
	if len(nested) == 0 {
		*s = nil
		return nil
	}
	var rules []ruleDoc
	if isList(nested[0]) {
		err = json.Unmarshal(nested[0], &rules)
	} else {
		err = json.Unmarshal(data, &rules)
	}
	if err != nil {
		return fmt.Errorf("disbursementRules: %w", err)
	}
	*s = rules
	return nil
}

// expenseList accepts a flat list or a singly-nested list of expenses.
type expenseList []expenseDoc

func (l *expenseList) UnmarshalJSON(data []byte) error {
	nested, err := splitNested(data)
	if err != nil {
		return fmt.Errorf("expenses: %w", err)
	}
	var out []expenseDoc
	for _, raw := range nested {
		if isList(raw) {
			var inner []expenseDoc
			if err := json.Unmarshal(raw, &inner); err != nil {
				return fmt.Errorf("expenses: %w", err)
			}
			out = append(out, inner...)
			continue
		}
		var e expenseDoc
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("expenses: %w", err)
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

// stringOrFirst accepts a string or a list of strings (first one wins).
type stringOrFirst string

func (s *stringOrFirst) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if isList(data) {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("propertyAddress: %w", err)
		}
		if len(list) > 0 {
			*s = stringOrFirst(list[0])
		}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("propertyAddress: %w", err)
	}
	*s = stringOrFirst(v)
	return nil
}

// objectID accepts a plain string or an extended-JSON {"$oid": "..."} value.
type objectID string

func (o *objectID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = objectID(s)
		return nil
	}
	var ext struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &ext); err != nil {
		return fmt.Errorf("ownerId: %w", err)
	}
	*o = objectID(ext.OID)
	return nil
}

func splitNested(data []byte) ([]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func isList(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func (d document) ownerID() string {
	if d.Escrow == nil {
		return ""
	}
	return string(d.Escrow.OwnerID)
}

func (d document) record() model.AccountRecord {
	rec := model.AccountRecord{
		Ownership:               d.Ownership,
		Balance:                 d.Balance.Decimal,
		Rent:                    d.Rent.Decimal,
		PropertyAddress:         string(d.PropertyAddress),
		EscrowAccountIdentifier: d.EscrowAccountIdentifier,
	}

	if d.AmountDisbursedThisMonth.Valid {
		rec.DisbursedThisMonth = d.AmountDisbursedThisMonth.Decimal
	} else {
		rec.DisbursedThisMonth = d.DisbursedThisMonth.Decimal
	}

	if rec.EscrowAccountIdentifier == "" && d.Escrow != nil {
		rec.EscrowAccountIdentifier = d.Escrow.AccountNum
	}

	for _, r := range d.DisbursementRules {
		rule := model.DisbursementRule{
			FixedAmount:    optional(r.FixedAmount),
			Percentage:     optional(r.Percentage),
			DepositAccount: r.DepositAccount,
			TaxesExtra:     r.TaxesExtra,
		}
		if rule.DepositAccount.AccountType == "" {
			rule.DepositAccount.AccountType = model.DefaultAccountType
		}
		rec.Rules = append(rec.Rules, rule)
	}

	for _, e := range d.Expenses {
		rec.Expenses = append(rec.Expenses, model.Expense{Amount: optional(e.Amount)})
	}

	return rec
}

func optional(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func decodeDocuments(data []byte) ([]document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !isList(data) {
		return nil, ErrNotASequence
	}
	var docs []document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decoding account records: %w", err)
	}
	return docs, nil
}

func toRecords(docs []document) []model.AccountRecord {
	records := make([]model.AccountRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records
}

// Decode reads a JSON array of account documents and normalises them into
// records.
func Decode(r io.Reader) ([]model.AccountRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading account records: %w", err)
	}
	docs, err := decodeDocuments(data)
	if err != nil {
		return nil, err
	}
	return toRecords(docs), nil
}

// DecodeYAML reads a YAML sequence of account documents.
func DecodeYAML(r io.Reader) ([]model.AccountRecord, error) {
	data, err := yamlToJSON(r)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

func yamlToJSON(r io.Reader) ([]byte, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML account records: %w", err)
	}
	if _, ok := v.([]any); !ok {
		return nil, ErrNotASequence
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("converting YAML account records: %w", err)
	}
	return data, nil
}
