package model

// DefaultAccountType is used when a deposit account does not declare one.
const DefaultAccountType = "savings"

// AccountRole identifies what a reference account is used for.
type AccountRole string

const (
	RolePlatformFee AccountRole = "platform_fee"
	RoleExpense     AccountRole = "expense"
)

// DepositAccount is a beneficiary bank account.
type DepositAccount struct {
	AccountName string `json:"accountName" yaml:"accountName"`
	BankName    string `json:"bankName" yaml:"bankName"`
	IFSCNum     string `json:"ifscNum" yaml:"ifscNum"` // routing code
	AccountNum  string `json:"accountNum" yaml:"accountNum"`
	AccountType string `json:"accountType" yaml:"accountType"`
}

// IsZero reports whether the account carries no account number.
func (a DepositAccount) IsZero() bool {
	return a.AccountNum == ""
}

// ReferenceAccounts are the per-ownership accounts that platform fees and
// expenses are routed to.
type ReferenceAccounts struct {
	Ownership          string
	PlatformFeeAccount DepositAccount
	ExpenseAccount     DepositAccount
}
