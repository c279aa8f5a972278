package layer

import "strings"

// Defaults for the public Tellor Layer REST gateway.
const (
	DefaultBaseURL = "https://info.layer-node.com"
	DefaultDenom   = "loya"
)

// FieldSpec describes one monitored metric: the CSV column it lands in, the
// REST path template that serves it, and the Extractor that pulls the value
// out of the response body. The set is fixed per deployment and shared
// read-only across all accounts.
type FieldSpec struct {
	Column   string
	Endpoint string // path template; {address}, {valoper} and {denom} are substituted per target
	Extract  Extractor
}

// Target identifies the address pair one snapshot cycle fetches for. Name is
// carried for diagnostics and metric labels only.
type Target struct {
	Name    string
	Address string
	Valoper string
}

// URL materializes the endpoint template for one target against a base URL.
func (f FieldSpec) URL(base, denom string, t Target) string {
	r := strings.NewReplacer(
		"{address}", t.Address,
		"{valoper}", t.Valoper,
		"{denom}", denom,
	)
	return strings.TrimRight(base, "/") + r.Replace(f.Endpoint)
}

// DefaultFields returns the six Layer metrics in their CSV column order.
// Paths follow the chain's REST API: the cosmos bank, distribution and
// staking modules plus the tellor reporter module.
func DefaultFields() []FieldSpec {
	return []FieldSpec{
		{
			Column:   "account_balance",
			Endpoint: "/cosmos/bank/v1beta1/balances/{address}/by_denom?denom={denom}",
			Extract:  Field("balance.amount"),
		},
		{
			Column:   "rewards",
			Endpoint: "/cosmos/distribution/v1beta1/delegators/{address}/rewards",
			Extract:  SumOf("total", "amount"),
		},
		{
			Column:   "outstanding_rewards",
			Endpoint: "/cosmos/distribution/v1beta1/validators/{valoper}/outstanding_rewards",
			Extract:  Field("rewards.rewards.0.amount"),
		},
		{
			Column:   "available-tips",
			Endpoint: "/tellor-io/layer/reporter/available-tips/{address}",
			Extract:  SumOf("tips", "amount.amount"),
		},
		{
			Column:   "delegator_shares",
			Endpoint: "/cosmos/staking/v1beta1/validators/{valoper}",
			Extract:  Field("validator.delegator_shares"),
		},
		{
			Column:   "delegations",
			Endpoint: "/cosmos/staking/v1beta1/delegations/{address}",
			Extract:  SumOf("delegation_responses", "balance.amount"),
		},
	}
}

// Columns returns the column names of specs in order.
func Columns(specs []FieldSpec) []string {
	cols := make([]string, len(specs))
	for i, spec := range specs {
		cols[i] = spec.Column
	}
	return cols
}
