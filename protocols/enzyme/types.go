package enzyme

// Defaults used when an on-chain read group fails. A record is never absent,
// only degraded; the Live flags tell callers whether a field reflects chain
// state or a fallback.
const (
	DefaultAmount        = "0"
	DefaultSharePrice    = "1.0"
	DefaultMonthlyReturn = "0.00"
	DefaultVaultName     = "Unknown Vault"
	DefaultSymbol        = "UNKNOWN"
)

// sharesDecimals is the fixed-point resolution of vault shares and gross
// share values.
const sharesDecimals = 18

// VaultPerformanceRecord is the per-vault result assembled from three
// independent read groups: supply/accessor, performance, and metadata.
// All numeric fields are decimal strings.
type VaultPerformanceRecord struct {
	TotalValueLocked        string `json:"totalValueLocked"`
	TotalSupply             string `json:"totalSupply"`
	SharePrice              string `json:"sharePrice"`
	MonthlyReturnPercent    string `json:"monthlyReturnPercent"`
	DenominationAssetSymbol string `json:"denominationAssetSymbol"`
	VaultName               string `json:"vaultName"`
	VaultSymbol             string `json:"vaultSymbol"`

	// Provenance: true means the field group was read from the chain,
	// false means it holds the documented default.
	SupplyLive       bool `json:"supplyLive"`
	PerformanceLive  bool `json:"performanceLive"`
	DenominationLive bool `json:"denominationLive"`
	NameLive         bool `json:"nameLive"`
	SymbolLive       bool `json:"symbolLive"`
}

// NewDefaultRecord returns a fully degraded record with every field at its
// documented sentinel.
func NewDefaultRecord() VaultPerformanceRecord {
	return VaultPerformanceRecord{
		TotalValueLocked:        DefaultAmount,
		TotalSupply:             DefaultAmount,
		SharePrice:              DefaultSharePrice,
		MonthlyReturnPercent:    DefaultMonthlyReturn,
		DenominationAssetSymbol: DefaultSymbol,
		VaultName:               DefaultVaultName,
		VaultSymbol:             DefaultSymbol,
	}
}
