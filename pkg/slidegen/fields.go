package slidegen

// Placeholder tokens recognized in template slides. A token appears in the
// deck as {{token}}.
const (
	TokenBranch    = "branch"
	TokenManager   = "manager"
	TokenProduct   = "product"
	TokenAmount    = "amount"
	TokenTotal     = "total"
	TokenStartDate = "start-date"
	TokenEndDate   = "end-date"
)

// FieldMap maps a placeholder token to the data column that fills it on
// individual slides.
type FieldMap map[string]string

// DefaultFieldMap returns the default token to column mapping. Data files
// with other column vocabularies override this through GeneratorOptions or
// the CLI config file.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		TokenBranch:  "branch",
		TokenManager: "manager",
		TokenProduct: "product",
		TokenAmount:  "amount",
	}
}

// DefaultDateColumn is the data column scanned for the reporting date range.
const DefaultDateColumn = "date"

// individualTokens are the tokens whose presence marks a slide as per-record.
func individualTokens() []string {
	return []string{TokenBranch, TokenManager, TokenProduct}
}
