// Package filter describes column-level conditions applied by list queries.
package filter

// ComparisonType defines the kind of comparison.
type ComparisonType string

const (
	Equal     ComparisonType = "eq"        // column = value
	NotEqual  ComparisonType = "neq"       // column <> value
	InList    ComparisonType = "in"        // column IN (values)
	NotInList ComparisonType = "nin"       // column NOT IN (values)
	Contains  ComparisonType = "contains"  // column ILIKE %value% (value matched literally)
	IsNull    ComparisonType = "null"      // column IS NULL
	IsNotNull ComparisonType = "not_null"  // column IS NOT NULL
)

// Item is a single condition.
type Item struct {
	Field    string         `json:"field"`    // column name (snake_case)
	Operator ComparisonType `json:"operator"` // comparison
	Value    any            `json:"value"`    // scalar or slice of values
}

// Eq is shorthand for an Equal condition.
func Eq(field string, value any) Item {
	return Item{Field: field, Operator: Equal, Value: value}
}
