package docstore

// Op is a filter operator.
type Op int

const (
	// OpEq matches when the field equals the value.
	OpEq Op = iota
	// OpNe matches when the field differs from the value or is missing.
	OpNe
	// OpIn matches when the field equals one of the values.
	OpIn
	// OpHas matches an array field containing the value, or a scalar field equal to it.
	OpHas
	// OpContainsFold matches a string field containing the value, ignoring case.
	OpContainsFold
	// OpMinLen matches an array field with at least the given number of elements.
	OpMinLen
)

// Cond is a single filter condition.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter []Cond

// Eq builds an equality condition.
func Eq(field string, value any) Cond { return Cond{Field: field, Op: OpEq, Value: value} }

// Ne builds an inequality condition.
func Ne(field string, value any) Cond { return Cond{Field: field, Op: OpNe, Value: value} }

// In builds a set-membership condition.
func In(field string, values []string) Cond { return Cond{Field: field, Op: OpIn, Value: values} }

// Has builds an array-contains condition.
func Has(field string, value any) Cond { return Cond{Field: field, Op: OpHas, Value: value} }

// ContainsFold builds a case-insensitive substring condition. term is literal, not a pattern.
func ContainsFold(field, term string) Cond {
	return Cond{Field: field, Op: OpContainsFold, Value: term}
}

// MinLen builds an array-length condition.
func MinLen(field string, n int) Cond { return Cond{Field: field, Op: OpMinLen, Value: n} }

// ByID matches the document with the given id.
func ByID(id string) Cond { return Eq(IDField, id) }

// Where is sugar for building a Filter inline.
func Where(conds ...Cond) Filter { return Filter(conds) }

// Update describes a partial modification of a single document.
type Update struct {
	Set      map[string]any
	AddToSet map[string]any
	Pull     map[string]any
	Unset    []string
}

// IsZero reports whether the update would change nothing.
func (u Update) IsZero() bool {
	return len(u.Set) == 0 && len(u.AddToSet) == 0 && len(u.Pull) == 0 && len(u.Unset) == 0
}
