package domain

// Nullable holds a value that a source page may or may not provide
type Nullable[T any] struct {
	Value T    `json:"value"`
	Valid bool `json:"valid"`
}

// Some wraps a present value
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Valid: true}
}

// Null returns an absent value
func Null[T any]() Nullable[T] {
	return Nullable[T]{}
}

// Get returns the value and whether it is present
func (n Nullable[T]) Get() (T, bool) {
	return n.Value, n.Valid
}

// OrElse returns the value, or def when absent
func (n Nullable[T]) OrElse(def T) T {
	if !n.Valid {
		return def
	}
	return n.Value
}

// FieldResult is the outcome of extracting one optional field.
// Diagnostic is set when the field could not be read.
type FieldResult[T any] struct {
	Nullable[T]
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Found builds a successful field result
func Found[T any](v T) FieldResult[T] {
	return FieldResult[T]{Nullable: Some(v)}
}

// Missing builds a failed field result carrying a diagnostic
func Missing[T any](diagnostic string) FieldResult[T] {
	return FieldResult[T]{Diagnostic: diagnostic}
}

// Failed reports whether extraction produced a diagnostic
func (r FieldResult[T]) Failed() bool {
	return r.Diagnostic != ""
}
