package types

// NameKeySeparator joins a feature name and its state code.
const NameKeySeparator = ":"

// NameKey identifies a feature by name and state, e.g. "Roanoke:VA".
// Comparison is exact: no case folding or whitespace trimming.
type NameKey string

// NewNameKey concatenates the feature name and state abbreviation.
func NewNameKey(name, state string) NameKey {
	return NameKey(name + NameKeySeparator + state)
}

// String returns the key text.
func (k NameKey) String() string {
	return string(k)
}
