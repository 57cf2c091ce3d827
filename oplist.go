package pbpe

// OpKind distinguishes the two operation variants an OperationList can hold.
type OpKind int

const (
	// OpMerge fuses Parts[0] and Parts[1] into Result.
	OpMerge OpKind = iota
	// OpSplit undoes a previous merge at Source, replacing it with Parts.
	OpSplit
)

// Operation is one entry of the Operation List (C4): either a Merge of two
// token IDs into a result ID, or a Split of a single token ID back into its
// two components. The Operation List is the literal, ordered definition of
// a trained model — the Encoder applies it, unmodified, to every word.
type Operation struct {
	Kind OpKind

	// Merge fields.
	Parts  [2]int // left, right token IDs (Merge) or resulting parts (Split)
	Result int    // merged token ID (Merge); left at 0 for Split, which uses Source

	// Source is the token ID being split; set only for OpSplit. Parts holds
	// the two token IDs it decomposes into.
	Source int
}

// Merge constructs a Merge operation (left,right) -> result.
func Merge(left, right, result int) Operation {
	return Operation{Kind: OpMerge, Parts: [2]int{left, right}, Result: result}
}

// Split constructs a Split operation source -> (left, right).
func Split(source, left, right int) Operation {
	return Operation{Kind: OpSplit, Source: source, Parts: [2]int{left, right}}
}

// OperationList is the append-only, strictly ordered log of Merge and Split
// operations produced by training. Replaying it in order against a word's
// initial symbol decomposition is the entire encoding algorithm.
type OperationList struct {
	ops []Operation
}

// NewOperationList returns an empty Operation List.
func NewOperationList() *OperationList {
	return &OperationList{}
}

// Append adds op to the end of the list.
func (l *OperationList) Append(op Operation) {
	l.ops = append(l.ops, op)
}

// Len returns the number of operations recorded.
func (l *OperationList) Len() int { return len(l.ops) }

// At returns the operation at index i.
func (l *OperationList) At(i int) Operation { return l.ops[i] }

// All returns every operation, in training order. The returned slice must
// not be mutated by the caller.
func (l *OperationList) All() []Operation { return l.ops }
