package archive

// RequiredColumns returns the column names a decoder for the given table
// needs present in a Batch. Method handlers use this to build the
// FieldSelection they send with a Query rather than hand-listing column
// names at each call site.
func RequiredColumns(table string) []string {
	switch table {
	case "block":
		return append([]string(nil), blockHeaderColumns...)
	case "transaction":
		return append([]string(nil), transactionColumns...)
	case "transaction_hash":
		return append([]string(nil), transactionHashColumns...)
	case "receipt":
		return append([]string(nil), receiptColumns...)
	case "log":
		return append([]string(nil), logColumns...)
	default:
		return nil
	}
}
