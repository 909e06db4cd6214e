package logchannel

const (
	maxFieldLength   = 1024
	maxPreviewLength = 512
	emptyContent     = "*empty*"
)

// TruncateField shortens s to fit an embed field, marking the cut with "...".
func TruncateField(s string) string {
	r := []rune(s)
	if len(r) <= maxFieldLength {
		return s
	}
	return string(r[:maxFieldLength-3]) + "..."
}

// Preview returns the first 512 characters of s, or "*empty*" when s is empty.
func Preview(s string) string {
	if s == "" {
		return emptyContent
	}
	r := []rune(s)
	if len(r) > maxPreviewLength {
		return string(r[:maxPreviewLength])
	}
	return s
}
