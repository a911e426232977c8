package utils

// maskedValue is the fixed placeholder printed in place of secret values.
// A fixed width avoids leaking the length of the real value.
const maskedValue = "********"

// MaskValue returns a fixed-width placeholder for a secret value.
func MaskValue(string) string {
	return maskedValue
}
