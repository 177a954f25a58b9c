package utils

import "strings"

// MaskChar replaces every hidden card digit.
const MaskChar = "*"

// MaskCardNumber keeps the last four characters of number and replaces the
// rest with MaskChar. The result has as many characters as the input.
func MaskCardNumber(number string) string {
	chars := []rune(number)
	if len(chars) <= 4 {
		return strings.Repeat(MaskChar, len(chars))
	}
	return strings.Repeat(MaskChar, len(chars)-4) + string(chars[len(chars)-4:])
}
