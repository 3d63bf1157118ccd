package model

import "strings"

const nameAlphabet = "_abcdefghijklmnopqrstuvwxyz0123456789"

// MaxNameLength is the longest name a base-37 long can carry.
const MaxNameLength = 12

// NameToLong packs a player name into the base-37 long the client uses.
// Characters outside [a-z0-9] become underscores; trailing underscores are dropped.
func NameToLong(name string) int64 {
	var l int64
	for i := 0; i < len(name) && i < MaxNameLength; i++ {
		c := name[i]
		l *= 37
		switch {
		case c >= 'A' && c <= 'Z':
			l += int64(c-'A') + 1
		case c >= 'a' && c <= 'z':
			l += int64(c-'a') + 1
		case c >= '0' && c <= '9':
			l += int64(c-'0') + 27
		}
	}
	for l%37 == 0 && l != 0 {
		l /= 37
	}
	return l
}

// LongToName reverses NameToLong. Underscores stand for spaces.
func LongToName(l int64) string {
	if l <= 0 {
		return ""
	}
	var buf [MaxNameLength]byte
	i := len(buf)
	for l != 0 && i > 0 {
		i--
		buf[i] = nameAlphabet[l%37]
		l /= 37
	}
	return string(buf[i:])
}

// FormatName turns a raw login name into display form: lower case, underscores
// as spaces, every word capitalized.
func FormatName(name string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(name), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
