package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustDistinct stops the process when two secrets that must differ are equal.
func MustDistinct(a, b []byte, aName, bName string) {
	if string(a) == string(b) {
		log.Fatalf("%s and %s must not be equal", aName, bName)
	}
}
