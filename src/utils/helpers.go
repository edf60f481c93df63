package utils

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
)

func IsProd() bool {
	env := strings.ToLower(os.Getenv("API_ENV"))
	return env == "prod" || env == "production"
}

// WithSuffix appends the environment to a resource name outside production,
// e.g. "emails" becomes "emails-staging".
func WithSuffix(name string) string {
	env := strings.ToLower(os.Getenv("API_ENV"))
	if env == "" || IsProd() {
		return name
	}
	return fmt.Sprintf("%s-%s", name, env)
}

// SafeGo runs fn in a goroutine and logs instead of crashing on panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[%s] recovered from panic: %v\n%s\n", name, r, debug.Stack())
			}
		}()
		fn()
	}()
}
