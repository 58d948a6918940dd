package recovery

import (
	"runtime/debug"

	"github.com/dropforge/gitdrop/internal/logger"
)

// SafeGo runs a function in a goroutine with automatic panic recovery so
// that a single background goroutine cannot take down the server
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("🚨 PANIC recovered in goroutine '%s': %v", name, r)
				logger.Errorf("Stack trace:\n%s", debug.Stack())
			}
		}()
		fn()
	}()
}
