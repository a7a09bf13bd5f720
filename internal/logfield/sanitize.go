// Package logfield builds zap fields for archive paths and handles, sanitizing
// guest path names according to the configured log mode.
package logfield

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// SanitizationMode controls how guest path names appear in logs
type SanitizationMode int32

const (
	// ProductionMode hashes path names
	ProductionMode SanitizationMode = iota
	// DevelopmentMode shows truncated path names
	DevelopmentMode
	// DebugMode shows full path names
	DebugMode
)

var currentMode atomic.Int32

func init() {
	currentMode.Store(int32(DebugMode))
	if mode, ok := ParseMode(os.Getenv("ARCHIVEFS_LOG_MODE")); ok {
		currentMode.Store(int32(mode))
	}
}

// ParseMode parses a mode name. Unknown names report false.
func ParseMode(s string) (SanitizationMode, bool) {
	switch strings.ToLower(s) {
	case "production":
		return ProductionMode, true
	case "development":
		return DevelopmentMode, true
	case "debug":
		return DebugMode, true
	}
	return DebugMode, false
}

// SetMode changes the sanitization mode for all subsequent fields
func SetMode(mode SanitizationMode) {
	currentMode.Store(int32(mode))
}

// SanitizePath renders a guest path for logging based on the current mode
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}

	switch SanitizationMode(currentMode.Load()) {
	case ProductionMode:
		hash := sha256.Sum256([]byte(path))
		return fmt.Sprintf("hash:%x", hash[:8])
	case DevelopmentMode:
		if len(path) <= 20 {
			return path
		}
		return path[:10] + "..." + path[len(path)-7:]
	default:
		return path
	}
}

// Path returns a sanitized "path" field. Any fmt.Stringer is accepted so that
// binary archive paths render as hex.
func Path(p fmt.Stringer) zap.Field {
	return zap.String("path", SanitizePath(p.String()))
}

// Handle returns an archive handle field
func Handle(h uint64) zap.Field {
	return zap.String("handle", fmt.Sprintf("0x%X", h))
}

// Code returns a result code field
func Code(c uint32) zap.Field {
	return zap.String("result", fmt.Sprintf("0x%08X", c))
}
