// internal/tokenlist/version.go
package tokenlist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBump неизвестный вид повышения версии
var ErrInvalidBump = errors.New("invalid version bump")

// BumpKind вид повышения версии списка
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
)

// Version версия опубликованного списка
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseBump разбирает вид повышения. Пустая строка означает patch.
func ParseBump(s string) (BumpKind, error) {
	switch kind := BumpKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "":
		return BumpPatch, nil
	case BumpMajor, BumpMinor, BumpPatch:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBump, s)
	}
}

// Bump увеличивает ровно одно поле версии. Остальные поля не сбрасываются:
// {1,2,3} + minor = {1,3,3}.
func (v Version) Bump(kind BumpKind) (Version, error) {
	switch kind {
	case BumpMajor:
		v.Major++
	case BumpMinor:
		v.Minor++
	case BumpPatch:
		v.Patch++
	default:
		return v, fmt.Errorf("%w: %q", ErrInvalidBump, kind)
	}
	return v, nil
}
