// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// LineSpinner is a plain ASCII rotation.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner is the loading indicator shown while a question is in flight.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Bubbles converts the config to a bubbles spinner definition.
func (s SpinnerConfig) Bubbles() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}

// =============================================================================
// TRANSITION EFFECTS
// =============================================================================

// EasingFunc maps progress (0-1) to output (0-1).
type EasingFunc func(t float64) float64

// EaseLinear is constant speed.
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic decelerates to zero.
func EaseOutCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

// EaseInCubic accelerates from zero.
func EaseInCubic(t float64) float64 {
	return t * t * t
}

// Progress returns how far elapsed is through total, clamped to [0,1].
// A zero total is already complete.
func Progress(elapsed, total time.Duration) float64 {
	if total <= 0 || elapsed >= total {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(total)
}

// Rows scales full by eased progress, rounding to the nearest row.
func Rows(full int, progress float64, ease EasingFunc) int {
	if full <= 0 {
		return 0
	}
	if ease == nil {
		ease = EaseLinear
	}
	p := ease(progress)
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return full
	}
	return int(float64(full)*p + 0.5)
}
