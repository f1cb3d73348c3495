/*
Package settings holds the configuration snapshot for the motion path
display and edit passes.

A Settings value is immutable by convention: callers load or construct one,
optionally adjust fields, and pass it by value into each redraw or edit
pass. The core never reads ambient global state, so two passes with the
same snapshot behave identically.

# BSD License

All rights reserved.

Please refer to the license file for more information.
*/
package settings

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Color is an RGBA color with components in [0,1].
type Color struct {
	R float64 `toml:"r"`
	G float64 `toml:"g"`
	B float64 `toml:"b"`
	A float64 `toml:"a"`
}

// RGB is a quick notation for constructing an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Scaled returns the color with its RGB components multiplied by f.
func (c Color) Scaled(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A}
}

// DisplaySpace selects the space motion paths are displayed in.
type DisplaySpace int

const (
	// WorldSpace displays samples at their world positions.
	WorldSpace DisplaySpace = iota
	// CameraSpace displays samples relative to the camera's own frame,
	// so a camera-locked object draws a stationary path.
	CameraSpace
)

// StrokeMode selects the policy used to remap existing keys onto a stroke.
type StrokeMode int

const (
	// StrokeClosest projects each key onto the nearest stroke point.
	StrokeClosest StrokeMode = iota
	// StrokeSpread distributes keys evenly along the stroke arclength.
	StrokeSpread
)

// Settings is one immutable configuration snapshot.
type Settings struct {
	// Playback bounds and display window shape.
	StartTime   float64 `toml:"start_time"`
	EndTime     float64 `toml:"end_time"`
	FramesBack  float64 `toml:"frames_back"`
	FramesFront float64 `toml:"frames_front"`

	// Toggles.
	ShowPath              bool `toml:"show_path"`
	ShowKeyFrames         bool `toml:"show_key_frames"`
	ShowTangents          bool `toml:"show_tangents"`
	ShowKeyFrameNumbers   bool `toml:"show_key_frame_numbers"`
	ShowFrameNumbers      bool `toml:"show_frame_numbers"`
	ShowRotationKeyFrames bool `toml:"show_rotation_key_frames"`
	UsePivots             bool `toml:"use_pivots"`
	AlternatingFrames     bool `toml:"alternating_frames"`

	DrawMode DisplaySpace `toml:"draw_mode"`

	// Sampling and sizing.
	DrawTimeInterval  float64 `toml:"draw_time_interval"`
	DrawFrameInterval int     `toml:"draw_frame_interval"`
	PathSize          float64 `toml:"path_size"`
	FrameSize         float64 `toml:"frame_size"`
	FrameLabelSize    float64 `toml:"frame_label_size"`
	KeyframeLabelSize float64 `toml:"keyframe_label_size"`

	// Colors.
	PathColor          Color `toml:"path_color"`
	WeightedPathColor  Color `toml:"weighted_path_color"`
	CurrentFrameColor  Color `toml:"current_frame_color"`
	KeyframeColor      Color `toml:"keyframe_color"`
	PartialKeyColor    Color `toml:"partial_key_color"`
	SelectedKeyColor   Color `toml:"selected_key_color"`
	TangentColor       Color `toml:"tangent_color"`
	BrokenTangentColor Color `toml:"broken_tangent_color"`
	WeightedTangentCol Color `toml:"weighted_tangent_color"`
	BufferPathColor    Color `toml:"buffer_path_color"`
	FrameLabelColor    Color `toml:"frame_label_color"`
	KeyframeLabelColor Color `toml:"keyframe_label_color"`

	// Stroke editing.
	StrokeMode       StrokeMode `toml:"stroke_mode"`
	StrokeSpacing    float64    `toml:"stroke_spacing"`     // min px between recorded stroke points
	StrokeTolerance  int        `toml:"stroke_tolerance"`   // worse steps tolerated during the key walk
	DrawKeyCount     int        `toml:"draw_key_count"`     // keys created by a freehand synth gesture
	DrawKeySpacing   int        `toml:"draw_key_spacing"`   // frames between synthesized keys
	ParallelRebuild  int        `toml:"parallel_rebuild"`   // min frames before cache rebuilds go parallel
	TangentTimeDelta float64    `toml:"tangent_time_delta"` // numeric differencing step for tangent handles
}

// Sizing multipliers applied on top of FrameSize.
const (
	KeyframeSizeMultiplier     = 1.5
	CurrentFrameSizeMultiplier = 2.2
	SelectedKeySizeMultiplier  = 1.2
)

// Default returns the settings snapshot used when no file is loaded.
func Default() Settings {
	return Settings{
		StartTime:          1,
		EndTime:            200,
		FramesBack:         20,
		FramesFront:        20,
		ShowPath:           true,
		ShowKeyFrames:      true,
		ShowTangents:       true,
		DrawTimeInterval:   1,
		DrawFrameInterval:  5,
		PathSize:           1,
		FrameSize:          3,
		FrameLabelSize:     1,
		KeyframeLabelSize:  1,
		PathColor:          RGB(0.8, 0.5, 0.2),
		WeightedPathColor:  RGB(0.2, 0.6, 0.8),
		CurrentFrameColor:  RGB(1, 1, 1),
		KeyframeColor:      RGB(0.9, 0.3, 0.3),
		PartialKeyColor:    RGB(0.9, 0.7, 0.3),
		SelectedKeyColor:   RGB(1, 1, 0.3),
		TangentColor:       RGB(0.2, 0.8, 0.2),
		BrokenTangentColor: RGB(0.8, 0.2, 0.2),
		WeightedTangentCol: RGB(0.4, 0.7, 0.9),
		BufferPathColor:    RGB(0.5, 0.5, 0.5),
		FrameLabelColor:    RGB(0.7, 0.7, 0.7),
		KeyframeLabelColor: RGB(1, 0.9, 0.4),
		StrokeMode:         StrokeClosest,
		StrokeSpacing:      8,
		StrokeTolerance:    50,
		DrawKeyCount:       5,
		DrawKeySpacing:     1,
		ParallelRebuild:    50,
		TangentTimeDelta:   0.01,
	}
}

// Load reads a TOML settings file on top of the defaults.
// Fields not present in the file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return s.Sanitized(), nil
}

// Sanitized clamps out-of-range values to safe defaults. Invalid user input
// must never leave a pass with a zero or negative step size.
func (s Settings) Sanitized() Settings {
	if s.DrawTimeInterval <= 0 {
		s.DrawTimeInterval = 1
	}
	if s.DrawFrameInterval < 1 {
		s.DrawFrameInterval = 1
	}
	if s.DrawKeySpacing < 1 {
		s.DrawKeySpacing = 1
	}
	if s.DrawKeyCount < 1 {
		s.DrawKeyCount = 1
	}
	if s.StrokeSpacing <= 0 {
		s.StrokeSpacing = 8
	}
	if s.StrokeTolerance < 0 {
		s.StrokeTolerance = 0
	}
	if s.ParallelRebuild < 2 {
		s.ParallelRebuild = 2
	}
	if s.TangentTimeDelta <= 0 {
		s.TangentTimeDelta = 0.01
	}
	if s.EndTime < s.StartTime {
		s.StartTime, s.EndTime = s.EndTime, s.StartTime
	}
	return s
}
