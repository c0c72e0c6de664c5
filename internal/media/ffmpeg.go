// Package media combines video clips into a single rendered file by
// driving the ffmpeg and ffprobe binaries.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// runCommand executes an external binary and captures both output
// streams. Tests replace it to avoid requiring ffmpeg on the host.
var runCommand = func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Clip is one entry on the composition timeline. Path points at a local
// video file; StartTime and Duration are seconds on the output timeline.
type Clip struct {
	Path      string
	StartTime float64
	Duration  float64
}

// Result describes a finished composition.
type Result struct {
	OutputFile       string  `json:"output_file"`
	OutputPath       string  `json:"output_path"`
	OutputSize       int64   `json:"output_size"`
	TotalDuration    float64 `json:"total_duration"`
	ExecutionSeconds float64 `json:"execution_time"`
}

// ProbeDimensions reads the width and height of the first video stream
// using ffprobe.
func ProbeDimensions(ctx context.Context, path string) (width, height int, err error) {
	stdout, _, err := runCommand(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		path)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var probe struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(stdout, &probe); err != nil {
		return 0, 0, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}
	if len(probe.Streams) == 0 {
		return 0, 0, nil
	}
	return probe.Streams[0].Width, probe.Streams[0].Height, nil
}

// Combine renders the timeline into a single mp4 under workDir. Clips
// referencing the same file share one ffmpeg input. Every clip is padded
// to the largest dimensions found across the timeline so the overlay
// chain lines up. audioPath is optional; when set the output is trimmed
// to the timeline's total duration.
func Combine(ctx context.Context, clips []Clip, audioPath, workDir string) (*Result, error) {
	if len(clips) == 0 {
		return nil, errors.New("no video clips to combine")
	}

	var inputOrder []string
	inputIndex := make(map[string]int)
	dimensions := make(map[string][2]int)
	maxWidth, maxHeight := 0, 0

	for _, clip := range clips {
		if _, seen := inputIndex[clip.Path]; seen {
			continue
		}
		width, height, err := ProbeDimensions(ctx, clip.Path)
		if err != nil {
			return nil, err
		}
		if width == 0 || height == 0 {
			return nil, fmt.Errorf("could not determine dimensions for video: %s", clip.Path)
		}
		inputIndex[clip.Path] = len(inputOrder)
		inputOrder = append(inputOrder, clip.Path)
		dimensions[clip.Path] = [2]int{width, height}
		if width > maxWidth {
			maxWidth = width
		}
		if height > maxHeight {
			maxHeight = height
		}
	}

	needsScaling := make(map[string]bool, len(inputOrder))
	for path, d := range dimensions {
		needsScaling[path] = d[0] < maxWidth || d[1] < maxHeight
	}

	outputFile := fmt.Sprintf("combined_video_%s.mp4", time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(workDir, outputFile)

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-hwaccel", "auto"}
	for _, path := range inputOrder {
		args = append(args, "-i", path)
	}
	audioIndex := len(inputOrder)
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	}

	filter, outLabel := buildFilterComplex(clips, inputIndex, needsScaling, maxWidth, maxHeight)
	args = append(args, "-filter_complex", filter, "-map", "["+outLabel+"]")

	var totalDuration float64
	for _, clip := range clips {
		if end := clip.StartTime + clip.Duration; end > totalDuration {
			totalDuration = end
		}
	}
	if audioPath != "" {
		args = append(args,
			"-map", fmt.Sprintf("%d:a", audioIndex),
			"-t", strconv.FormatFloat(totalDuration, 'f', -1, 64))
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "23",
		"-threads", "0",
		"-c:a", "aac",
		"-b:a", "128k",
		"-shortest",
		outputPath)

	start := time.Now()
	_, stderr, err := runCommand(ctx, "ffmpeg", args...)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %s: %w", bytes.TrimSpace(stderr), err)
	}

	var size int64
	if info, err := os.Stat(outputPath); err == nil {
		size = info.Size()
	}

	return &Result{
		OutputFile:       outputFile,
		OutputPath:       outputPath,
		OutputSize:       size,
		TotalDuration:    totalDuration,
		ExecutionSeconds: elapsed.Seconds(),
	}, nil
}

// buildFilterComplex emits one trim/scale/setpts chain per timeline clip
// and, for multi-clip timelines, an overlay chain stitching them onto a
// shared canvas. Returns the filtergraph and the label of the final
// video stream.
func buildFilterComplex(clips []Clip, inputIndex map[string]int, needsScaling map[string]bool, maxWidth, maxHeight int) (string, string) {
	parts := make([]string, 0, len(clips))
	for i, clip := range clips {
		chain := fmt.Sprintf("[%d:v]trim=duration=%s", inputIndex[clip.Path], formatSeconds(clip.Duration))
		if needsScaling[clip.Path] {
			chain += fmt.Sprintf(",scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
				maxWidth, maxHeight, maxWidth, maxHeight)
		}
		chain += fmt.Sprintf(",setpts=PTS+%s/TB[v%d]", formatSeconds(clip.StartTime), i)
		parts = append(parts, chain)
	}

	if len(clips) == 1 {
		return parts[0], "v0"
	}

	overlays := make([]string, 0, len(clips)-1)
	previous := "v0"
	for i := 1; i < len(clips); i++ {
		label := fmt.Sprintf("tmp%d", i)
		overlays = append(overlays, fmt.Sprintf("[%s][v%d]overlay[%s]", previous, i, label))
		previous = label
	}

	return strings.Join(parts, ";") + ";" + strings.Join(overlays, ";"), previous
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
