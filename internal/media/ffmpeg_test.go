package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and answers ffprobe calls with canned
// dimensions keyed by file path.
type fakeRunner struct {
	dimensions map[string][2]int
	ffmpegArgs []string
	ffmpegErr  error
	probeCalls int
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	switch name {
	case "ffprobe":
		f.probeCalls++
		path := args[len(args)-1]
		d, ok := f.dimensions[path]
		if !ok {
			return nil, nil, errors.New("no such file")
		}
		out := fmt.Sprintf(`{"streams":[{"width":%d,"height":%d}]}`, d[0], d[1])
		return []byte(out), nil, nil
	case "ffmpeg":
		f.ffmpegArgs = args
		if f.ffmpegErr != nil {
			return nil, []byte("filtergraph error"), f.ffmpegErr
		}
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unexpected command %q", name)
	}
}

func withFakeRunner(t *testing.T, f *fakeRunner) {
	t.Helper()
	orig := runCommand
	runCommand = f.run
	t.Cleanup(func() { runCommand = orig })
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestProbeDimensions(t *testing.T) {
	withFakeRunner(t, &fakeRunner{dimensions: map[string][2]int{
		"/work/a.mp4": {1920, 1080},
	}})

	w, h, err := ProbeDimensions(context.Background(), "/work/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestProbeDimensions_NoVideoStream(t *testing.T) {
	orig := runCommand
	runCommand = func(context.Context, string, ...string) ([]byte, []byte, error) {
		return []byte(`{"streams":[]}`), nil, nil
	}
	t.Cleanup(func() { runCommand = orig })

	w, h, err := ProbeDimensions(context.Background(), "/work/audio-only.mp4")
	require.NoError(t, err)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestCombine_SingleClip(t *testing.T) {
	f := &fakeRunner{dimensions: map[string][2]int{
		"/work/a.mp4": {1280, 720},
	}}
	withFakeRunner(t, f)

	result, err := Combine(context.Background(), []Clip{
		{Path: "/work/a.mp4", StartTime: 0, Duration: 5},
	}, "", t.TempDir())
	require.NoError(t, err)

	filter := argValue(f.ffmpegArgs, "-filter_complex")
	assert.Equal(t, "[0:v]trim=duration=5,setpts=PTS+0/TB[v0]", filter)
	assert.Equal(t, "[v0]", argValue(f.ffmpegArgs, "-map"))
	assert.NotContains(t, filter, "overlay")
	assert.Equal(t, float64(5), result.TotalDuration)
}

func TestCombine_OverlayChainAndScaling(t *testing.T) {
	f := &fakeRunner{dimensions: map[string][2]int{
		"/work/big.mp4":   {1920, 1080},
		"/work/small.mp4": {640, 480},
	}}
	withFakeRunner(t, f)

	result, err := Combine(context.Background(), []Clip{
		{Path: "/work/big.mp4", StartTime: 0, Duration: 5},
		{Path: "/work/small.mp4", StartTime: 5, Duration: 3},
	}, "", t.TempDir())
	require.NoError(t, err)

	filter := argValue(f.ffmpegArgs, "-filter_complex")
	// The smaller clip is padded up to the largest dimensions.
	assert.Contains(t, filter, "scale=1920:1080:force_original_aspect_ratio=decrease")
	assert.Contains(t, filter, "pad=1920:1080:(ow-iw)/2:(oh-ih)/2")
	assert.NotContains(t, filter, "[0:v]trim=duration=5,scale")
	assert.Contains(t, filter, "[v0][v1]overlay[tmp1]")
	assert.Equal(t, "[tmp1]", argValue(f.ffmpegArgs, "-map"))
	assert.Contains(t, filter, "setpts=PTS+5/TB[v1]")
	assert.Equal(t, float64(8), result.TotalDuration)
}

func TestCombine_RepeatedClipSharesInput(t *testing.T) {
	f := &fakeRunner{dimensions: map[string][2]int{
		"/work/a.mp4": {1280, 720},
	}}
	withFakeRunner(t, f)

	_, err := Combine(context.Background(), []Clip{
		{Path: "/work/a.mp4", StartTime: 0, Duration: 2},
		{Path: "/work/a.mp4", StartTime: 2, Duration: 2},
	}, "", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 1, f.probeCalls)

	var inputs int
	for _, a := range f.ffmpegArgs {
		if a == "-i" {
			inputs++
		}
	}
	assert.Equal(t, 1, inputs)
	assert.Contains(t, argValue(f.ffmpegArgs, "-filter_complex"), "[0:v]trim=duration=2,setpts=PTS+2/TB[v1]")
}

func TestCombine_AudioTrackMapping(t *testing.T) {
	f := &fakeRunner{dimensions: map[string][2]int{
		"/work/a.mp4": {1280, 720},
	}}
	withFakeRunner(t, f)

	_, err := Combine(context.Background(), []Clip{
		{Path: "/work/a.mp4", StartTime: 0, Duration: 4},
	}, "/work/track.mp3", t.TempDir())
	require.NoError(t, err)

	joined := strings.Join(f.ffmpegArgs, " ")
	assert.Contains(t, joined, "-i /work/track.mp3")
	assert.Contains(t, joined, "-map 1:a -t 4")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-shortest")
}

func TestCombine_EncoderSettings(t *testing.T) {
	f := &fakeRunner{dimensions: map[string][2]int{
		"/work/a.mp4": {1280, 720},
	}}
	withFakeRunner(t, f)

	_, err := Combine(context.Background(), []Clip{
		{Path: "/work/a.mp4", StartTime: 0, Duration: 1},
	}, "", t.TempDir())
	require.NoError(t, err)

	joined := strings.Join(f.ffmpegArgs, " ")
	assert.Contains(t, joined, "-c:v libx264 -preset ultrafast -crf 23")
}

func TestCombine_EmptyTimeline(t *testing.T) {
	_, err := Combine(context.Background(), nil, "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no video clips")
}

func TestCombine_FfmpegFailure(t *testing.T) {
	f := &fakeRunner{
		dimensions: map[string][2]int{"/work/a.mp4": {1280, 720}},
		ffmpegErr:  errors.New("exit status 1"),
	}
	withFakeRunner(t, f)

	_, err := Combine(context.Background(), []Clip{
		{Path: "/work/a.mp4", StartTime: 0, Duration: 1},
	}, "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg failed")
	assert.Contains(t, err.Error(), "filtergraph error")
}
