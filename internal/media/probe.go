package media

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// ProbeInfo 视频元信息
type ProbeInfo struct {
	Duration int // 秒
	Width    int
	Height   int
	Bitrate  int // kbps
}

// Probe 用 ffprobe 读取视频元信息
func Probe(videoFile string) (*ProbeInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoFile,
	}

	cmd := exec.Command("ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var data struct {
		Streams []struct {
			Width    int    `json:"width"`
			Height   int    `json:"height"`
			Duration string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			BitRate  string `json:"bit_rate"`
		} `json:"format"`
	}

	if err := json.Unmarshal(output, &data); err != nil {
		return nil, err
	}

	probe := &ProbeInfo{}

	if data.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil {
			probe.Duration = int(dur)
		}
	}
	if data.Format.BitRate != "" {
		if bps, err := strconv.Atoi(data.Format.BitRate); err == nil {
			probe.Bitrate = bps / 1000
		}
	}

	for _, s := range data.Streams {
		if s.Width > 0 && s.Height > 0 {
			probe.Width = s.Width
			probe.Height = s.Height
			break
		}
	}

	return probe, nil
}

// ExtractCover 截取第 1 秒的画面作为封面
func ExtractCover(videoFile, coverFile string) error {
	args := []string{
		"-i", videoFile,
		"-ss", "1",
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		coverFile,
	}

	cmd := exec.Command("ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract cover failed: %w\noutput: %s", err, string(output))
	}
	return nil
}
