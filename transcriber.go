package videocourse

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// TranscriptProvider returns the metadata and timed transcript of a video
type TranscriptProvider interface {
	Fetch(ctx context.Context, videoRef string) (*VideoInfo, error)
}

// CachedTranscriber serves transcripts from the transcript tier and only
// calls the wrapped provider on a miss
type CachedTranscriber struct {
	provider TranscriptProvider
	cache    *Tier[VideoInfo]
}

// NewCachedTranscriber wraps provider with the transcript cache tier
func NewCachedTranscriber(provider TranscriptProvider, cache *Tier[VideoInfo]) *CachedTranscriber {
	return &CachedTranscriber{provider: provider, cache: cache}
}

// Fetch returns the cached transcript for the video or transcribes it
func (ct *CachedTranscriber) Fetch(ctx context.Context, videoRef string) (*VideoInfo, error) {
	videoID, ok := ExtractVideoID(videoRef)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoReference, videoRef)
	}

	cached, ok, err := ct.cache.Get(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript cache: %w", err)
	}
	if ok && len(cached.Transcript) > 0 {
		logger.Debug("retrieved transcription from cache", "video_id", videoID)
		return &cached, nil
	}

	info, err := ct.provider.Fetch(ctx, videoRef)
	if err != nil {
		return nil, err
	}

	if err := ct.cache.Put(ctx, videoID, *info); err != nil {
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}
	logger.Info("saved new transcription", "video_id", videoID, "segments", len(info.Transcript))
	return info, nil
}

// commandRunner runs an external program and returns its standard output
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// The speech-to-text endpoint rejects uploads over 25 MB. Larger audio is
// split with ffmpeg into chunks of audioChunkSeconds.
const (
	maxTranscriptionUpload = 24 << 20
	audioChunkSeconds      = 1200
)

// YouTubeTranscriber downloads a video's audio with yt-dlp and transcribes
// it with the OpenAI speech-to-text API
type YouTubeTranscriber struct {
	client    *openai.Client
	model     string
	ytdlp     string
	ffmpeg    string
	tempDir   string
	maxUpload int64
	run       commandRunner
}

// NewYouTubeTranscriber creates a transcriber from the transcription settings of cfg
func NewYouTubeTranscriber(cfg *Config) *YouTubeTranscriber {
	config := openai.DefaultConfig(cfg.TranscriptionAPIKey)
	if cfg.TranscriptionBaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.TranscriptionBaseURL, "/")
	}

	model := cfg.TranscriptionModel
	if model == "" {
		model = openai.Whisper1
	}
	ytdlp := cfg.YTDLPPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	return &YouTubeTranscriber{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		ytdlp:     ytdlp,
		ffmpeg:    ffmpeg,
		tempDir:   cfg.TempDir,
		maxUpload: maxTranscriptionUpload,
		run:       runCommand,
	}
}

type ytdlpMetadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Fetch downloads and transcribes the referenced video
func (yt *YouTubeTranscriber) Fetch(ctx context.Context, videoRef string) (*VideoInfo, error) {
	videoID, ok := ExtractVideoID(videoRef)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoReference, videoRef)
	}
	url := WatchURL(videoID)

	out, err := yt.run(ctx, yt.ytdlp, "--dump-single-json", "--skip-download", "--no-warnings", url)
	if err != nil {
		return nil, fmt.Errorf("failed to read video metadata: %w", err)
	}
	var meta ytdlpMetadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse video metadata: %w", err)
	}
	if meta.ID != "" {
		videoID = meta.ID
	}

	dir, err := os.MkdirTemp(yt.tempDir, "videocourse-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	logger.Info("downloading audio", "video_id", videoID, "title", meta.Title)
	_, err = yt.run(ctx, yt.ytdlp,
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3", "--audio-quality", "64K",
		"--no-warnings", "--no-playlist",
		"-o", filepath.Join(dir, "audio.%(ext)s"),
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	audioPath := filepath.Join(dir, "audio.mp3")

	chunks, err := yt.splitAudio(ctx, dir, audioPath)
	if err != nil {
		return nil, err
	}

	logger.Info("transcribing audio", "video_id", videoID, "model", yt.model, "chunks", len(chunks))
	transcript := []TranscriptSegment{}
	var spoken float64
	for i, chunk := range chunks {
		resp, err := yt.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    yt.model,
			FilePath: chunk,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to transcribe audio chunk %d: %w", i, err)
		}
		offset := float64(i * audioChunkSeconds)
		for _, seg := range segmentsFromTranscription(resp) {
			seg.Start += offset
			seg.End += offset
			transcript = append(transcript, seg)
		}
		spoken += resp.Duration
	}

	duration := int(meta.Duration)
	if duration == 0 {
		duration = int(spoken)
	}

	return &VideoInfo{
		Title:      meta.Title,
		EmbedURL:   EmbedURL(videoID),
		Duration:   duration,
		Transcript: transcript,
	}, nil
}

// splitAudio returns audioPath unchanged when it fits in one upload and
// otherwise cuts it into fixed-length chunks inside dir, in playback order
func (yt *YouTubeTranscriber) splitAudio(ctx context.Context, dir, audioPath string) ([]string, error) {
	stat, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio: %w", err)
	}
	if stat.Size() <= yt.maxUpload {
		return []string{audioPath}, nil
	}

	logger.Info("splitting audio", "bytes", stat.Size(), "chunk_seconds", audioChunkSeconds)
	_, err = yt.run(ctx, yt.ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-i", audioPath,
		"-f", "segment", "-segment_time", fmt.Sprint(audioChunkSeconds),
		"-c", "copy",
		filepath.Join(dir, "chunk-%03d.mp3"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}

	chunks, err := filepath.Glob(filepath.Join(dir, "chunk-*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("failed to list audio chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no audio chunks")
	}
	sort.Strings(chunks)
	return chunks, nil
}

// segmentsFromTranscription converts whisper segments into transcript
// segments, keeping their order
func segmentsFromTranscription(resp openai.AudioResponse) []TranscriptSegment {
	segments := make([]TranscriptSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, TranscriptSegment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	return segments
}
