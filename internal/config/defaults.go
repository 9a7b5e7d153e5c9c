package config

const (
	defaultInputDir         = "~/Pictures"
	defaultOutputDir        = "data/results"
	defaultLogDir           = "~/.local/share/chronoreel/logs"
	defaultJournalPath      = "~/.local/share/chronoreel/journal.db"
	defaultWidth            = 1920
	defaultHeight           = 1080
	defaultPhotoDuration    = 2.0
	defaultTimezone         = "Local"
	defaultDateFormat       = "2006-01-02 15:04:05"
	defaultFontSize         = 48
	defaultCaptionAnchor    = "bottom-right"
	defaultCaptionMargin    = 10
	defaultFillColor        = "#FFFFFF"
	defaultOutlineColor     = "#000000"
	defaultOutlineWidth     = 1
	defaultBatchSize        = 10
	defaultMaxClipsPerPart  = 3000
	defaultFPS              = 1
	defaultBitrate          = "12M"
	defaultCodec            = "libx264"
	defaultPreset           = "medium"
	defaultPixelFormat      = "yuv420p"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:    defaultInputDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			JournalPath: defaultJournalPath,
		},
		Render: Render{
			Width:         defaultWidth,
			Height:        defaultHeight,
			PhotoDuration: defaultPhotoDuration,
			Timezone:      defaultTimezone,
			DateFormat:    defaultDateFormat,
		},
		Caption: Caption{
			Enabled:      true,
			FontSize:     defaultFontSize,
			Anchor:       defaultCaptionAnchor,
			Margin:       defaultCaptionMargin,
			FillColor:    defaultFillColor,
			OutlineColor: defaultOutlineColor,
			OutlineWidth: defaultOutlineWidth,
		},
		Encoding: Encoding{
			BatchSize:       defaultBatchSize,
			MaxClipsPerPart: defaultMaxClipsPerPart,
			FPS:             defaultFPS,
			Bitrate:         defaultBitrate,
			Codec:           defaultCodec,
			Preset:          defaultPreset,
			PixelFormat:     defaultPixelFormat,
			FFmpegBinary:    defaultFFmpegBinary,
			FFprobeBinary:   defaultFFprobeBinary,
		},
		Validation: Validation{
			ProbeParts: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
