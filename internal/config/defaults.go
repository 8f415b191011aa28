package config

const (
	defaultStagingDir            = "~/.local/share/mixdown/staging"
	defaultLogDir                = "~/.local/share/mixdown/logs"
	defaultHistoryDB             = "~/.local/share/mixdown/history.db"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultAudioCodec            = "aac"
	defaultAudioBitrate          = "192k"
	defaultOutputExtension       = ".mp4"
	defaultBatchSuffix           = "_mixed"
	defaultBatchMinFreeGiB       = 1
	defaultStagingRetentionHours = 24
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

func defaultBatchExtensions() []string {
	return []string{".mp4", ".mkv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			HistoryDB:  defaultHistoryDB,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Output: Output{
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			Extension:    defaultOutputExtension,
			BatchSuffix:  defaultBatchSuffix,
		},
		Batch: Batch{
			Extensions: defaultBatchExtensions(),
			MinFreeGiB: defaultBatchMinFreeGiB,
		},
		Staging: Staging{
			RetentionHours: defaultStagingRetentionHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
