package config

const (
	defaultDataFile       = "data/2026/data.json"
	defaultDataRoot       = "data/2026"
	defaultLogicalRoot    = "data/2026"
	defaultAudioDir       = "mp3"
	defaultImagesDir      = "images"
	defaultScratchDir     = "tmp"
	defaultProfilesConfig = "config/config.json"
	defaultStateDir       = "~/.local/share/tinals"
	defaultManifestURL    = "https://thisisnotalovesong.fr/data-2026-02-04.json"
	defaultUserAgent      = "Mozilla/5.0"
	defaultRemoteTimeout  = 60
	defaultYtDlpBinary    = "yt-dlp"
	defaultWgetBinary     = "wget"
	defaultImageQuality   = 80
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLogRetention   = 30
	defaultNtfyTimeout    = 10

	// CollisionWarn logs a filename collision and lets the later item overwrite.
	CollisionWarn = "warn"
	// CollisionDisambiguate appends the item id to the later item's filename.
	CollisionDisambiguate = "disambiguate"
)

// Default returns a Config populated with repository defaults. Tool binaries
// stay empty so normalize can apply YT_DLP_BIN and WGET_BIN first.
func Default() Config {
	return Config{
		Paths: Paths{
			DataFile:       defaultDataFile,
			DataRoot:       defaultDataRoot,
			LogicalRoot:    defaultLogicalRoot,
			AudioDir:       defaultAudioDir,
			ImagesDir:      defaultImagesDir,
			ScratchDir:     defaultScratchDir,
			ProfilesConfig: defaultProfilesConfig,
			StateDir:       defaultStateDir,
		},
		Remote: Remote{
			ManifestURL:    defaultManifestURL,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultRemoteTimeout,
		},
		Images: Images{
			DefaultQuality: defaultImageQuality,
			Collisions:     CollisionWarn,
		},
		History: History{
			Enabled: true,
		},
		Schedule: Schedule{
			Operations: []string{"audio", "images"},
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Success:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
