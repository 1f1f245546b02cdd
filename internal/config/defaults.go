package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 60
	}
	if cfg.Server.MaxImageBytes == 0 {
		cfg.Server.MaxImageBytes = 8 << 20
	}
	if cfg.Server.MaxAudioBytes == 0 {
		cfg.Server.MaxAudioBytes = 25 << 20
	}
	if cfg.Server.MaxImagePixels == 0 {
		cfg.Server.MaxImagePixels = 40_000_000
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/votesathi/data/votesathi.db"
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "votesathi:"
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 86400
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 10000
	}

	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "claude-sonnet-4-5"
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1024
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.2
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 30
	}

	if cfg.Vision.Model == "" {
		cfg.Vision.Model = cfg.Generation.Model
	}
	if cfg.Vision.ExtractMaxTokens == 0 {
		cfg.Vision.ExtractMaxTokens = 1500
	}
	if cfg.Vision.ExplainMaxTokens == 0 {
		cfg.Vision.ExplainMaxTokens = 300
	}
	if cfg.Vision.ExtractTimeoutSeconds == 0 {
		cfg.Vision.ExtractTimeoutSeconds = 45
	}
	if cfg.Vision.ExplainTimeoutSeconds == 0 {
		cfg.Vision.ExplainTimeoutSeconds = 15
	}

	if cfg.Speech.BaseURL == "" {
		cfg.Speech.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Speech.Model == "" {
		cfg.Speech.Model = "whisper-1"
	}
	if cfg.Speech.TimeoutSeconds == 0 {
		cfg.Speech.TimeoutSeconds = 60
	}

	if cfg.Booths.DefaultLimit == 0 {
		cfg.Booths.DefaultLimit = 5
	}
	cfg.Booths.Ranking.ApplyDefaults()

	if cfg.Knowledge.Extensions == nil {
		cfg.Knowledge.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx"}
	}
	if cfg.Knowledge.ChunkSize == 0 {
		cfg.Knowledge.ChunkSize = 200
	}
	if cfg.Knowledge.ChunkOverlap == 0 {
		cfg.Knowledge.ChunkOverlap = 30
	}
	if cfg.Knowledge.TopK == 0 {
		cfg.Knowledge.TopK = 4
	}

	if cfg.Synthesis.EscalationThreshold == 0 {
		cfg.Synthesis.EscalationThreshold = 0.55
	}
	if cfg.Synthesis.CacheMinConfidence == 0 {
		cfg.Synthesis.CacheMinConfidence = 0.6
	}
	if cfg.Synthesis.SupplementMinConfidence == 0 {
		cfg.Synthesis.SupplementMinConfidence = 0.6
	}
	if cfg.Synthesis.FallbackConfidence == 0 {
		cfg.Synthesis.FallbackConfidence = 0.3
	}

	if cfg.Assistant.MemoryTurns == 0 {
		cfg.Assistant.MemoryTurns = 6
	}
	if cfg.Assistant.BoothConfidence == 0 {
		cfg.Assistant.BoothConfidence = 0.9
	}
	if cfg.Assistant.AuditEnabled == nil {
		enabled := true
		cfg.Assistant.AuditEnabled = &enabled
	}
}
