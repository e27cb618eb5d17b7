package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Per-job page fan-out
	PageWorkers int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Reconstruction tuning
	MinTableConfidence float64
	TableOverlapRatio  float64
	PageMarginPts      float64
	KoreanOrdinalLevel int

	// Crawler
	ListURL       string
	DetailURL     string
	CrawlDelay    time.Duration
	CrawlMaxPages int
	DownloadDir   string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("GONGGO_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		PageWorkers: envInt("PAGE_WORKERS", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		MinTableConfidence: envFloat("MIN_TABLE_CONFIDENCE", 0.5),
		TableOverlapRatio:  envFloat("TABLE_OVERLAP_RATIO", 0.7),
		PageMarginPts:      envFloat("PAGE_MARGIN_PTS", 60),
		KoreanOrdinalLevel: envInt("KOREAN_ORDINAL_LEVEL", 2),

		ListURL:       envOr("LIST_URL", "https://apply.lh.or.kr/lhapply/apply/wt/wrtanc/selectWrtancList.do"),
		DetailURL:     envOr("DETAIL_URL", "https://apply.lh.or.kr/lhapply/apply/wt/wrtanc/selectWrtancView.do"),
		CrawlDelay:    envDuration("CRAWL_DELAY", 2*time.Second),
		CrawlMaxPages: envInt("CRAWL_MAX_PAGES", 0),
		DownloadDir:   envOr("DOWNLOAD_DIR", "downloads"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MinTableConfidence < 0 || cfg.MinTableConfidence > 1 {
		cfg.MinTableConfidence = 0.5
	}
	if cfg.TableOverlapRatio <= 0 || cfg.TableOverlapRatio > 1 {
		cfg.TableOverlapRatio = 0.7
	}
	if cfg.PageMarginPts <= 0 {
		cfg.PageMarginPts = 60
	}
	if cfg.KoreanOrdinalLevel <= 0 {
		cfg.KoreanOrdinalLevel = 2
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("GONGGO_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
