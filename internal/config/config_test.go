package config

import "testing"

func TestLoadAppliesBatchAndRetrievalDefaults(t *testing.T) {
	t.Setenv("NAVER_BATCH_LIMIT", "")
	t.Setenv("PADDLE_BATCH_LIMIT", "")
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("NATS_SUBJECT", "")

	cfg := Load()
	if cfg.NaverBatchLimit != 5 {
		t.Fatalf("expected default naver limit 5, got %d", cfg.NaverBatchLimit)
	}
	if cfg.PaddleBatchLimit != 50 {
		t.Fatalf("expected default paddle limit 50, got %d", cfg.PaddleBatchLimit)
	}
	if cfg.RetrievalTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.RetrievalTopK)
	}
	if cfg.NATSSubject != "batches.completed" {
		t.Fatalf("expected default nats subject, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("BATCH_RETENTION_HOURS", "48")
	t.Setenv("CHAT_MODEL", "gpt-4o")

	cfg := Load()
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BatchRetentionHrs != 48 {
		t.Fatalf("expected retention 48h, got %d", cfg.BatchRetentionHrs)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Fatalf("expected chat model override, got %q", cfg.ChatModel)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.ChunkSize != 900 {
		t.Fatalf("expected fallback chunk size 900, got %d", cfg.ChunkSize)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected fallback rate limit 20, got %v", cfg.APIRateLimitRPS)
	}
}
