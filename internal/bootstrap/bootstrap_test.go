package bootstrap

import (
	"context"
	"testing"

	"github.com/kirillkom/quote-assistant/internal/config"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

func TestNewLanguageModelOffline(t *testing.T) {
	cfg := config.Config{LLMProvider: " Offline ", ReasonerEnabled: true}
	generator, reasoner, err := NewLanguageModel(context.Background(), cfg, jobs.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewLanguageModel() error = %v", err)
	}
	if generator == nil || reasoner == nil {
		t.Fatalf("expected generator and reasoner, got %v %v", generator, reasoner)
	}

	cfg.ReasonerEnabled = false
	_, reasoner, err = NewLanguageModel(context.Background(), cfg, jobs.NewRegistry(), nil)
	if err != nil || reasoner != nil {
		t.Fatalf("disabled reasoner must be nil, got %v err=%v", reasoner, err)
	}
}

func TestNewLanguageModelRejectsUnknownProvider(t *testing.T) {
	_, _, err := NewLanguageModel(context.Background(), config.Config{LLMProvider: "gpt"}, jobs.NewRegistry(), nil)
	if err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestNewArchiveSelectsBackend(t *testing.T) {
	archive, err := newArchive(config.Config{ArchiveBackend: "localfs", StoragePath: t.TempDir()})
	if err != nil || archive == nil {
		t.Fatalf("expected local archive, got %v err=%v", archive, err)
	}
	if _, err := newArchive(config.Config{ArchiveBackend: "tape"}); err == nil {
		t.Fatal("expected unknown backend error")
	}
}
