package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestUsableBeforeInit(t *testing.T) {
	// Config and atlas loading log before Init runs; the package-level
	// logger must accept those calls silently.
	if Log == nil || Sugar == nil {
		t.Fatal("expected nop logger before Init")
	}
	Debug("early debug")
	Info("early info", zap.String("path", "assets/font_atlas.png"))
	Sugar.Infof("early sugared %d", 1)
}

func TestInitWritesRenderLogToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "rain.log")

	if err := Init("debug", logFile); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("surface recreated", zap.Int("width", 1280), zap.Int("height", 720))
	Warn("frame skipped", zap.String("reason", "acquire failed"))
	Debug("frame stats", zap.Int("fps", 75), zap.Int("quads", 312))
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(content)

	for _, want := range []string{
		"surface recreated", "width", "1280",
		"frame skipped", "acquire failed",
		"frame stats", "quads",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output", want)
		}
	}
}

func TestFileLevelFiltering(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			cfg := DefaultFileConfig(logFile)
			cfg.Compress = false

			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("frame stats")
			Info("window created")
			Warn("surface lost, recreating")
			Error("runtime error")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in log output at level %s", exp, tt.level)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in log output at level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestInitWithoutSinksFallsBackToNop(t *testing.T) {
	if err := InitWithFileConfig("info", FileConfig{}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	if Log == nil {
		t.Fatal("expected nop logger, got nil")
	}
	Info("goes nowhere")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("rain.log")

	if cfg.Path != "rain.log" {
		t.Errorf("expected path rain.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}

func TestLogRotationKeepsBoundedBackups(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "rain.log")

	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1, // smallest lumberjack allows
		MaxBackups: 2,
		MaxAgeDays: 1,
		Compress:   false,
	}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	// A long frame-stats line repeated past 1MB forces at least one
	// rotation.
	filler := strings.Repeat("q", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Debugf("frame %d %s", i, filler)
	}
	Sync()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("current log file does not exist")
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	rotated := 0
	for _, e := range entries {
		if e.Name() != "rain.log" && strings.HasPrefix(e.Name(), "rain") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Error("expected at least one rotated backup")
	}
	// Backup pruning runs on a background goroutine, so only the lower
	// bound is stable here.
}
