package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	rcontext "github.com/cratekit/cratekit/pkg/context"
	"github.com/cratekit/cratekit/pkg/logger"
)

func TestCreateLogger(t *testing.T) {
	log := logger.CreateLogger("", "info")
	if log == nil {
		t.Fatal("expected logger to be created")
	}
}

func TestCreateLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{"info", []string{"INFO", "WARN", "ERROR"}, []string{"DEBUG"}},
		{"warn", []string{"WARN", "ERROR"}, []string{"DEBUG", "INFO"}},
		{"error", []string{"ERROR"}, []string{"DEBUG", "INFO", "WARN"}},
		{"bogus", []string{"INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.CreateLoggerWithOutput("", tt.level, &buf)

			log.Debug("message")
			log.Info("message")
			log.Warn("message")
			log.Error("message")

			output := buf.String()
			for _, level := range tt.want {
				if !strings.Contains(output, level+":") {
					t.Errorf("expected %s entry in output:\n%s", level, output)
				}
			}
			for _, level := range tt.skip {
				if strings.Contains(output, level+":") {
					t.Errorf("unexpected %s entry in output:\n%s", level, output)
				}
			}
		})
	}
}

func TestLogger_WithTarget(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.WithTarget("app").Info("selected package")

	output := buf.String()
	if !strings.Contains(output, "[app] selected package") {
		t.Errorf("expected package prefix in log output, got %q", output)
	}
	if strings.Contains(output, "target=") {
		t.Error("target should not be repeated as a field")
	}
}

func TestLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Success("resolved")

	if !strings.Contains(buf.String(), "resolved") {
		t.Error("expected success message in log output")
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Info("manifest found",
		logger.WithField("path", "/p/Cargo.toml"),
		logger.WithField("depth", 2),
	)

	output := buf.String()
	if !strings.Contains(output, "{depth=2, path=/p/Cargo.toml}") {
		t.Errorf("expected sorted fields, got %q", output)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := logger.CreateLoggerWithOutput("", "debug", &buf)

	ctx := rcontext.WithOperation(rcontext.WithRunID(context.Background(), "run_test"), "resolve")
	log := logger.WithContext(ctx, base).WithTarget("app")
	log.Debug("config found")

	output := buf.String()
	for _, want := range []string{"run_id=run_test", "operation=resolve", "[app]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got %q", want, output)
		}
	}
}

func TestNopLogger(t *testing.T) {
	log := logger.NewNopLogger()
	log.Info("ignored", logger.WithField("k", "v"))
	if log.WithTarget("x") == nil {
		t.Error("expected nop logger to stay usable after WithTarget")
	}
}
