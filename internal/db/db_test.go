package db

import (
	"testing"

	"gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected logger.LogLevel
	}{
		{"DEBUG", logger.Info},
		{"info", logger.Warn},
		{"warning", logger.Error},
		{"ERROR", logger.Silent},
		{"", logger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := gormLogLevel(tt.level); got != tt.expected {
				t.Errorf("gormLogLevel(%q) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{0, DefaultRecentLimit},
		{-1, DefaultRecentLimit},
		{10, 10},
		{500, DefaultRecentLimit},
	}

	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.expected {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}
