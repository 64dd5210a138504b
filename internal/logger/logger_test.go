package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
	}{
		{"local", "local", "", false},
		{"prod with level", "prod", "warn", false},
		{"default env", "", "debug", false},
		{"unknown env", "staging", "", true},
		{"bad level", "local", "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	l, err := NewLogger("local", "info", path)
	require.NoError(t, err)

	l.Info("hello from test")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestFromContext(t *testing.T) {
	base := zap.NewExample()
	assert.Same(t, base, FromContext(context.Background(), base))

	scoped := base.With(zap.String("request_id", "abc"))
	ctx := ContextWithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, base))

	assert.NotNil(t, FromContext(context.Background(), nil))
}
