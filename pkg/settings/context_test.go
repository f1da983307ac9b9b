package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantOk bool
	}{
		{
			name:   "context_with_settings",
			ctx:    IntoContext(context.Background(), &Run{NoColor: true}),
			wantOk: true,
		},
		{
			name: "context_without_settings",
			ctx:  context.Background(),
		},
		{
			name: "context_with_nil_settings",
			ctx:  IntoContext(context.Background(), nil),
		},
		{
			name: "context_with_wrong_type",
			ctx:  context.WithValue(context.Background(), settingsContextKey, "wrong type"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.ctx)
			assert.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				assert.Nil(t, got)
			}
		})
	}
}

func TestIntoContextRoundtrip(t *testing.T) {
	run := &Run{NoColor: true, LogFile: "out.log", MinLogLevel: -1}
	got, ok := FromContext(IntoContext(context.Background(), run))
	require.True(t, ok)
	assert.Same(t, run, got)
}
