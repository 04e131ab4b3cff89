package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "server flags kept, client flags dropped",
			args:         []string{"-a", ":8080", "-u", "42", "-d", "state.db"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", ":8080", "-d", "state.db"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=mediagate.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=mediagate.json"},
		},
		{
			name:         "unknown equals form dropped",
			args:         []string{"-w=30", "-t", "600"},
			allowedFlags: []string{"-t"},
			want:         []string{"-t", "600"},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-k"},
			allowedFlags: []string{"-k"},
			want:         []string{"-k"},
		},
		{
			name:         "dash token is not a value",
			args:         []string{"-k", "-a", ":8080"},
			allowedFlags: []string{"-k"},
			want:         []string{"-k"},
		},
		{
			name:         "positional arguments ignored",
			args:         []string{"serve", "extra"},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, "/etc/mediagate.json")
		os.Args = []string{"testbin"}
		assert.Equal(t, "/etc/mediagate.json", JsonConfigFlags())

		os.Args = []string{"testbin", "-c", "/path/flag.json"}
		assert.Equal(t, "/path/flag.json", JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}
