package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-c", "-config", "-a"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "separate value form",
			args: []string{"-c", "conf.json", "-z", "ignored"},
			want: []string{"-c", "conf.json"},
		},
		{
			name: "equals form",
			args: []string{"-config=alt.json", "-z", "ignored"},
			want: []string{"-config=alt.json"},
		},
		{
			name: "mixed forms keep original order",
			args: []string{"-config=first.json", "-c", "second.json", "-x", "1"},
			want: []string{"-config=first.json", "-c", "second.json"},
		},
		{
			name: "nothing allowed",
			args: []string{"-x", "1", "-y=2", "positional"},
			want: []string{},
		},
		{
			name: "trailing flag without value",
			args: []string{"-c"},
			want: []string{"-c"},
		},
		{
			name: "dash-starting token is not a value",
			args: []string{"-c", "-config=alt.json"},
			want: []string{"-c", "-config=alt.json"},
		},
		{
			name: "equals value may itself start with a dash",
			args: []string{"-config=--weird.json"},
			want: []string{"-config=--weird.json"},
		},
		{
			name: "several allowed flags",
			args: []string{"-a", "127.0.0.1:8080", "-c", "conf.json", "-other", "x"},
			want: []string{"-a", "127.0.0.1:8080", "-c", "conf.json"},
		},
		{
			name: "repetition preserved",
			args: []string{"-c", "one.json", "-c", "two.json"},
			want: []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name: "empty input",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, allowed))
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

	t.Run("unrelated flags ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}
