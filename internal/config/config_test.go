package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults with secret from env",
			env:  map[string]string{"JWT_SECRET": "s3cret"},
			want: Config{
				Port:            DefaultPort,
				JWTSecret:       "s3cret",
				TokenTTL:        DefaultTokenTTL,
				ShutdownTimeout: DefaultShutdownTimeout,
				AllowedOrigin:   "*",
			},
		},
		{
			name: "env overrides defaults",
			env: map[string]string{
				"JWT_SECRET":        "s3cret",
				"PORT":              "8081",
				"TOKEN_TTL":         "30m",
				"VERBOSE":           "true",
				"SEED_PARTICIPANTS": "Ana,Clara,Derick",
				"DEV_TOKEN":         "1",
				"LOG_FILE":          "/tmp/santa.log",
			},
			want: Config{
				Port:            8081,
				JWTSecret:       "s3cret",
				TokenTTL:        30 * time.Minute,
				LogFile:         "/tmp/santa.log",
				Verbose:         true,
				Seed:            []string{"Ana", "Clara", "Derick"},
				DevToken:        true,
				ShutdownTimeout: DefaultShutdownTimeout,
				AllowedOrigin:   "*",
			},
		},
		{
			name: "flags win over env",
			args: []string{"-p", "9000", "--jwt-secret", "flag-secret", "--seed", "Eva,Fabio", "--mint-token"},
			env:  map[string]string{"JWT_SECRET": "env-secret", "PORT": "8081", "SEED_PARTICIPANTS": "Ana"},
			want: Config{
				Port:            9000,
				JWTSecret:       "flag-secret",
				TokenTTL:        DefaultTokenTTL,
				Seed:            []string{"Eva", "Fabio"},
				MintToken:       true,
				ShutdownTimeout: DefaultShutdownTimeout,
				AllowedOrigin:   "*",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.args, envMap(tt.env))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := parse(nil, envMap(map[string]string{"PORT": "abc", "TOKEN_TTL": "soon"}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	_, err = parse(nil, envMap(nil))
	assert.ErrorContains(t, err, "JWT_SECRET required")

	_, err = parse([]string{"--unknown"}, envMap(nil))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 0, TokenTTL: 0, ShutdownTimeout: -time.Second}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SECRETSANTA_TEST_VAR=hello\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SECRETSANTA_TEST_VAR") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "hello", os.Getenv("SECRETSANTA_TEST_VAR"))
}
