package mirror

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isaaclog/isaaclog/internal/classify"
)

func TestValidateURISyntax(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid cloudwatch URI",
			uri:     "cloudwatch:///isaac/mods?profile=prod&region=us-east-1",
			wantErr: false,
		},
		{
			name:    "valid file URI",
			uri:     "file:///var/log/isaac-copy.txt",
			wantErr: false,
		},
		{
			name:    "@ instead of ? for query params",
			uri:     "cloudwatch:///isaac/mods@profile=prod",
			wantErr: true,
			errMsg:  "use '?' for query parameters, not '@'",
		},
		{
			name:    "missing scheme with triple slash",
			uri:     "///isaac/mods?profile=prod",
			wantErr: true,
			errMsg:  "missing scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURISyntax(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Errorf("validateURISyntax(%q) = nil, want error containing %q", tt.uri, tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("validateURISyntax(%q) error = %v, want error containing %q", tt.uri, err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("validateURISyntax(%q) = %v, want nil", tt.uri, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("could not get home dir: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get cwd: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"tilde only", "~", home},
		{"tilde with subpath", "~/isaac/copy.txt", filepath.Join(home, "isaac/copy.txt")},
		{"relative path", "./copy.txt", filepath.Join(cwd, "copy.txt")},
		{"bare relative path", "copy.txt", filepath.Join(cwd, "copy.txt")},
		{"absolute path unchanged", "/var/log/copy.txt", "/var/log/copy.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandPath(tt.path); got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpen_BarePathAndFileURI(t *testing.T) {
	dir := t.TempDir()

	for _, uri := range []string{
		filepath.Join(dir, "bare", "copy.txt"),
		"file://" + filepath.ToSlash(filepath.Join(dir, "uri", "copy.txt")),
	} {
		t.Run(uri, func(t *testing.T) {
			sink, err := Open(uri, OpenOptions{})
			if err != nil {
				t.Fatalf("Open(%q) error: %v", uri, err)
			}
			fs, ok := sink.(*FileSink)
			if !ok {
				t.Fatalf("Open(%q) = %T, want *FileSink", uri, sink)
			}

			ctx := context.Background()
			if err := sink.Write(ctx, classify.Line{Text: "[INFO] - Lua Error: boom", Category: classify.Error}); err != nil {
				t.Fatal(err)
			}
			if err := sink.Close(); err != nil {
				t.Fatal(err)
			}

			data, err := os.ReadFile(fs.Path())
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != "[INFO] - Lua Error: boom\n" {
				t.Errorf("file contents = %q", data)
			}
		})
	}
}

func TestOpen_Alias(t *testing.T) {
	dir := t.TempDir()
	opts := OpenOptions{Aliases: map[string]string{
		"archive": filepath.Join(dir, "archive.txt"),
		"loop":    "@archive",
	}}

	sink, err := Open("@archive", opts)
	if err != nil {
		t.Fatalf("Open(@archive) error: %v", err)
	}
	_ = sink.Close()

	if _, err := Open("@archiv", opts); err == nil || !strings.Contains(err.Error(), "@archive") {
		t.Errorf("expected suggestion for misspelled alias, got %v", err)
	}
	if _, err := Open("@loop", opts); err == nil {
		t.Error("expected an error for an alias pointing at an alias")
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open("s3://bucket/key", OpenOptions{})
	if err == nil {
		t.Fatal("expected error for unregistered scheme")
	}
	if !strings.Contains(err.Error(), "cloudwatch, file") {
		t.Errorf("error should list registered schemes: %v", err)
	}
}

func TestOpen_CloudWatchQueryOverridesDefaults(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	sink, err := Open("cloudwatch:///isaac/mods?region=eu-west-1&stream=laptop&metrics=Isaac", OpenOptions{Region: "us-east-1"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	cw, ok := sink.(*CloudWatchSink)
	if !ok {
		t.Fatalf("Open() returned %T, want *CloudWatchSink", sink)
	}
	if cw.Region() != "eu-west-1" {
		t.Errorf("Region() = %q, want the URI's eu-west-1", cw.Region())
	}
	if cw.Profile() != "" {
		t.Errorf("Profile() = %q, want empty", cw.Profile())
	}
	if cw.Group() != "isaac/mods" || cw.Stream() != "laptop" {
		t.Errorf("group/stream = %q/%q", cw.Group(), cw.Stream())
	}
	if cw.metrics == nil || cw.metrics.namespace != "Isaac" {
		t.Errorf("metrics namespace not set from ?metrics=")
	}
}
