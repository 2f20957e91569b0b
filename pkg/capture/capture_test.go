package capture

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/driver/mock"
)

func TestSourceToYAML_WhitelistAndGrouping(t *testing.T) {
	source := `<hierarchy rotation="0">
		<node class="android.widget.Button" text="OK" bounds="[0,0][100,50]" displayed="true"/>
		<node class="android.widget.Button" text="Cancel" bounds="[0,60][100,110]"/>
		<other resource-id="com.app:id/title">Welcome</other>
	</hierarchy>`

	out, err := SourceToYAML(source)
	if err != nil {
		t.Fatalf("SourceToYAML failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}

	nodes, ok := decoded["node"].([]interface{})
	if !ok || len(nodes) != 2 {
		t.Fatalf("node children = %v, want 2 grouped entries", decoded["node"])
	}
	first := nodes[0].(map[string]interface{})
	if first["text"] != "OK" || first["bounds"] != "[0,0][100,50]" {
		t.Errorf("first node = %v", first)
	}
	if _, present := first["displayed"]; present {
		t.Error("non-whitelisted attribute survived")
	}

	others := decoded["other"].([]interface{})
	other := others[0].(map[string]interface{})
	content, ok := other["content"].([]interface{})
	if !ok || len(content) != 1 || content[0] != "Welcome" {
		t.Errorf("element text = %v, want [Welcome]", other["content"])
	}
}

func TestSourceToYAML_InvalidXML(t *testing.T) {
	if _, err := SourceToYAML("<html><body>unclosed"); err == nil {
		t.Error("expected parse error for malformed XML")
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		wantW, wantH   int
	}{
		{"small portrait untouched", 400, 800, 400, 800},
		{"portrait clamped to short edge", 1080, 2400, 768, 1706},
		{"landscape clamped to short edge", 2400, 1080, 1706, 768},
		{"square treated as portrait", 500, 500, 500, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := scaledSize(tt.width, tt.height)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("scaledSize(%d, %d) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFormatImage_ResizesToJPEG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shot.jpg")
	if err := FormatImage(encodePNG(t, 1080, 2400), out); err != nil {
		t.Fatalf("FormatImage failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	if img.Bounds().Dx() != 768 || img.Bounds().Dy() != 1706 {
		t.Errorf("output size = %v, want 768x1706", img.Bounds())
	}
}

func TestFormatImage_InvalidData(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shot.jpg")
	if err := FormatImage([]byte("not an image"), out); err == nil {
		t.Error("expected decode error")
	}
}

func TestFileCapturer_Mobile(t *testing.T) {
	dir := t.TempDir()
	session := mock.New(mock.Config{})
	c := NewFileCapturer(session, dir)

	sourcePath, screenshotPath, err := c.Capture("step_0", core.PlatformAndroid)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if sourcePath != filepath.Join(dir, "step_0.yaml") {
		t.Errorf("source path = %q", sourcePath)
	}
	if screenshotPath != filepath.Join(dir, "step_0.jpg") {
		t.Errorf("screenshot path = %q", screenshotPath)
	}

	for _, name := range []string{"step_0.xml", "step_0.yaml", "step_0.png", "step_0.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	condensed, _ := os.ReadFile(sourcePath)
	if !strings.Contains(string(condensed), "bounds:") {
		t.Errorf("condensed source missing attributes:\n%s", condensed)
	}
}

func TestFileCapturer_WebKeepsRawHTML(t *testing.T) {
	dir := t.TempDir()
	html := "<!DOCTYPE html><html><body><button>Go</button></body></html>"
	session := mock.New(mock.Config{Source: html})
	c := NewFileCapturer(session, dir)

	sourcePath, _, err := c.Capture("step_1", core.PlatformWeb)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	got, _ := os.ReadFile(sourcePath)
	if string(got) != html {
		t.Errorf("web yaml = %q, want raw HTML", got)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "step_1.html"))
	if string(raw) != html {
		t.Errorf("html artifact = %q", raw)
	}
	if _, err := os.Stat(filepath.Join(dir, "step_1.xml")); err == nil {
		t.Error("web capture must not write an xml artifact")
	}
}

func TestFileCapturer_SourceFailure(t *testing.T) {
	session := mock.New(mock.Config{SourceErr: os.ErrDeadlineExceeded})
	c := NewFileCapturer(session, t.TempDir())

	if _, _, err := c.Capture("step_0", core.PlatformAndroid); err == nil {
		t.Error("expected capture failure")
	}
}
