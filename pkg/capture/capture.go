// Package capture persists per-step state artifacts: page source dumps
// and screenshots, in both raw and model-friendly forms.
package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/devicelab-dev/agent-runner/pkg/core"
)

// FileCapturer snapshots session state into a run folder. For each step
// name it writes the raw source (.html or .xml), a condensed YAML view
// (.yaml), the raw screenshot (.png), and a resized JPEG (.jpg). The
// returned paths are the model-facing pair: the YAML source and the JPEG.
type FileCapturer struct {
	session core.Session
	dir     string
}

// NewFileCapturer creates a capturer writing into dir. The directory must
// already exist.
func NewFileCapturer(session core.Session, dir string) *FileCapturer {
	return &FileCapturer{session: session, dir: dir}
}

// Capture snapshots the current source and screenshot under the given
// step name.
func (c *FileCapturer) Capture(name string, platform core.Platform) (string, string, error) {
	sourcePath, err := c.captureSource(name, platform)
	if err != nil {
		return "", "", err
	}
	screenshotPath, err := c.captureScreenshot(name)
	if err != nil {
		return "", "", err
	}
	return sourcePath, screenshotPath, nil
}

func (c *FileCapturer) captureSource(name string, platform core.Platform) (string, error) {
	source, err := c.session.Source()
	if err != nil {
		return "", core.ErrCaptureFailed.WithCause(err)
	}

	yamlPath := filepath.Join(c.dir, name+".yaml")

	if platform == core.PlatformWeb {
		// HTML is already readable for the model; the YAML file is just
		// the same text under the expected name.
		if err := writeFile(filepath.Join(c.dir, name+".html"), []byte(source)); err != nil {
			return "", err
		}
		if err := writeFile(yamlPath, []byte(source)); err != nil {
			return "", err
		}
		return yamlPath, nil
	}

	if err := writeFile(filepath.Join(c.dir, name+".xml"), []byte(source)); err != nil {
		return "", err
	}
	condensed, err := SourceToYAML(source)
	if err != nil {
		// Not valid XML; keep the raw text so the model still sees something
		condensed = []byte(source)
	}
	if err := writeFile(yamlPath, condensed); err != nil {
		return "", err
	}
	return yamlPath, nil
}

func (c *FileCapturer) captureScreenshot(name string) (string, error) {
	raw, err := c.session.Screenshot()
	if err != nil {
		return "", core.ErrCaptureFailed.WithCause(err)
	}

	pngPath := filepath.Join(c.dir, name+".png")
	if err := writeFile(pngPath, raw); err != nil {
		return "", err
	}

	jpgPath := filepath.Join(c.dir, name+".jpg")
	if err := FormatImage(raw, jpgPath); err != nil {
		return "", core.ErrCaptureFailed.WithCause(err)
	}
	return jpgPath, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.ErrCaptureFailed.WithCause(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}
