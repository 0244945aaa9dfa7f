package standalone

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user-none/eblitvideo/standalone/storage"
	"github.com/user-none/eblitvideo/video"
	"golang.design/x/clipboard"
)

// screenshotMessageMsecs is how long the saved notice stays on screen.
const screenshotMessageMsecs = 2000

// ScreenshotManager names, writes and optionally copies screenshots
type ScreenshotManager struct {
	copyToClipboard bool

	dir func() (string, error)
	now func() time.Time

	clipboardOnce sync.Once
	clipboardErr  error
}

// NewScreenshotManager creates a manager writing to the screenshot
// directory.
func NewScreenshotManager(copyToClipboard bool) *ScreenshotManager {
	return &ScreenshotManager{
		copyToClipboard: copyToClipboard,
		dir:             storage.GetScreenshotDir,
		now:             time.Now,
	}
}

// nextPath returns an unused file name based on the Unix timestamp.
func (m *ScreenshotManager) nextPath() (string, error) {
	dir, err := m.dir()
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%d", m.now().Unix())
	path := filepath.Join(dir, base+".png")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.png", base, i))
	}
}

// Take writes the current frame, or the frozen one while paused, and
// returns the file written. Must run on the emulation goroutine.
func (m *ScreenshotManager) Take(p *video.Presenter) (string, error) {
	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := p.Screenshot(path); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}

	if m.copyToClipboard {
		if err := m.copyFile(path); err != nil {
			log.Printf("Warning: screenshot not copied to clipboard: %v", err)
		}
	}

	p.SetLogMessage("Screenshot saved", screenshotMessageMsecs)
	return path, nil
}

// copyFile puts the PNG at path on the system clipboard.
func (m *ScreenshotManager) copyFile(path string) error {
	m.clipboardOnce.Do(func() {
		m.clipboardErr = clipboard.Init()
	})
	if m.clipboardErr != nil {
		return m.clipboardErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
