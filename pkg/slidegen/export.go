package slidegen

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ExportImages renders the slides of a finished deck to PNG files in outDir.
// It shells out to LibreOffice when available, or to Microsoft PowerPoint via
// AppleScript on macOS. This is a convenience for previewing; generation does
// not depend on it.
func ExportImages(pptxPath, outDir string) error {
	if bin, err := findSoffice(); err == nil {
		return exportViaSoffice(bin, pptxPath, outDir)
	}
	if runtime.GOOS == "darwin" {
		return exportViaPowerPoint(pptxPath, outDir)
	}
	return fmt.Errorf("no slide renderer found: install LibreOffice to export images")
}

func findSoffice() (string, error) {
	for _, name := range []string{"soffice", "libreoffice"} {
		if bin, err := exec.LookPath(name); err == nil {
			return bin, nil
		}
	}
	return "", fmt.Errorf("soffice not found in PATH")
}

func exportViaSoffice(bin, pptxPath, outDir string) error {
	cmd := exec.Command(bin, "--headless", "--convert-to", "png", "--outdir", outDir, pptxPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return NewDocumentError("export images", pptxPath, fmt.Errorf("%v: %s", err, out))
	}
	Debug("soffice export: %s", out)
	return nil
}

func exportViaPowerPoint(pptxPath, outDir string) error {
	absPptx, err := filepath.Abs(pptxPath)
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`tell application "Microsoft PowerPoint"
	open POSIX file %q
	set pres to active presentation
	save pres in POSIX file %q as save as PNG
	close pres saving no
end tell`, absPptx, absDir)
	cmd := exec.Command("osascript", "-e", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return NewDocumentError("export images", pptxPath, fmt.Errorf("%v: %s", err, out))
	}
	return nil
}
