package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"reelpipe/internal/config"
	"reelpipe/internal/deps"
	"reelpipe/internal/fileutil"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable verifies that path exists and is writable, or that its
// nearest existing ancestor is, so the directory can be created on demand.
func CheckCreatable(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckStockFolder verifies the stock folder holds at least one clip.
func CheckStockFolder(path string, exts []string) Result {
	const name = "Stock videos"
	if res := CheckDirectoryAccess(name, path); !res.Passed {
		return res
	}
	clips, err := fileutil.ListFiles(path, exts...)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(clips) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no video clips)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d clips)", path, len(clips))}
}

// CheckSystemDeps evaluates the external binaries the planned stages need.
// Both doctor and run use this to avoid duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	background := !cfg.Stages.Background.Substitute()
	reels := !cfg.Stages.Reels.Substitute()
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required to build backgrounds and render reels",
			Optional:    !background && !reels,
		},
		{
			Name:        "FFprobe",
			Command:     deps.ResolveSibling(cfg.Tools.FFmpeg, cfg.Tools.FFprobe),
			Description: "Required to measure narration and background length",
			Optional:    !reels,
		},
		{
			Name:        "Kokoro",
			Command:     cfg.Tools.Kokoro,
			Description: "Required for narration",
			Optional:    !reels,
		},
	}
	return deps.CheckBinaries(requirements)
}
