package onboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/logs"
)

var (
	// ErrTargetExists means a regular file already sits at the install path.
	ErrTargetExists = errors.New("install target exists and is not a symlink")

	// ErrSourceMissing means there is nothing to install.
	ErrSourceMissing = errors.New("install source not found")
)

// Installer puts the command-line tool on the user's PATH.
type Installer interface {
	Install(ctx context.Context) error
}

// LinkInstaller installs by symlinking Source to TargetDir/Name.
type LinkInstaller struct {
	Source    string
	TargetDir string
	Name      string
}

// NewLinkInstaller builds an installer from config. An empty install.source
// means the running executable.
func NewLinkInstaller(cfg *config.Config) (*LinkInstaller, error) {
	src := cfg.Install.Source
	if src == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		src = exe
	}
	return &LinkInstaller{
		Source:    src,
		TargetDir: cfg.Install.TargetDir,
		Name:      cfg.Install.Name,
	}, nil
}

// Target is the path of the installed link.
func (i *LinkInstaller) Target() string {
	return filepath.Join(i.TargetDir, i.Name)
}

// Installed reports whether the target already links to the source.
func (i *LinkInstaller) Installed() (bool, error) {
	src, err := i.absSource()
	if err != nil {
		return false, err
	}
	// Missing target and non-link target both read as not installed.
	dest, err := os.Readlink(i.Target())
	if err != nil {
		return false, nil
	}
	return dest == src, nil
}

// Install creates the link. An existing link is replaced; a regular file is
// left alone and ErrTargetExists returned.
func (i *LinkInstaller) Install(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if i.TargetDir == "" || i.Name == "" {
		return fmt.Errorf("install target not configured")
	}

	src, err := i.absSource()
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("install source %s is a directory", src)
	}

	if err := os.MkdirAll(i.TargetDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", i.TargetDir, err)
	}

	target := i.Target()
	existing, err := os.Lstat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	case existing.Mode()&os.ModeSymlink == 0:
		return fmt.Errorf("%w: %s", ErrTargetExists, target)
	default:
		if dest, _ := os.Readlink(target); dest == src {
			logs.Debug("CLI already installed", "target", target)
			return nil
		}
	}

	// Link under a temporary name and rename over the target so the old
	// link is replaced in one step.
	tmp := filepath.Join(i.TargetDir, "."+i.Name+".tmp")
	os.Remove(tmp)
	if err := os.Symlink(src, tmp); err != nil {
		return fmt.Errorf("create link: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("install link: %w", err)
	}

	logs.Info("installed CLI", "source", src, "target", target)
	return nil
}

func (i *LinkInstaller) absSource() (string, error) {
	if i.Source == "" {
		return "", ErrSourceMissing
	}
	src, err := filepath.Abs(i.Source)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", i.Source, err)
	}
	return src, nil
}
