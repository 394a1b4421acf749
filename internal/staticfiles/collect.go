package staticfiles

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Collect copies every regular file under src into dst, preserving the
// relative layout. Existing files are overwritten. It returns the number of
// files copied. This is the build-time half of static serving: Serve reads
// only from the collected tree.
func Collect(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("static source %q: %w", src, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("static source %q is not a directory", src)
	}

	count := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if err := copyFile(p, filepath.Join(dst, rel)); err != nil {
			return fmt.Errorf("collect %q: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
