package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// paxGlobalHeader is the name git archive gives its synthetic metadata entry.
const paxGlobalHeader = "pax_global_header"

// maxLinkHops bounds symlink expansion while resolving a path.
const maxLinkHops = 40

// Extract unpacks the gzip-compressed tar stream r into dest. Entries are
// consumed one at a time; nothing is buffered beyond the current entry.
// Every write goes through an os.Root on dest, so symlinks are never
// followed out of it.
func Extract(r io.Reader, dest, stripPrefix string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	root, err := os.OpenRoot(dest)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dest, err)
	}
	defer root.Close()

	zr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	var entries int
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		if err := extractEntry(root, tr, hdr, stripPrefix, logger); err != nil {
			return err
		}
		entries++
	}

	// tar stops at its end-of-archive marker; read the gzip trailer too so a
	// truncated or corrupt stream is still reported.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return fmt.Errorf("reading gzip trailer: %w", err)
	}

	logger.Debug("archive entries processed", slog.Int("entries", entries))
	return nil
}

func extractEntry(root *os.Root, r io.Reader, hdr *tar.Header, stripPrefix string, logger *slog.Logger) error {
	if hdr.Typeflag == tar.TypeXGlobalHeader || hdr.Name == paxGlobalHeader {
		return nil
	}

	rel, err := stripEntry(hdr.Name, stripPrefix)
	if err != nil {
		return err
	}
	if rel == "." {
		if hdr.Typeflag == tar.TypeDir {
			return nil
		}
		return fmt.Errorf("%w: %q replaces the destination", ErrUnsafePath, hdr.Name)
	}
	name := filepath.FromSlash(rel)

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := confine(root, rel); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := root.MkdirAll(name, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", rel, err)
		}
	case tar.TypeReg:
		if err := confine(root, path.Dir(rel)); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		mode := hdr.FileInfo().Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
		if err := writeFile(root, name, r, mode); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
	case tar.TypeSymlink:
		if err := confine(root, path.Dir(rel)); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := checkLink(root, rel, hdr.Linkname); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := prepare(root, name); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := root.Symlink(hdr.Linkname, name); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
	case tar.TypeLink:
		linkRel, err := stripEntry(hdr.Linkname, stripPrefix)
		if err != nil {
			return err
		}
		if err := confine(root, path.Dir(rel)); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := confine(root, linkRel); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := prepare(root, name); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
		if err := root.Link(filepath.FromSlash(linkRel), name); err != nil {
			return fmt.Errorf("extracting %s: %w", rel, err)
		}
	default:
		logger.Debug("skipping archive entry",
			slog.String("name", hdr.Name),
			slog.String("type", string(hdr.Typeflag)))
	}
	return nil
}

// stripEntry removes prefix from an archive entry name and returns the
// remaining slash-separated path, "." for the prefix directory itself.
func stripEntry(name, prefix string) (string, error) {
	clean := path.Clean(name)
	if clean == prefix {
		return ".", nil
	}
	rel, ok := strings.CutPrefix(clean, prefix+"/")
	if !ok {
		return "", fmt.Errorf("%w: %q is not under %q", ErrPrefixMismatch, name, prefix)
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return rel, nil
}

// checkLink rejects a symlink at rel whose target, resolved against the
// links already on disk, lands outside root.
func checkLink(root *os.Root, rel, linkname string) error {
	if linkname == "" || path.IsAbs(linkname) || filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: link target %q", ErrUnsafePath, linkname)
	}
	// Not path.Join: cleaning "a/.." lexically would skip the link at a.
	return confine(root, path.Dir(rel)+"/"+filepath.ToSlash(linkname))
}

// confine reports ErrUnsafePath when rel, following the symlinks that exist
// under root, resolves outside root.
func confine(root *os.Root, rel string) error {
	if _, err := resolve(root, rel); err != nil {
		return err
	}
	return nil
}

// resolve walks rel one component at a time, expanding symlinks found on
// disk, and returns the resolved slash path relative to root. Components
// that do not exist yet are taken literally.
func resolve(root *os.Root, rel string) (string, error) {
	pending := strings.Split(rel, "/")
	var done []string
	hops := 0

	for len(pending) > 0 {
		elem := pending[0]
		pending = pending[1:]

		switch elem {
		case "", ".":
			continue
		case "..":
			if len(done) == 0 {
				return "", fmt.Errorf("%w: %q resolves outside the destination", ErrUnsafePath, rel)
			}
			done = done[:len(done)-1]
			continue
		}

		next := path.Join(append(done, elem)...)
		fi, err := root.Lstat(filepath.FromSlash(next))
		if errors.Is(err, fs.ErrNotExist) {
			done = append(done, elem)
			continue
		}
		if err != nil {
			return "", err
		}
		if fi.Mode()&fs.ModeSymlink == 0 {
			done = append(done, elem)
			continue
		}

		if hops++; hops > maxLinkHops {
			return "", fmt.Errorf("%w: too many links resolving %q", ErrUnsafePath, rel)
		}
		target, err := root.Readlink(filepath.FromSlash(next))
		if err != nil {
			return "", err
		}
		target = filepath.ToSlash(target)
		if path.IsAbs(target) || filepath.IsAbs(target) {
			return "", fmt.Errorf("%w: %q links to %q", ErrUnsafePath, next, target)
		}
		pending = append(strings.Split(target, "/"), pending...)
	}

	if len(done) == 0 {
		return ".", nil
	}
	return path.Join(done...), nil
}

// prepare creates name's parent and removes a previous entry at name so a
// later entry never writes through an earlier symlink.
func prepare(root *os.Root, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		if fi, err := root.Stat(dir); err != nil || !fi.IsDir() {
			if err := root.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
	}
	if err := root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func writeFile(root *os.Root, name string, r io.Reader, mode fs.FileMode) error {
	if err := prepare(root, name); err != nil {
		return err
	}
	f, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
