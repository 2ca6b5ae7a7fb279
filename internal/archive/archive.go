// Package archive packs an installed package directory into a single
// distributable file. Archives are reproducible: entries are sorted and
// carry a fixed modification time.
package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Format is an archive container plus compression.
type Format string

const (
	Zip    Format = "zip"
	Tar    Format = "tar"
	TarGz  Format = "tar.gz"
	TarXz  Format = "tar.xz"
	TarZst Format = "tar.zst"
)

// ErrUnknownFormat is returned for file names without a known extension.
var ErrUnknownFormat = errors.New("unknown archive format")

// epoch is the modification time of every entry.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// FormatOf derives the format from an archive file name.
func FormatOf(name string) (Format, error) {
	switch {
	case strings.HasSuffix(name, ".zip"):
		return Zip, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return TarGz, nil
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return TarXz, nil
	case strings.HasSuffix(name, ".tar.zst"), strings.HasSuffix(name, ".tzst"):
		return TarZst, nil
	case strings.HasSuffix(name, ".tar"):
		return Tar, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(name))
}

// Create packs dir into the file out, choosing the format from its name.
func Create(out, dir string) (err error) {
	format, err := FormatOf(out)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(out)
		}
	}()
	return Write(f, format, dir)
}

// Write packs the files under dir into w.
func Write(w io.Writer, format Format, dir string) error {
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	if format == Zip {
		return writeZip(w, dir, files)
	}
	cw, err := compressor(w, format)
	if err != nil {
		return err
	}
	if err := writeTar(cw, dir, files); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func compressor(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case Tar:
		return nopCloser{w}, nil
	case TarGz:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case TarXz:
		return xz.NewWriter(w)
	case TarZst:
		return zstd.NewWriter(w)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

type entry struct {
	name string // slash separated, relative to the root
	info fs.FileInfo
}

func listFiles(dir string) ([]entry, error) {
	var files []entry
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !d.IsDir() && !info.Mode().IsRegular() && info.Mode()&fs.ModeSymlink == 0 {
			return nil
		}
		files = append(files, entry{name: filepath.ToSlash(rel), info: info})
		return nil
	})
	return files, err
}

func writeTar(w io.Writer, dir string, files []entry) error {
	tw := tar.NewWriter(w)
	for _, e := range files {
		link := ""
		if e.info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(filepath.Join(dir, filepath.FromSlash(e.name)))
			if err != nil {
				return err
			}
			link = target
		}
		hdr, err := tar.FileInfoHeader(e.info, link)
		if err != nil {
			return err
		}
		hdr.Name = e.name
		if e.info.IsDir() {
			hdr.Name += "/"
		}
		hdr.ModTime = epoch
		hdr.AccessTime = time.Time{}
		hdr.ChangeTime = time.Time{}
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "", ""
		hdr.Format = tar.FormatPAX
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if e.info.Mode().IsRegular() {
			if err := copyFrom(tw, filepath.Join(dir, filepath.FromSlash(e.name))); err != nil {
				return err
			}
		}
	}
	return tw.Close()
}

func writeZip(w io.Writer, dir string, files []entry) error {
	zw := zip.NewWriter(w)
	for _, e := range files {
		if e.info.Mode()&fs.ModeSymlink != 0 {
			// zip has no portable symlink entry; store the target file.
			fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(e.name)))
			if err != nil {
				return err
			}
			e.info = fi
		}
		hdr, err := zip.FileInfoHeader(e.info)
		if err != nil {
			return err
		}
		hdr.Name = e.name
		if e.info.IsDir() {
			hdr.Name += "/"
		} else {
			hdr.Method = zip.Deflate
		}
		hdr.Modified = epoch
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if !e.info.IsDir() {
			if err := copyFrom(fw, filepath.Join(dir, filepath.FromSlash(e.name))); err != nil {
				return err
			}
		}
	}
	return zw.Close()
}

func copyFrom(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
