package vendorfile

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"

	"wheelhouse/pkg/console"
)

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}

func (s *Syncer) syncArchive(ctx context.Context, name string, entry Entry, target string, stamps map[string]string) (bool, error) {
	targetInfo, err := os.Stat(target)
	targetExists := err == nil

	stampToken := entry.Source + "#" + entry.Sha256
	if stamp, ok := stamps[name]; ok && stamp == stampToken && targetExists {
		return false, nil
	}

	console.PrintSubtask(name + ":  " + entry.Source)

	extractor, err := getExtractor(entry.Source)
	if err != nil {
		return false, err
	}

	arHandle, err := os.CreateTemp(s.Dir, "vendor_dl-*.tmp")
	if err != nil {
		return false, eris.Wrap(err, "Failed to create download file")
	}
	defer func() {
		arHandle.Close()
		os.Remove(arHandle.Name())
	}()

	length, err := s.download(ctx, entry, arHandle)
	if err != nil {
		return false, err
	}

	if targetExists {
		console.PrintSubtask("Remove " + target)
		if targetInfo.IsDir() {
			err = os.RemoveAll(target)
		} else {
			err = os.Remove(target)
		}
		if err != nil {
			return false, err
		}
	}

	_, err = arHandle.Seek(0, io.SeekStart)
	if err != nil {
		return false, eris.Wrap(err, "Failed to rewind download file")
	}

	bar := getProgressBar(length, "      extract")
	err = extractor(arHandle, bar, target, entry)
	if err != nil {
		return false, err
	}

	if runtime.GOOS != "windows" {
		// .zip files don't carry permissions which means we have to manually fix permissions for binaries in .zip files
		for _, binPath := range entry.MarkExec {
			binPath = filepath.Join(target, binPath)
			fi, err := os.Stat(binPath)
			if err != nil {
				return false, eris.Wrapf(err, "Failed to read permissions for %s", binPath)
			}

			err = os.Chmod(binPath, fi.Mode()|0700)
			if err != nil {
				return false, eris.Wrapf(err, "Failed to mark %s as executable", binPath)
			}
		}
	}

	stamps[name] = stampToken
	return true, nil
}

func (s *Syncer) download(ctx context.Context, entry Entry, arHandle *os.File) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.Source, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "Failed to build request for %s", entry.Source)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "Failed to start download for %s", entry.Source)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("Download of %s failed with status %s", entry.Source, resp.Status)
	}

	hash := sha256.New()
	bar := getProgressBar(resp.ContentLength, "     download")
	buf := make([]byte, 4096)

	for {
		n, err := resp.Body.Read(buf)
		if err != nil && n < 1 {
			if err == io.EOF {
				break
			}
			return 0, eris.Wrapf(err, "Failed during download of %s", entry.Source)
		}

		_, err = hash.Write(buf[:n])
		if err != nil {
			return 0, eris.Wrapf(err, "Failed to calculate checksum for %s", entry.Source)
		}

		_, err = arHandle.Write(buf[:n])
		if err != nil {
			return 0, eris.Wrap(err, "Failed to write download to file")
		}

		bar.Write(buf[:n])
	}
	bar.Finish()

	digest := hex.EncodeToString(hash.Sum(nil))
	if digest != entry.Sha256 {
		return 0, eris.Errorf("Checksum check failed for %s (got %s)", entry.Source, digest)
	}

	return resp.ContentLength, nil
}

type archiveExtractor func(*os.File, *progressbar.ProgressBar, string, Entry) error

func openExtractorDest(destPath string, item string, entry Entry) (*os.File, string, error) {
	// normalize the path and strip entry.Strip elements from the beginning
	pathParts := strings.Split(filepath.Clean(item), string(filepath.Separator))
	if len(pathParts) <= entry.Strip {
		return nil, "/", nil
	}

	dest := filepath.Join(destPath, strings.Join(pathParts[entry.Strip:], string(filepath.Separator)))
	if dest == destPath {
		return nil, "/", nil
	}

	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, os.FileMode(0770))
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create directory %s", destParent)
	}

	destHandle, err := os.Create(dest)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create file %s", dest)
	}

	return destHandle, dest, nil
}

func getExtractor(url string) (archiveExtractor, error) {
	if strings.HasSuffix(url, ".zip") {
		return extractZip, nil
	}

	if strings.HasSuffix(url, ".tar.gz") {
		return func(f *os.File, bar *progressbar.ProgressBar, target string, entry Entry) error {
			reader, err := gzip.NewReader(f)
			if err != nil {
				return err
			}
			defer reader.Close()

			return extractTar(reader, f, bar, target, entry)
		}, nil
	}

	if strings.HasSuffix(url, ".tar.bz2") {
		return func(f *os.File, bar *progressbar.ProgressBar, target string, entry Entry) error {
			return extractTar(bzip2.NewReader(f), f, bar, target, entry)
		}, nil
	}

	if strings.HasSuffix(url, ".tar.xz") {
		return func(f *os.File, bar *progressbar.ProgressBar, target string, entry Entry) error {
			reader, err := xz.NewReader(f)
			if err != nil {
				return err
			}

			return extractTar(reader, f, bar, target, entry)
		}, nil
	}

	if strings.HasSuffix(url, ".tar.br") {
		return func(f *os.File, bar *progressbar.ProgressBar, target string, entry Entry) error {
			return extractTar(brotli.NewReader(f), f, bar, target, entry)
		}, nil
	}

	return nil, eris.Errorf("Archive format of %s is not supported", url)
}

func extractZip(f *os.File, bar *progressbar.ProgressBar, target string, entry Entry) error {
	stat, err := f.Stat()
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(f, stat.Size())
	if err != nil {
		return err
	}

	buf := make([]byte, 4096)
	for _, item := range archive.File {
		if strings.HasSuffix(item.Name, "/") {
			continue
		}

		destHandle, dest, err := openExtractorDest(target, item.Name, entry)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		itemHandle, err := item.Open()
		if err != nil {
			destHandle.Close()
			return eris.Wrap(err, "Failed to open archive entry")
		}

		for {
			n, err := itemHandle.Read(buf)
			if err != nil && n < 1 {
				if err == io.EOF {
					break
				}
				itemHandle.Close()
				destHandle.Close()
				return eris.Wrapf(err, "Failed to read archive entry %s", item.Name)
			}

			_, err = destHandle.Write(buf[:n])
			if err != nil {
				itemHandle.Close()
				destHandle.Close()
				return eris.Wrapf(err, "Failed to write extracted file %s", dest)
			}

			pos, err := f.Seek(0, io.SeekCurrent)
			if err == nil {
				bar.Set64(pos)
			}
		}

		itemHandle.Close()
		destHandle.Close()
	}

	return nil
}

func extractTar(r io.Reader, f *os.File, bar *progressbar.ProgressBar, target string, entry Entry) error {
	buf := make([]byte, 4096)
	archive := tar.NewReader(r)

	for {
		item, err := archive.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return eris.Wrap(err, "Failed to read archive entry")
		}

		fi := item.FileInfo()
		if fi.IsDir() {
			continue
		}

		destHandle, dest, err := openExtractorDest(target, item.Name, entry)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		if item.Typeflag&tar.TypeSymlink == tar.TypeSymlink {
			destHandle.Close()
			err := os.Remove(dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to remove placeholder file %s", dest)
			}

			err = os.Symlink(item.Linkname, dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to create symlink %s pointing to %s", dest, item.Linkname)
			}
			continue
		}

		os.Chmod(dest, fi.Mode())

		for {
			n, err := archive.Read(buf)
			if err != nil && n < 1 {
				if err == io.EOF {
					break
				}
				destHandle.Close()
				return eris.Wrapf(err, "Failed to read archive entry %s", item.Name)
			}

			_, err = destHandle.Write(buf[:n])
			if err != nil {
				destHandle.Close()
				return eris.Wrapf(err, "Failed to write extracted file %s", dest)
			}

			pos, err := f.Seek(0, io.SeekCurrent)
			if err == nil {
				bar.Set64(pos)
			}
		}

		destHandle.Close()
	}

	return nil
}
