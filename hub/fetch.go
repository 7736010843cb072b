// Package hub fetches corpus and vocabulary files from remote URLs into a
// local cache directory.
//
// Downloads go to a temporary file first and are atomically renamed into
// place, and a sibling lock file coordinates multiple processes fetching the
// same file at the same time, so a cached file is either absent or complete.
package hub

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultDirCreationPerm is used when creating cache directories.
const DefaultDirCreationPerm = os.FileMode(0755)

// Fetch downloads url to filePath unless the file already exists. Set
// forceDownload to re-download over an existing file.
func Fetch(ctx context.Context, url, filePath string, forceDownload bool) error {
	if fileExists(filePath) {
		if !forceDownload {
			klog.V(1).Infof("hub: %q already cached, skipping download", filePath)
			return nil
		}
		if err := os.Remove(filePath); err != nil {
			return errors.Wrapf(err, "failed to remove %q while force-downloading %q", filePath, url)
		}
	}

	// Checks whether the context has already been cancelled, and exit immediately.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(path.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}

	// Lock file to avoid parallel downloads of the same target.
	lockPath := filePath + ".lock"
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(err, "failed to acquire lock %q for downloading %q", lockPath, url)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			klog.Warningf("hub: failed to release lock %q: %v", lockPath, err)
		}
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			klog.Warningf("hub: failed to remove lock file %q: %v", lockPath, err)
		}
	}()

	if fileExists(filePath) {
		// Some concurrent other process already downloaded the file.
		return nil
	}
	return download(ctx, url, filePath)
}

// download fetches url into filePath+".downloading" and renames it into place.
func download(ctx context.Context, url, filePath string) error {
	tmpPath := filePath + ".downloading"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for download in %q", tmpPath)
	}
	tmpFileClosed := false
	defer func() {
		// On any error path, close and remove the unfinished temporary file.
		if !tmpFileClosed {
			if err := tmpFile.Close(); err != nil {
				klog.Warningf("hub: failed closing temporary file %q: %v", tmpPath, err)
			}
			if err := os.Remove(tmpPath); err != nil {
				klog.Warningf("hub: failed removing temporary file %q: %v", tmpPath, err)
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %q", url)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download %q", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("failed to download %q: status %s", url, resp.Status)
	}

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return errors.Wrapf(err, "while downloading %q to %q", url, tmpPath)
	}

	tmpFileClosed = true
	if err := tmpFile.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temporary download file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return errors.Wrapf(err, "failed to move downloaded file %q to %q", tmpPath, filePath)
	}
	klog.V(1).Infof("hub: downloaded %q to %q (%d bytes)", url, filePath, written)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
