package artcache

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/fscrypt/filesystem"
	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
)

// getDiskUsageStats gets the disk usage statistics of the given path
func getDiskUsageStats(path string) (stat syscall.Statfs_t, err error) {
	err = syscall.Statfs(path, &stat)
	return
}

// calculateDirectorySize calculates the total size of files within a directory
func calculateDirectorySize(path string) (size int64, err error) {
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return
}

func getDeviceAndMountPoint(path string) (device, mountPoint string, err error) {
	mnt, err := filesystem.FindMount(path)
	if err != nil {
		return "", "", fmt.Errorf("unable to find mount for path %s: %v", path, err)
	}

	return mnt.Device, mnt.Path, nil
}

// logSpaceInfo logs the filesystem holding the cache and how much of it the
// cache occupies.
func logSpaceInfo(path string) error {
	stat, err := getDiskUsageStats(path)
	if err != nil {
		return err
	}

	device, mountPoint, err := getDeviceAndMountPoint(path)
	if err != nil {
		return err
	}

	usage, err := disk.Usage(path)
	if err != nil {
		return err
	}

	totalSpace := float64(stat.Blocks*uint64(stat.Bsize)) / 1e9
	freeSpace := float64(stat.Bfree*uint64(stat.Bsize)) / 1e9

	cacheSize, err := calculateDirectorySize(path)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"Path":           path,
		"Device":         device,
		"Mount Point":    mountPoint,
		"Total (GB)":     fmt.Sprintf("%.2f", totalSpace),
		"Free (GB)":      fmt.Sprintf("%.2f", freeSpace),
		"Used (%)":       fmt.Sprintf("%.1f", usage.UsedPercent),
		"Usage by cache": fmt.Sprintf("%.2f", float64(cacheSize)/1e9),
	}).Info("Artwork cache disk usage")

	return nil
}
