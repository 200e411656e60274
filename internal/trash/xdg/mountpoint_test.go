package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gotrash/gotrash/internal/trash/core"
)

func TestMountTableMatch(t *testing.T) {
	table := NewMountTable([]MountPoint{
		{FSName: "/dev/sda1", FSType: "ext4", Path: "/"},
		{FSName: "/dev/sdb1", FSType: "ext4", Path: "/mnt/data"},
		{FSName: "/dev/sdc1", FSType: "xfs", Path: "/mnt/data/nested"},
	})

	tests := []struct {
		path string
		want string
	}{
		{"/mnt/data/foo", "/mnt/data"},
		{"/mnt/data", "/mnt/data"},
		{"/mnt/database/foo", "/"},
		{"/mnt/data/nested/deep/file", "/mnt/data/nested"},
		{"/home/user/file", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, err := table.Match(tt.path)
			if err != nil {
				t.Fatalf("Match(%q) failed: %v", tt.path, err)
			}
			if m.Path != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.path, m.Path, tt.want)
			}
		})
	}
}

func TestMountTableNotFound(t *testing.T) {
	table := NewMountTable([]MountPoint{{Path: "/mnt/data"}})

	_, err := table.Match("/home/user/file")
	if !core.IsMountPointNotFound(err) {
		t.Fatalf("Match() error = %v, want ErrMountPointNotFound", err)
	}
	if core.KindOf(err) != core.KindMountPointNotFound {
		t.Errorf("KindOf() = %v, want %v", core.KindOf(err), core.KindMountPointNotFound)
	}
}

func TestNewMountTableOrder(t *testing.T) {
	table := NewMountTable([]MountPoint{
		{FSName: "root", Path: "/"},
		{FSName: "a", Path: "/aaa"},
		{FSName: "b", Path: "/bbb"},
		{FSName: "old", Path: "/mnt/x"},
		{FSName: "new", Path: "/mnt/x"},
	})

	var got []string
	for _, m := range table.Points() {
		got = append(got, m.FSName)
	}
	want := []string{"new", "a", "b", "root"}
	if len(got) != len(want) {
		t.Fatalf("Points() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Points()[%d] = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestMountPointCanHoldTrash(t *testing.T) {
	tests := []struct {
		name  string
		mount MountPoint
		want  bool
	}{
		{"ext4", MountPoint{FSType: "ext4", Path: "/mnt/data"}, true},
		{"read only", MountPoint{FSType: "ext4", Path: "/mnt/cdrom", ReadOnly: true}, false},
		{"proc", MountPoint{FSType: "proc", Path: "/proc"}, false},
		{"tmpfs", MountPoint{FSType: "tmpfs", Path: "/run"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mount.CanHoldTrash(); got != tt.want {
				t.Errorf("CanHoldTrash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUnder(t *testing.T) {
	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/home/user/file", "/home/user", true},
		{"/home/user", "/home/user", true},
		{"/home/user2/file", "/home/user", false},
		{"/anything", "/", true},
		{"/home/user/", "/home/user", true},
	}

	for _, tt := range tests {
		if got := IsUnder(tt.path, tt.dir); got != tt.want {
			t.Errorf("IsUnder(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}

func TestTopDirTrash(t *testing.T) {
	t.Run("per-user fallback", func(t *testing.T) {
		topdir := t.TempDir()
		d := TopDirTrash(topdir, 1000)
		if want := filepath.Join(topdir, ".Trash-1000"); d.Root != want {
			t.Errorf("Root = %q, want %q", d.Root, want)
		}
		if d.TopDir != topdir {
			t.Errorf("TopDir = %q, want %q", d.TopDir, topdir)
		}
		if d.Home {
			t.Error("topdir trash must not be marked as home")
		}
	})

	t.Run("shared trash with sticky bit", func(t *testing.T) {
		topdir := t.TempDir()
		shared := filepath.Join(topdir, ".Trash")
		if err := os.Mkdir(shared, 0777); err != nil {
			t.Fatalf("Failed to create shared trash: %v", err)
		}
		if err := os.Chmod(shared, 0777|os.ModeSticky); err != nil {
			t.Fatalf("Failed to set sticky bit: %v", err)
		}

		d := TopDirTrash(topdir, 1000)
		if want := filepath.Join(shared, "1000"); d.Root != want {
			t.Errorf("Root = %q, want %q", d.Root, want)
		}
	})

	t.Run("shared trash without sticky bit", func(t *testing.T) {
		topdir := t.TempDir()
		if err := os.Mkdir(filepath.Join(topdir, ".Trash"), 0777); err != nil {
			t.Fatalf("Failed to create shared trash: %v", err)
		}

		d := TopDirTrash(topdir, 1000)
		if want := filepath.Join(topdir, ".Trash-1000"); d.Root != want {
			t.Errorf("Root = %q, want %q", d.Root, want)
		}
	})

	t.Run("shared trash is a symlink", func(t *testing.T) {
		topdir := t.TempDir()
		target := filepath.Join(topdir, "elsewhere")
		if err := os.Mkdir(target, 0777); err != nil {
			t.Fatalf("Failed to create target: %v", err)
		}
		if err := os.Chmod(target, 0777|os.ModeSticky); err != nil {
			t.Fatalf("Failed to set sticky bit: %v", err)
		}
		if err := os.Symlink(target, filepath.Join(topdir, ".Trash")); err != nil {
			t.Fatalf("Failed to create symlink: %v", err)
		}

		d := TopDirTrash(topdir, 1000)
		if want := filepath.Join(topdir, ".Trash-1000"); d.Root != want {
			t.Errorf("Root = %q, want %q", d.Root, want)
		}
	})
}
