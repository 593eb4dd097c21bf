package system

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
)

// PrivilegeInfo describes who the process runs as.
type PrivilegeInfo struct {
	Username string `json:"username"`
	UID      string `json:"uid"`
	Elevated bool   `json:"elevated"`
}

// CurrentPrivileges reports the current user and whether the process is elevated.
// On Windows elevation cannot be detected from the UID and is reported as false.
func CurrentPrivileges() (PrivilegeInfo, error) {
	u, err := user.Current()
	if err != nil {
		return PrivilegeInfo{}, fmt.Errorf("failed to lookup current user: %w", err)
	}

	info := PrivilegeInfo{Username: u.Username, UID: u.Uid}
	if runtime.GOOS != "windows" {
		info.Elevated = os.Geteuid() == 0
	}
	return info, nil
}
