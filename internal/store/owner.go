// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"os"
	"strconv"
	"strings"
)

// ShellOwner identifies the shell that launched this process. A reused parent
// pid yields a different value as long as the platform exposes process start
// times; elsewhere it degrades to the pid alone.
func ShellOwner() string {
	return ownerOf(os.Getppid(), "/proc")
}

func ownerOf(pid int, procRoot string) string {
	owner := "pid-" + strconv.Itoa(pid)
	stat, err := os.ReadFile(procRoot + "/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return owner
	}
	start, ok := startTime(string(stat))
	if !ok {
		return owner
	}
	owner += "-" + start
	if boot, err := os.ReadFile(procRoot + "/sys/kernel/random/boot_id"); err == nil {
		owner += "-" + strings.TrimSpace(string(boot))
	}
	return owner
}

// startTime pulls field 22 out of a /proc/<pid>/stat line. The command name
// in field 2 may contain spaces, so parsing starts after its closing paren.
func startTime(stat string) (string, bool) {
	i := strings.LastIndexByte(stat, ')')
	if i < 0 {
		return "", false
	}
	fields := strings.Fields(stat[i+1:])
	// fields[0] is field 3 (state).
	const idx = 22 - 3
	if len(fields) <= idx {
		return "", false
	}
	return fields[idx], true
}
