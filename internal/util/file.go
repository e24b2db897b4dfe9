package util

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/natefinch/atomic"
)

// ExpandPath resolves a leading "~" to the home directory of the current user
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path, err
	}
	return filepath.Clean(expanded), nil
}

// ReadLines reads the whole file at path and splits it into lines.
// Line terminators are kept, so joining the result yields the original content.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	return SplitLines(file)
}

// SplitLines reads everything from r and splits it into lines, keeping line terminators
func SplitLines(r io.Reader) ([]string, error) {
	var lines []string
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WriteLinesAtomic writes the given lines to path by writing a temporary file
// in the same directory and renaming it over the original.
// Symlinks are resolved, so the link target is replaced and the link stays intact.
func WriteLinesAtomic(path string, lines []string) error {
	return WriteFileAtomic(path, strings.NewReader(JoinLines(lines)))
}

func WriteFileAtomic(path string, r io.Reader) error {
	evaluatedPath, err := resolvePath(path)
	if len(evaluatedPath) > 0 && err == nil {
		path = evaluatedPath
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	err = atomic.WriteFile(path, r)
	if err != nil {
		return err
	}
	// atomic.WriteFile creates the temp file with default permissions
	return os.Chmod(path, mode)
}

// CopyFileAtomic copies the file at source to target, replacing target if it exists
func CopyFileAtomic(source string, target string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return WriteFileAtomic(target, bytes.NewReader(data))
}

// JoinLines concatenates lines that already carry their terminators
func JoinLines(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
	}
	return sb.String()
}

func resolvePath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
