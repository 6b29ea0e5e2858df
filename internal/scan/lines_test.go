package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseLines_StripsNewlineOnly(t *testing.T) {
	got, err := ParseLines(strings.NewReader(" _ \n| |  \r\n\n|_|"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{" _ ", "| |  ", "", "|_|"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func TestReadLines_MissingFile(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "missing.txt"))
	if !os.IsNotExist(err) {
		t.Fatalf("期望 not-exist 错误，实际 %v", err)
	}
}

func TestReadLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(p, []byte("a\nb\n"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	got, err := ReadLines(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got=%q", got)
	}
}

func TestParseLines_OverlongLineIsTruncated(t *testing.T) {
	long := strings.Repeat("|", maxLineBytes+10)
	got, err := ParseLines(strings.NewReader(" _ \n" + long + "\r\n|_|\n"))
	if err != nil {
		t.Fatalf("超长行不应导致整个文件失败：%v", err)
	}
	if len(got) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(got))
	}
	if len(got[1]) != maxLineBytes {
		t.Fatalf("期望保留 %d 字节，实际 %d", maxLineBytes, len(got[1]))
	}
	if got[0] != " _ " || got[2] != "|_|" {
		t.Fatalf("超长行前后的行不应受影响：%q %q", got[0], got[2])
	}
}
