package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const nsDecl = `xmlns:m="http://docs.oasis-open.org/odata/ns/metadata" xmlns:d="http://docs.oasis-open.org/odata/ns/data"`

const stringsPayload = `<?xml version="1.0" encoding="utf-8"?><m:value ` + nsDecl + `>` +
	`<m:element>a</m:element><m:element m:null="true"></m:element><m:element>b</m:element></m:value>`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsageErrors(t *testing.T) {
	file := writeTemp(t, "in.xml", stringsPayload)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no command", args: nil, want: exitUsage},
		{name: "unknown command", args: []string{"lint", file}, want: exitUsage},
		{name: "decode without files", args: []string{"decode"}, want: exitUsage},
		{name: "encode with two files", args: []string{"encode", file, file}, want: exitUsage},
		{name: "roundtrip without file", args: []string{"roundtrip"}, want: exitUsage},
		{name: "unknown flag", args: []string{"decode", "--bogus", file}, want: exitUsage},
		{name: "negative concurrency", args: []string{"decode", "--concurrency=-1", file}, want: exitUsage},
		{name: "unknown item type", args: []string{"decode", "--item-type", "NS.Missing", file}, want: exitUsage},
		{name: "collection item type", args: []string{"decode", "--item-type", "Collection(Int32)", file}, want: exitUsage},
		{name: "missing config", args: []string{"decode", "--config", filepath.Join(t.TempDir(), "none.yaml"), file}, want: exitUsage},
		{name: "help", args: []string{"help"}, want: exitOK},
		{name: "command help", args: []string{"decode", "--help"}, want: exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			if code != tt.want {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, tt.want, stderr)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	file := writeTemp(t, "in.xml", stringsPayload)
	code, stdout, stderr := runCLI(t, "", "decode", file)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if want := "- a\n- null\n- b\n"; stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestDecodeStdin(t *testing.T) {
	code, stdout, stderr := runCLI(t, stringsPayload, "decode", "-")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if want := "- a\n- null\n- b\n"; stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestDecodeTypedItems(t *testing.T) {
	file := writeTemp(t, "in.xml", `<m:value `+nsDecl+`><m:element>5</m:element><m:element>-7</m:element></m:value>`)
	code, stdout, stderr := runCLI(t, "", "decode", "--item-type", "Int32!", file)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{"!Int32 5", "!Int32 -7"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout = %q, want it to contain %q", stdout, want)
		}
	}
}

func TestDecodeKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var args []string
	for i, body := range []string{"one", "two", "three"} {
		path := filepath.Join(dir, "in"+string(rune('a'+i))+".xml")
		content := `<m:value ` + nsDecl + `><m:element>` + body + `</m:element></m:value>`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		args = append(args, path)
	}
	code, stdout, stderr := runCLI(t, "", append([]string{"decode", "-j", "2"}, args...)...)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	one, two, three := strings.Index(stdout, "- one"), strings.Index(stdout, "- two"), strings.Index(stdout, "- three")
	if one < 0 || two < one || three < two {
		t.Fatalf("stdout = %q, want documents in argument order", stdout)
	}
	if !strings.Contains(stdout, "# "+args[0]) {
		t.Fatalf("stdout = %q, want a comment naming %s", stdout, args[0])
	}
}

func TestDecodeZstd(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter() error = %v", err)
	}
	if _, err := enc.Write([]byte(stringsPayload)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	file := writeTemp(t, "in.xml.zst", buf.String())

	code, stdout, stderr := runCLI(t, "", "decode", file)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if want := "- a\n- null\n- b\n"; stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
}

func TestDecodeReportsFaults(t *testing.T) {
	good := writeTemp(t, "good.xml", stringsPayload)
	bad := writeTemp(t, "bad.xml", `<value xmlns="urn:other"/>`)
	code, stdout, stderr := runCLI(t, "", "decode", "--no-color", good, bad)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stdout, "- a") {
		t.Fatalf("stdout = %q, want the good file decoded", stdout)
	}
	for _, want := range []string{"error:", bad, "format", "collection-root-namespace"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr = %q, want it to contain %q", stderr, want)
		}
	}
	if strings.Contains(stderr, "\x1b[") {
		t.Fatalf("stderr = %q, want no color escapes", stderr)
	}
}

func TestEncode(t *testing.T) {
	in := writeTemp(t, "items.yaml", "- a\n- ~\n- b\n")
	out := filepath.Join(t.TempDir(), "out.xml")
	code, _, stderr := runCLI(t, "", "encode", "-o", out, in)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != stringsPayload {
		t.Fatalf("output = %s, want %s", got, stringsPayload)
	}
}

func TestEncodeZstdThenDecode(t *testing.T) {
	in := writeTemp(t, "items.yaml", "- !Int32 1\n- !Int32 2\n")
	out := filepath.Join(t.TempDir(), "out.xml.zst")
	if code, _, stderr := runCLI(t, "", "encode", "--out", out, in); code != exitOK {
		t.Fatalf("encode exit code = %d, stderr = %s", code, stderr)
	}
	code, stdout, stderr := runCLI(t, "", "decode", "--item-type", "Int32", out)
	if code != exitOK {
		t.Fatalf("decode exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "!Int32 1") || !strings.Contains(stdout, "!Int32 2") {
		t.Fatalf("stdout = %q, want both items", stdout)
	}
}

func TestEncodeRejectsInvalidItems(t *testing.T) {
	in := writeTemp(t, "items.yaml", "- !Int32 1\n- ~\n")
	out := filepath.Join(t.TempDir(), "out.xml")
	code, _, stderr := runCLI(t, "", "encode", "--item-type", "Int32!", "-o", out, in)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stderr, "null-not-allowed") {
		t.Fatalf("stderr = %q, want null-not-allowed", stderr)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(got), "</m:value>") {
		t.Fatalf("output = %s, want no closing wrapper after fault", got)
	}
}

func TestRoundtrip(t *testing.T) {
	file := writeTemp(t, "in.xml", stringsPayload)
	code, stdout, stderr := runCLI(t, "", "roundtrip", file)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "round-trips (3 items)") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestConfigFile(t *testing.T) {
	cfg := writeTemp(t, "atomcoll.yaml", `
itemType: NS.Address
types:
  NS.Address:
    order: [City, Zip]
    properties:
      City: String
      Zip: Int32!
`)
	payload := `<m:value ` + nsDecl + `><m:element><d:City>Oslo</d:City><d:Zip>150</d:Zip></m:element><m:element m:null="true"/></m:value>`
	file := writeTemp(t, "in.xml", payload)

	code, stdout, stderr := runCLI(t, "", "decode", "--config", cfg, file)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{"!NS.Address", "City: Oslo", "Zip: !Int32 150", "- null"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout = %q, want it to contain %q", stdout, want)
		}
	}

	code, stdout, stderr = runCLI(t, "", "roundtrip", "--config", cfg, file)
	if code != exitOK {
		t.Fatalf("roundtrip exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "round-trips (2 items)") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestConfigRejectsUnknownKeys(t *testing.T) {
	cfg := writeTemp(t, "atomcoll.yaml", "itemTypo: Int32\n")
	file := writeTemp(t, "in.xml", stringsPayload)
	code, _, stderr := runCLI(t, "", "decode", "--config", cfg, file)
	if code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr, "itemTypo") {
		t.Fatalf("stderr = %q, want the unknown key named", stderr)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := writeTemp(t, "atomcoll.yaml", "itemType: Int32!\n")
	file := writeTemp(t, "in.xml", stringsPayload)
	if code, _, _ := runCLI(t, "", "decode", "--config", cfg, file); code != exitFailure {
		t.Fatalf("config item type exit code = %d, want %d", code, exitFailure)
	}
	code, _, stderr := runCLI(t, "", "decode", "--config", cfg, "--item-type", "String", file)
	if code != exitOK {
		t.Fatalf("flag override exit code = %d, stderr = %s", code, stderr)
	}
}

func TestDiagnosticsDiff(t *testing.T) {
	var buf bytes.Buffer
	d := newDiagnostics(&buf, true)
	differ, err := d.diff("- a\n- b\n", "- a\n- c\n")
	if err != nil {
		t.Fatalf("diff() error = %v", err)
	}
	if !differ {
		t.Fatalf("diff() differ = false, want true")
	}
	for _, want := range []string{"  - a", "- - b", "+ - c"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("diff output = %q, want it to contain %q", buf.String(), want)
		}
	}
	if differ, _ := d.diff("x\n", "x\n"); differ {
		t.Fatalf("diff() of equal text differ = true")
	}
}
