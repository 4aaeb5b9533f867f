package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingTB struct {
	testing.TB
	failed  bool
	message string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = format
}

func TestAssertNoTransitiveDependencyFlagsMatch(t *testing.T) {
	orig := goListDeps
	goListDeps = func(string) ([]byte, error) {
		return []byte("caseflow/pkg/domain\ngithub.com/forbidden/dep\n"), nil
	}
	defer func() { goListDeps = orig }()

	rec := &recordingTB{TB: t}
	AssertNoTransitiveDependency(rec, "caseflow/...", func(p string) bool {
		return strings.HasPrefix(p, "github.com/forbidden/")
	}, "test reason")
	if !rec.failed {
		t.Fatal("expected failure for forbidden dependency")
	}
}

func TestAssertNoTransitiveDependencyPassesClean(t *testing.T) {
	orig := goListDeps
	goListDeps = func(string) ([]byte, error) {
		return []byte("caseflow/pkg/domain\n"), nil
	}
	defer func() { goListDeps = orig }()

	rec := &recordingTB{TB: t}
	AssertNoTransitiveDependency(rec, "caseflow/...", func(string) bool { return false }, "test reason")
	if rec.failed {
		t.Fatalf("unexpected failure: %s", rec.message)
	}
}

func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	src := "package sample\n\nimport (\n\t_ \"caseflow/pkg/domain\"\n)\n"
	if err := os.WriteFile(filepath.Join(dir, "sample.go"), []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	testSrc := "package sample\n\nimport _ \"caseflow/internal/core\"\n"
	if err := os.WriteFile(filepath.Join(dir, "sample_test.go"), []byte(testSrc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec := &recordingTB{TB: t}
	AssertNoDirectImports(rec, dir, DomainImportForbidden, "test reason")
	if !rec.failed {
		t.Fatal("expected failure for domain import")
	}

	// Test files are excluded from the scan.
	rec = &recordingTB{TB: t}
	AssertNoDirectImports(rec, dir, InternalImportForbidden, "test reason")
	if rec.failed {
		t.Fatalf("unexpected failure: %s", rec.message)
	}
}

func TestForbiddenPredicates(t *testing.T) {
	if !DomainImportForbidden("caseflow/pkg/domain") {
		t.Fatal("domain path should match")
	}
	if DomainImportForbidden("caseflow/pkg/domainx") {
		t.Fatal("suffix match must be exact")
	}
	if !InternalImportForbidden("caseflow/internal/core") {
		t.Fatal("internal path should match")
	}
	if InternalImportForbidden("caseflow/pkg/domain") {
		t.Fatal("non-internal path should not match")
	}
}
