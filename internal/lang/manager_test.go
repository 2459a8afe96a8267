package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByLanguageResolvesCanonicalIDAndAliasesCaseInsensitively(t *testing.T) {
	for _, name := range []string{"go", "Go", "GOLANG", "golang"} {
		p, ok := ByLanguage(name)
		assert.True(t, ok, name)
		assert.Equal(t, "go", p.Lang())
	}
}

func TestByLanguageRejectsUnknownName(t *testing.T) {
	_, ok := ByLanguage("cobol")
	assert.False(t, ok)
}

func TestByPathResolvesByExtensionCaseInsensitively(t *testing.T) {
	for _, path := range []string{"a.go", "a.GO", "dir/sub/b.Go"} {
		p, ok := ByPath(path)
		assert.True(t, ok, path)
		assert.Equal(t, "go", p.Lang())
	}
}

func TestByPathRejectsUnregisteredExtension(t *testing.T) {
	_, ok := ByPath("a.txt")
	assert.False(t, ok)
	_, ok = ByPath("noext")
	assert.False(t, ok)
}

func TestAllReturnsOneProviderPerLanguageWithNoDuplicates(t *testing.T) {
	all := All()
	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.Lang()], "duplicate provider for %s", p.Lang())
		seen[p.Lang()] = true
	}
	for _, want := range []string{"go", "typescript", "javascript", "python", "cpp"} {
		assert.True(t, seen[want], "missing provider for %s", want)
	}
}
