package catalog

import (
	"io/fs"
	"os"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedHasBaseAndHindi(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "hi-IN"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	if got, ok := bundle.Message(BaseLocale, "code.expiry"); !ok || got != "Code expires in %d minutes." {
		t.Fatalf("code.expiry = %q, %v", got, ok)
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle := Default()
	got, ok := bundle.Message("hi-IN", "forgot.title")
	if !ok || got != "Forgot password" {
		t.Fatalf("hi-IN forgot.title = %q, %v, want English fallback", got, ok)
	}
	got, ok = bundle.Message("hi-IN", "login.title")
	if !ok || got != "लॉग इन" {
		t.Fatalf("hi-IN login.title = %q, %v", got, ok)
	}
	if _, ok := bundle.Message("fr-FR", "no.such.key"); ok {
		t.Fatal("expected unknown key to miss")
	}
}

func TestTranslationsOnlyDefineBaseKeys(t *testing.T) {
	bundle := Default()
	base := map[string]bool{}
	for _, key := range bundle.Keys(BaseLocale) {
		base[key] = true
	}
	for _, locale := range bundle.Locales() {
		for _, key := range bundle.Keys(locale) {
			if !base[key] {
				t.Fatalf("%s defines %q which %s lacks", locale, key, BaseLocale)
			}
		}
	}
	if missing := bundle.Missing("hi-IN"); len(missing) == 0 {
		t.Fatal("expected hi-IN to be a partial catalog")
	}
}

func TestTranslationsKeepFormatVerbs(t *testing.T) {
	bundle := Default()
	verbs := regexp.MustCompile(`%[a-z]`)
	for _, locale := range bundle.Locales() {
		for _, key := range bundle.Keys(locale) {
			translated, _ := bundle.Message(locale, key)
			base, _ := bundle.Message(BaseLocale, key)
			if got, want := strings.Join(verbs.FindAllString(translated, -1), ","), strings.Join(verbs.FindAllString(base, -1), ","); got != want {
				t.Fatalf("%s %q verbs = %q, want %q", locale, key, got, want)
			}
		}
	}
}

// Every key literal in the storefront sources must exist in the base catalog.
func TestSourceKeysExistInBaseCatalog(t *testing.T) {
	keyLiteral := regexp.MustCompile(`"((?:layout|home|form|confirmation|login|register|forgot|reset|code|dashboard|profile|error|notice)\.[a-z0-9_.]*[a-z0-9_])"`)
	bundle := Default()
	source := os.DirFS("../../..")

	checked := 0
	err := fs.WalkDir(source, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}
		for _, match := range keyLiteral.FindAllStringSubmatch(string(data), -1) {
			checked++
			if _, ok := bundle.Message(BaseLocale, match[1]); !ok {
				t.Errorf("%s: key %q missing from %s catalog", path, match[1], BaseLocale)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk sources: %v", err)
	}
	if checked == 0 {
		t.Fatal("expected to find message keys in sources")
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/errors.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"errors\"\nmessages:\n  \"notice.saved\": \"Saved\"\n")},
	})
	if err == nil {
		t.Fatal("expected namespace prefix error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossFiles(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/layout.yaml": {Data: []byte("locale: \"en-US\"\nnamespace: \"layout\"\nmessages:\n  \"home.title\": \"Home\"\n")},
		"locales/en-US/auth.yaml":   {Data: []byte("locale: \"en-US\"\nnamespace: \"auth\"\nmessages:\n  \"login.title\": \"Log in\"\n  \"login.title\": \"Again\"\n")},
	})
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{
		"locales/hi-IN/layout.yaml": {Data: []byte("locale: \"hi-IN\"\nnamespace: \"layout\"\nmessages:\n  \"home.title\": \"स्वागत है\"\n")},
	})
	if err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{
		"locales/en-US/layout.yaml": {Data: []byte("locale: \"hi-IN\"\nnamespace: \"layout\"\nmessages:\n  \"home.title\": \"Home\"\n")},
	})
	if err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestParseCatalogFileUnescapesValues(t *testing.T) {
	file, err := parseCatalogFile([]byte("# comment\nlocale: \"en-US\"\nnamespace: \"layout\"\nmessages:\n  \"home.heading\": \"Say \\\"hi\\\"\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := file.Messages["home.heading"]; got != `Say "hi"` {
		t.Fatalf("home.heading = %q", got)
	}
	if _, err := parseCatalogFile([]byte("locale: \"en-US\"\nstray line\n")); err == nil {
		t.Fatal("expected unexpected-line error")
	}
}
