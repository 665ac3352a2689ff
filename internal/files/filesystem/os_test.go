package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Open_ValidDirectory(t *testing.T) {
	dir := t.TempDir()
	osfs := NewOSFileSystem()

	d, err := osfs.Open(dir)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", dir, err)
	}

	absDir, _ := filepath.Abs(dir)
	if d.Path() != absDir {
		t.Errorf("directory.Path() = %q, want %q", d.Path(), absDir)
	}
}

func TestOSFileSystem_Open_RelativePathBecomesAbsolute(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.Mkdir("song_data", 0755); err != nil {
		t.Fatal(err)
	}

	d, err := NewOSFileSystem().Open("song_data")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !filepath.IsAbs(d.Path()) {
		t.Errorf("directory.Path() = %q, want absolute path", d.Path())
	}
}

func TestOSFileSystem_Open_NonexistentPath(t *testing.T) {
	_, err := NewOSFileSystem().Open(filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Error("Open(nonexistent) should return error")
	}
}

func TestOSFileSystem_Open_FileNotDirectory(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "TRAAAAW128F429D538.json")
	os.WriteFile(filePath, []byte("{}"), 0644)

	_, err := NewOSFileSystem().Open(filePath)
	if err == nil {
		t.Error("Open(file) should return error")
	}
}

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "events.json")
	expected := `{"page":"Home","ts":1541903636796}`
	os.WriteFile(filePath, []byte(expected), 0644)

	data, err := NewOSFileSystem().ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != expected {
		t.Errorf("ReadFile() = %q, want %q", string(data), expected)
	}
}

func TestOSFileSystem_Walk(t *testing.T) {
	dir := t.TempDir()

	// dir/
	//   b.json
	//   A/
	//     a.json
	sub := filepath.Join(dir, "A")
	os.Mkdir(sub, 0755)
	os.WriteFile(filepath.Join(dir, "b.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(sub, "a.json"), []byte("{}"), 0644)

	d, err := NewOSFileSystem().Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var files []string
	err = d.Walk(func(f File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !f.Info().IsDir() {
			files = append(files, f.Path())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []string{filepath.Join(d.Path(), "A", "a.json"), filepath.Join(d.Path(), "b.json")}
	if len(files) != len(want) {
		t.Fatalf("Walk found %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestOSFileSystem_Walk_SkipDir(t *testing.T) {
	dir := t.TempDir()
	os.Mkdir(filepath.Join(dir, ".hidden"), 0755)
	os.WriteFile(filepath.Join(dir, ".hidden", "x.json"), []byte("{}"), 0644)
	os.WriteFile(filepath.Join(dir, "y.json"), []byte("{}"), 0644)

	d, err := NewOSFileSystem().Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var files []string
	err = d.Walk(func(f File, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if f.Info().IsDir() && f.Info().Name() == ".hidden" {
			return fs.SkipDir
		}
		if !f.Info().IsDir() {
			files = append(files, filepath.Base(f.Path()))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(files) != 1 || files[0] != "y.json" {
		t.Errorf("Walk found %v, want [y.json]", files)
	}
}

func TestOSFileSystem_Walk_PanicBecomesError(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0644)

	d, err := NewOSFileSystem().Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	err = d.Walk(func(f File, walkErr error) error {
		if !f.Info().IsDir() {
			panic("boom")
		}
		return nil
	})
	if err == nil {
		t.Fatal("Walk() should convert the panic into an error")
	}
}
