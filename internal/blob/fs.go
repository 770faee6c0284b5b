package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// fsStore persists blobs under a root directory. Content-type and metadata
// ride in a sidecar JSON file next to each object. PublicURL joins the key
// onto a configured base URL, typically a static file server fronting root.
type fsStore struct {
	root    string
	baseURL string
}

type fsSidecar struct {
	ContentType string `json:"content_type,omitempty"`
}

// NewFilesystem creates a filesystem-backed store rooted at dir. baseURL may
// be empty, in which case PublicURL yields file:// URLs.
func NewFilesystem(dir, baseURL string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob root directory required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &fsStore{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (f *fsStore) Driver() Driver { return DriverFilesystem }

func (f *fsStore) objectPath(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(f.root, clean), nil
}

func (f *fsStore) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	path, err := f.objectPath(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(path); err == nil {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Info{}, fmt.Errorf("create blob dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return Info{}, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(out, r)
	cerr := out.Close()
	if err != nil {
		_ = os.Remove(path)
		return Info{}, fmt.Errorf("write blob: %w", err)
	}
	if cerr != nil {
		_ = os.Remove(path)
		return Info{}, fmt.Errorf("close blob: %w", cerr)
	}
	if opts.ContentType != "" {
		side, err := json.Marshal(fsSidecar{ContentType: opts.ContentType})
		if err == nil {
			_ = os.WriteFile(path+".meta.json", side, 0o640)
		}
	}
	return Info{Key: key, Size: size, ContentType: opts.ContentType, LastModified: time.Now().UTC()}, nil
}

func (f *fsStore) stat(key string) (Info, string, error) {
	path, err := f.objectPath(key)
	if err != nil {
		return Info{}, "", err
	}
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, "", fmt.Errorf("blob %s not found", key)
	}
	info := Info{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()}
	if raw, err := os.ReadFile(path + ".meta.json"); err == nil {
		var side fsSidecar
		if json.Unmarshal(raw, &side) == nil {
			info.ContentType = side.ContentType
		}
	}
	return info, path, nil
}

func (f *fsStore) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	info, path, err := f.stat(key)
	if err != nil {
		return Info{}, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Info{}, nil, fmt.Errorf("open blob: %w", err)
	}
	return info, file, nil
}

func (f *fsStore) Delete(_ context.Context, key string) (bool, error) {
	path, err := f.objectPath(key)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove blob: %w", err)
	}
	_ = os.Remove(path + ".meta.json")
	return true, nil
}

func (f *fsStore) List(_ context.Context, prefix string) ([]Info, error) {
	var infos []Info
	err := filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasSuffix(path, ".meta.json") {
			return err
		}
		rel, rerr := filepath.Rel(f.root, path)
		if rerr != nil {
			return rerr
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, _, serr := f.stat(key)
		if serr != nil {
			return serr
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (f *fsStore) PublicURL(_ context.Context, key string) (string, error) {
	if _, _, err := f.stat(key); err != nil {
		return "", err
	}
	if f.baseURL == "" {
		path, err := f.objectPath(key)
		if err != nil {
			return "", err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return "file://" + abs, nil
	}
	return f.baseURL + "/" + url.PathEscape(key), nil
}
