package invoice

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists rendered invoice artifacts on the local filesystem and
// resolves stored paths to serving URLs.  Paths recorded in the database
// are relative to the store root so the root can move between deploys.
type Store struct {
	root    string
	baseURL string
}

// NewStore creates the artifact directory if needed and returns a Store.
// baseURL is the public prefix invoices are served under; it may be empty
// when the service hands out relative URLs.
func NewStore(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// PathFor returns the relative artifact path for a slot's invoice.
func PathFor(slotID uint64) string {
	return fmt.Sprintf("%d/invoice-%d.pdf", slotID, slotID)
}

// Save writes the artifact at the given relative path, overwriting any
// previous version.  Overwrite is expected: mark-paid is correction
// friendly and re-finalizing a slot replaces the artifact.
func (s *Store) Save(relPath string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// URL resolves a stored pdf_path to a serving URL.  Legacy rows carry a
// redundant "invoices/" prefix which is stripped before resolution.
func (s *Store) URL(pdfPath string) string {
	p := NormalizePath(pdfPath)
	return s.baseURL + "/public/invoices/" + p
}

// NormalizePath strips any number of leading "invoices/" prefixes left
// behind by an earlier path layout.
func NormalizePath(pdfPath string) string {
	p := pdfPath
	for strings.HasPrefix(p, "invoices/") {
		p = strings.TrimPrefix(p, "invoices/")
	}
	return p
}

// Root returns the directory artifacts are stored under, used to mount
// the static file route.
func (s *Store) Root() string { return s.root }
