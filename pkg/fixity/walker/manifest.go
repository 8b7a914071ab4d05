package walker

import (
	"fmt"

	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// Manifest builds a manifest from res keyed by the named algorithm's
// digest, with each file referenced by its root-relative path. Files are
// added in RelPath order.
func Manifest(res *types.WalkResult, algorithm string) (*manifest.Manifest, error) {
	m := manifest.New()
	for _, f := range res.Files {
		sum, ok := f.Digests[algorithm]
		if !ok {
			return nil, fmt.Errorf("%s has no %s digest", f.RelPath, algorithm)
		}
		m.Add(sum, manifest.Name(f.RelPath))
	}
	return m, nil
}
