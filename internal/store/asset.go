package store

// AssetRef is the tagged state of a managed asset field: either absent or
// present with the logical path of a cached file. The empty string only
// exists at the JSON boundary.
type AssetRef struct {
	path string
}

// Absent returns the empty asset reference.
func Absent() AssetRef {
	return AssetRef{}
}

// Present returns a reference to the given logical path. An empty path is Absent.
func Present(path string) AssetRef {
	return AssetRef{path: path}
}

// IsPresent reports whether the field points at a cached file.
func (a AssetRef) IsPresent() bool {
	return a.path != ""
}

// Path returns the logical path, or "" when absent.
func (a AssetRef) Path() string {
	return a.path
}

func (a AssetRef) String() string {
	if !a.IsPresent() {
		return "<absent>"
	}
	return a.path
}
