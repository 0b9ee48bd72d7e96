package models

// SourceModule is one file under the scanned root.
type SourceModule struct {
	// Path is the absolute file path.
	Path string
	// RelPath is the import specifier used in the barrel: root-relative,
	// extension stripped, "./" prefixed, forward slashes.
	RelPath string
	Content []byte
}

// BarrelEntry pairs a module with the declarations it exports.
type BarrelEntry struct {
	RelPath      string
	Declarations []ExportDeclaration
}
