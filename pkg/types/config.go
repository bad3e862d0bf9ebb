package types

import (
	"errors"
	"path/filepath"
)

// DefaultDBFile is the database file name used when config.yaml does not set
// db_file. It matches the file name earlier releases wrote next to the binary.
const DefaultDBFile = "inventario_caja.db"

// Config holds the parameters for Inventory.Attach.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	DBFile  string `json:"db_file" yaml:"db_file"`
}

// Config validation errors.
var (
	ErrDBFileEmpty   = errors.New("db file must not be empty")
	ErrDBFileInvalid = errors.New("db file must be a bare file name")
)

// Validate checks that the Config is well-formed. An empty DataDir is valid
// and means the current directory.
func (c Config) Validate() error {
	if c.DBFile == "" {
		return ErrDBFileEmpty
	}
	if filepath.Base(c.DBFile) != c.DBFile {
		return ErrDBFileInvalid
	}
	return nil
}

// Path returns the database file path inside DataDir.
func (c Config) Path() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, c.DBFile)
}
