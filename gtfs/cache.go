package gtfs

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SerializeTables encodes Tables using gob. The snapshot loads much faster
// than re-reading the CSV bundle.
//
// Example:
//
//	tables, _ := gtfs.LoadZipFile("google_transit.zip")
//	data, err := gtfs.SerializeTables(tables)
//	if err != nil {
//	    // handle error
//	}
//	os.WriteFile("mnr.gob", data, 0644)
func SerializeTables(t *Tables) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeTablesToWriter(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeTables decodes Tables written by SerializeTables.
func DeserializeTables(data []byte) (*Tables, error) {
	return DeserializeTablesFromReader(bytes.NewReader(data))
}

// SerializeTablesToFile writes a gob snapshot to path.
func SerializeTablesToFile(t *Tables, path string) error {
	data, err := SerializeTables(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DeserializeTablesFromFile reads a gob snapshot from path.
func DeserializeTablesFromFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables snapshot: %w", err)
	}
	return DeserializeTables(data)
}

// SerializeTablesToWriter encodes Tables to w.
func SerializeTablesToWriter(t *Tables, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(t); err != nil {
		return fmt.Errorf("failed to encode gtfs tables: %w", err)
	}
	return nil
}

// DeserializeTablesFromReader decodes Tables from r.
func DeserializeTablesFromReader(r io.Reader) (*Tables, error) {
	var t Tables
	if err := gob.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode gtfs tables: %w", err)
	}
	return &t, nil
}
