package filestore

import (
	"fmt"
	"os"

	"github.com/Althra/SDSQL/internal/storage"
	"github.com/Althra/SDSQL/internal/wire"
)

// fileMagic tags every table data file, the same way wire.MagicNumber
// tags every framed protocol message - this backend reuses the C1 codec
// (wire.Encoder/wire.Decoder) for both.
const fileMagic uint32 = 0x5344534C // "SDSL"

// encodeTable serializes a TableData using the wire codec's primitives:
// magic, string table name, u32 column count, per-column (string name,
// u8 type, u8 primary),
// u32 row count, per-row (u32 cell count, [string cell]).
func encodeTable(t *storage.TableData) []byte {
	e := wire.NewEncoder(256)
	e.WriteU32(fileMagic)
	e.WriteString(t.Name)

	e.WriteU32(uint32(len(t.Columns)))
	for _, c := range t.Columns {
		e.WriteString(c.Name)
		e.WriteU8(uint8(c.Type))
		if c.IsPrimary {
			e.WriteU8(1)
		} else {
			e.WriteU8(0)
		}
	}

	e.WriteU32(uint32(len(t.Rows)))
	for _, row := range t.Rows {
		e.WriteU32(uint32(len(row)))
		for _, cell := range row {
			e.WriteString(cell)
		}
	}

	return e.Bytes()
}

func decodeTable(buf []byte) (*storage.TableData, error) {
	d := wire.NewDecoder(buf)

	magic, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("filestore: read magic: %w", err)
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("filestore: bad magic 0x%08x", magic)
	}

	name, err := d.ReadString()
	if err != nil {
		return nil, fmt.Errorf("filestore: read table name: %w", err)
	}

	nCols, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("filestore: read column count: %w", err)
	}
	cols := make([]storage.ColumnDef, 0, nCols)
	for i := uint32(0); i < nCols; i++ {
		cname, err := d.ReadString()
		if err != nil {
			return nil, fmt.Errorf("filestore: read column name: %w", err)
		}
		typ, err := d.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("filestore: read column type: %w", err)
		}
		isPrimary, err := d.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("filestore: read column primary flag: %w", err)
		}
		cols = append(cols, storage.ColumnDef{Name: cname, Type: wire.DataType(typ), IsPrimary: isPrimary != 0})
	}

	nRows, err := d.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("filestore: read row count: %w", err)
	}
	rows := make([][]string, 0, nRows)
	for i := uint32(0); i < nRows; i++ {
		nCells, err := d.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("filestore: read row cell count: %w", err)
		}
		row := make([]string, 0, nCells)
		for j := uint32(0); j < nCells; j++ {
			cell, err := d.ReadString()
			if err != nil {
				return nil, fmt.Errorf("filestore: read cell: %w", err)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	return &storage.TableData{Name: name, Columns: cols, Rows: rows}, nil
}

// writeFileAtomic writes data to path by writing a temp file then
// renaming over the destination, so a crash mid-write never leaves a
// half-written table file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
