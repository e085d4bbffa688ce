package shogi

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// PerftRecord is one row of a perft divide export: the node count below a
// root move of the position given by SFEN.
type PerftRecord struct {
	SFEN  string `parquet:"name=sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	Depth int32  `parquet:"name=depth, type=INT32"`
	Move  string `parquet:"name=move, type=BYTE_ARRAY, convertedtype=UTF8"`
	Nodes int64  `parquet:"name=nodes, type=INT64"`
}

// DivideRecords converts divide entries of p at depth into records.
func DivideRecords(p *Position, depth int, entries []DivideEntry) []PerftRecord {
	sfen := p.SFEN(1)
	records := make([]PerftRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, PerftRecord{
			SFEN:  sfen,
			Depth: int32(depth),
			Move:  e.USI,
			Nodes: int64(e.Nodes),
		})
	}
	return records
}

func WritePerftParquet(path string, records []PerftRecord, parallel int64) error {
	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(PerftRecord), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

func ReadPerftParquet(path string, parallel int64) ([]PerftRecord, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(PerftRecord), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	records := make([]PerftRecord, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		remain := num - offset
		if remain < batchSize {
			batchSize = remain
		}
		batch := make([]PerftRecord, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

// PerftMismatch is a root move whose count differs from a baseline.
type PerftMismatch struct {
	Move     string
	Got      int64
	Expected int64
}

func (m PerftMismatch) String() string {
	return fmt.Sprintf("%s: got %d, expected %d", m.Move, m.Got, m.Expected)
}

// CompareDivide lists moves whose counts differ between got and the
// baseline records for sfen at depth. A move missing on one side is
// reported with a count of -1 there, so an empty got still reports every
// baseline move.
func CompareDivide(sfen string, depth int32, got, baseline []PerftRecord) []PerftMismatch {
	expected := make(map[string]int64, len(baseline))
	for _, r := range baseline {
		if r.SFEN == sfen && r.Depth == depth {
			expected[r.Move] = r.Nodes
		}
	}
	var mismatches []PerftMismatch
	for _, r := range got {
		want, ok := expected[r.Move]
		if !ok {
			want = -1
		}
		if want != r.Nodes {
			mismatches = append(mismatches, PerftMismatch{Move: r.Move, Got: r.Nodes, Expected: want})
		}
		delete(expected, r.Move)
	}
	missing := make([]string, 0, len(expected))
	for move := range expected {
		missing = append(missing, move)
	}
	sort.Strings(missing)
	for _, move := range missing {
		mismatches = append(mismatches, PerftMismatch{Move: move, Got: -1, Expected: expected[move]})
	}
	return mismatches
}
