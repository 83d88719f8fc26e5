package writer

import (
	"bytes"
	"io"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"
)

// tickRecord is the parquet row for one market-data event. Mode specific
// columns stay zero when the event does not carry them.
type tickRecord struct {
	Exchange      string  `parquet:"name=exchange, type=BYTE_ARRAY, convertedtype=UTF8"`
	Symbol        string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	Mode          string  `parquet:"name=mode, type=BYTE_ARRAY, convertedtype=UTF8"`
	FeedTimestamp int64   `parquet:"name=feed_timestamp, type=INT64"`
	ReceivedTime  int64   `parquet:"name=received_time, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Ltp           float64 `parquet:"name=ltp, type=DOUBLE"`
	Open          float64 `parquet:"name=open, type=DOUBLE"`
	High          float64 `parquet:"name=high, type=DOUBLE"`
	Low           float64 `parquet:"name=low, type=DOUBLE"`
	Close         float64 `parquet:"name=close, type=DOUBLE"`
	Volume        int64   `parquet:"name=volume, type=INT64"`
	BidPrice      float64 `parquet:"name=bid_price, type=DOUBLE"`
	BidQuantity   int64   `parquet:"name=bid_quantity, type=INT64"`
	AskPrice      float64 `parquet:"name=ask_price, type=DOUBLE"`
	AskQuantity   int64   `parquet:"name=ask_quantity, type=INT64"`
	BidLevels     int32   `parquet:"name=bid_levels, type=INT32"`
	AskLevels     int32   `parquet:"name=ask_levels, type=INT32"`
	BatchID       string  `parquet:"name=batch_id, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memFile is an in-memory source.ParquetFile. Files returned by Open read
// back what was written so far.
type memFile struct {
	buffer *bytes.Buffer
	data   []byte
	reader *bytes.Reader
}

func newMemFile() *memFile { return &memFile{buffer: &bytes.Buffer{}} }

func openMemFile(data []byte) *memFile {
	return &memFile{data: data, reader: bytes.NewReader(data)}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }

func (m *memFile) Open(string) (source.ParquetFile, error) {
	return openMemFile(m.Bytes()), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	if m.reader != nil {
		return m.reader.Seek(offset, whence)
	}
	return int64(m.buffer.Len()), nil
}

func (m *memFile) Read(b []byte) (int, error) {
	if m.reader == nil {
		return 0, io.EOF
	}
	return m.reader.Read(b)
}

func (m *memFile) Write(b []byte) (int, error) {
	if m.buffer == nil {
		return 0, io.ErrClosedPipe
	}
	return m.buffer.Write(b)
}

func (m *memFile) Close() error { return nil }

func (m *memFile) Bytes() []byte {
	if m.buffer == nil {
		return m.data
	}
	return m.buffer.Bytes()
}

// encodeParquet writes rows into a snappy compressed parquet object.
func encodeParquet(rows []tickRecord) ([]byte, error) {
	mf := newMemFile()
	pw, err := pqwriter.NewParquetWriter(mf, new(tickRecord), 1)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	return mf.Bytes(), nil
}
