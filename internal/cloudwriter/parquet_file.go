package cloudwriter

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// ParquetFile adapts a CloudWriter to the write side of source.ParquetFile.
// Objects are write-once, so Open and Create return the same file.
type ParquetFile struct {
	writer CloudWriter
	offset int64
}

func NewParquetFile(writer CloudWriter) *ParquetFile {
	return &ParquetFile{writer: writer}
}

func (c *ParquetFile) Open(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *ParquetFile) Create(string) (source.ParquetFile, error) {
	return c, nil
}

func (c *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *ParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *ParquetFile) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *ParquetFile) Close() error {
	return c.writer.Close()
}
