package cloudwriter

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetFileUploadsOnClose(t *testing.T) {
	factory := NewMemoryWriterFactory()
	w, err := factory.NewWriter("statements", "courier=k1/statement.parquet")
	require.NoError(t, err)

	file := NewParquetFile(w)
	_, err = file.Write([]byte("PAR1"))
	require.NoError(t, err)
	assert.Empty(t, factory.Objects)

	offset, err := file.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(4), offset)

	_, err = file.Seek(0, io.SeekEnd)
	assert.Error(t, err)

	require.NoError(t, file.Close())
	assert.Equal(t, []byte("PAR1"), factory.Objects["statements/courier=k1/statement.parquet"])
}
