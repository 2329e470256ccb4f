// Package output archives stored traffic samples as hourly Parquet partitions,
// either on local disk or in cloud storage.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/chrisdamba/trafficsim/internal/cloudwriter"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	parquetFileName   = "data.parquet"
	writerParallelism = 4
)

type partitionWriter struct {
	pw   *writer.ParquetWriter
	file source.ParquetFile
	path string
	rows int
}

// ParquetArchive writes samples into year=/month=/day=/hour= partitions, one
// Parquet file per partition. It is safe for concurrent use.
type ParquetArchive struct {
	basePath           string
	folder             string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	logger             *zap.Logger

	mu      sync.Mutex
	writers map[string]*partitionWriter
}

// NewParquetArchive writes under basePath/folder, or to bucket/folder when
// factory is not nil.
func NewParquetArchive(basePath, folder string, factory cloudwriter.CloudWriterFactory, bucket string, logger *zap.Logger) *ParquetArchive {
	return &ParquetArchive{
		basePath:           basePath,
		folder:             folder,
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
		logger:             logger,
		writers:            make(map[string]*partitionWriter),
	}
}

func partitionFor(sample *models.TrafficSample) string {
	ts := sample.Timestamp.UTC()
	year, month, day := ts.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, ts.Hour())
}

func (p *ParquetArchive) Write(sample *models.TrafficSample) error {
	partition := partitionFor(sample)

	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.writers[partition]
	if !ok {
		var err error
		w, err = p.createNewWriter(partition)
		if err != nil {
			return fmt.Errorf("failed to create writer for %s: %w", partition, err)
		}
		p.writers[partition] = w
	}

	if err := w.pw.Write(sample.Record()); err != nil {
		return fmt.Errorf("failed to write sample %s: %w", sample.ID, err)
	}
	w.rows++
	return nil
}

func (p *ParquetArchive) createNewWriter(partition string) (*partitionWriter, error) {
	var fw source.ParquetFile
	var objectPath string

	if p.cloudWriterFactory != nil {
		objectPath = path.Join(p.folder, models.TopicTrafficSamples, partition, parquetFileName)
		cloudWriter, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cloudWriter)
	} else {
		dir := filepath.Join(p.basePath, p.folder, models.TopicTrafficSamples, filepath.FromSlash(partition))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		objectPath = filepath.Join(dir, parquetFileName)
		var err error
		fw, err = local.NewLocalFileWriter(objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(models.TrafficSampleRecord), writerParallelism)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	return &partitionWriter{pw: pw, file: fw, path: objectPath}, nil
}

// Close flushes every partition and closes (or uploads) its file. It returns
// the paths that were written, sorted.
func (p *ParquetArchive) Close() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs error
	paths := make([]string, 0, len(p.writers))
	for partition, w := range p.writers {
		if err := w.pw.WriteStop(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to finish %s: %w", partition, err))
		}
		if err := w.file.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to close %s: %w", partition, err))
			continue
		}
		p.logger.Debug("parquet partition written", zap.String("path", w.path), zap.Int("rows", w.rows))
		paths = append(paths, w.path)
	}
	p.writers = make(map[string]*partitionWriter)
	sort.Strings(paths)
	return paths, errs
}

// HistoryQuerier is the read side the exporter pulls samples from.
type HistoryQuerier interface {
	HistoryByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error)
}

// Progress is advanced once per exported sample.
type Progress interface {
	Add(num int) error
}

// Export copies the history of every location into archive and returns the
// number of samples written. A failing location does not stop the others.
func Export(ctx context.Context, q HistoryQuerier, locations []string, archive *ParquetArchive, progress Progress) (int, error) {
	var errs error
	written := 0
	for _, location := range locations {
		history, err := q.HistoryByLocation(ctx, location)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, sample := range history {
			if err := archive.Write(sample); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			written++
			if progress != nil {
				_ = progress.Add(1)
			}
		}
	}
	return written, errs
}

// CloudParquetFile adapts a CloudWriter to the write-only subset of
// source.ParquetFile the Parquet writer uses.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the file itself; the object is created by the upload on Close.
func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
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

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
