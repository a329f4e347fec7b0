package meta

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Metadata describes one finished video.
type Metadata struct {
	Subject string
	Start   int
	End     int
	Frames  int
	Width   int
	Height  int
	Codec   string
	RunID   string

	timestamp int64
	size      int64
	checksum  uint64
}

func New(subject string, start, end int) Metadata {
	return Metadata{
		Subject:   subject,
		Start:     start,
		End:       end,
		timestamp: time.Now().Unix(),
	}
}

// Filename is the output name: <subject>.<start>.<end>.<container>
func Filename(subject string, start, end int, container string) string {
	return fmt.Sprintf("%s.%d.%d.%s", subject, start, end, container)
}

// Stat fills size and checksum from the written video file.
func (m *Metadata) Stat(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("META:open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	checksum, size, err := generateChecksum(f)
	if err != nil {
		return err
	}
	m.checksum = checksum
	m.size = size
	return nil
}

func (m *Metadata) IsOk() bool {
	if len(m.Subject) > 0 && m.timestamp > 0 && m.Frames > 0 {
		return true
	}
	return false
}

func (m *Metadata) Print() string {
	return fmt.Sprintf("%s [%d-%d]: %dx%d, %d frames, %.1f MB, checksum %s (%s)",
		m.Subject, m.Start, m.End, m.Width, m.Height, m.Frames, m.SizeMB(), m.ChecksumHex(), m.FormatDatetime())
}

func (m *Metadata) FormatDatetime() string {
	t := time.Unix(m.timestamp, 0)
	localTime := t.Local()
	return localTime.Format(time.RFC822)
}

func (m *Metadata) Checksum() uint64 {
	return m.checksum
}

func (m *Metadata) ChecksumHex() string {
	return hex.EncodeToString(convertUint64ToBytes(m.checksum))
}

func (m *Metadata) SizeMB() float64 {
	return float64(m.size) / (1024 * 1024)
}

// Tags flattens the metadata for object storage headers.
func (m *Metadata) Tags() map[string]string {
	return map[string]string{
		"subject":  m.Subject,
		"start":    strconv.Itoa(m.Start),
		"end":      strconv.Itoa(m.End),
		"frames":   strconv.Itoa(m.Frames),
		"width":    strconv.Itoa(m.Width),
		"height":   strconv.Itoa(m.Height),
		"codec":    m.Codec,
		"run":      m.RunID,
		"checksum": m.ChecksumHex(),
		"created":  time.Unix(m.timestamp, 0).UTC().Format(time.RFC3339),
	}
}

// validate a file against the recorded checksum
func (m *Metadata) Validate(r io.Reader) (bool, error) {
	checksum, _, err := generateChecksum(r)
	if err != nil {
		return false, err
	}
	return checksum == m.checksum, nil
}

func generateChecksum(r io.Reader) (uint64, int64, error) {
	hasher := fnv.New64a()
	n, err := io.Copy(hasher, r)
	if err != nil {
		return 0, 0, fmt.Errorf("META:Error writing to hasher: %w", err)
	}
	return hasher.Sum64(), n, nil
}

func convertUint64ToBytes(num uint64) []byte {
	byteArray := make([]byte, 8)
	binary.BigEndian.PutUint64(byteArray, num)
	return byteArray
}
